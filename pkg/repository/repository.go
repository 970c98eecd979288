// Package repository defines the persistence interfaces consumed by the
// service layer. Implementations live under infra/repository.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/dto"
)

// ClientRepository provides read access to clients and their computed
// balances, plus the due-candidate scan that feeds the dispatch cycle.
type ClientRepository interface {
	// Get returns the client with its balance, or domain.ErrClientNotFound
	// when it does not exist or belongs to a different user.
	Get(ctx context.Context, userID, clientID uuid.UUID) (*dto.ClientRead, error)

	// ListWithBalance returns the given clients of a user with balances
	// computed as invoices minus payments. Unknown ids are omitted.
	ListWithBalance(ctx context.Context, userID uuid.UUID, clientIDs []uuid.UUID) ([]dto.ClientRead, error)

	// FindDue scans all clients and returns those whose effective reminder
	// cursor (client-level if set, else user-level) either matches the
	// current hour slot or falls at or before now+grace.
	FindDue(ctx context.Context, now time.Time, grace time.Duration) ([]dto.Candidate, error)

	// MarkReminderSent records the time of the last successful automated
	// reminder on the client row.
	MarkReminderSent(ctx context.Context, clientID uuid.UUID, at time.Time) error
}

// SettingsRepository provides access to the two settings levels and the
// reminder cursor write-back.
type SettingsRepository interface {
	// GetForUser returns the user-level settings row, or nil when absent.
	GetForUser(ctx context.Context, userID uuid.UUID) (*dto.StoredSettings, error)

	// GetForClient returns the client-level override row, or nil when absent.
	GetForClient(ctx context.Context, userID, clientID uuid.UUID) (*dto.StoredSettings, error)

	// UpsertUserSettings applies the non-nil fields of update to the user's
	// settings row, creating it if needed. When nextDate is non-nil the
	// reminder cursor is rewritten as well.
	UpsertUserSettings(ctx context.Context, userID uuid.UUID, update *dto.SettingsUpdate, nextDate *time.Time) error

	// UpsertClientSettings applies the non-nil fields of update to the
	// client-level override row, creating it if needed. Fields left nil stay
	// null and keep inheriting from the user level. When nextDate is non-nil
	// the client-level cursor is rewritten as well.
	UpsertClientSettings(ctx context.Context, userID, clientID uuid.UUID, update *dto.SettingsUpdate, nextDate *time.Time) error

	// WriteNextReminderDate advances the scheduling cursor for a client:
	// the client-level row when one exists, else the user-level row, never
	// both. Resets the consecutive-failure counter on the row it writes.
	WriteNextReminderDate(ctx context.Context, userID, clientID uuid.UUID, next time.Time) error

	// RecordSendFailure increments the consecutive-failure counter on the
	// row governing the client's schedule and returns the new count.
	RecordSendFailure(ctx context.Context, userID, clientID uuid.UUID) (int, error)
}

// UsageRepository tracks the monthly per-channel send counters.
type UsageRepository interface {
	// RecordSend upserts the (user, year, month) row, incrementing exactly
	// one of the four counters. The increment is atomic per row.
	RecordSend(ctx context.Context, userID uuid.UUID, channel domain.Channel, kind domain.MessageKind, at time.Time) error

	// MonthTotal returns reminders plus notifications sent on a channel in
	// the month containing at. Zero when no row exists.
	MonthTotal(ctx context.Context, userID uuid.UUID, channel domain.Channel, at time.Time) (int, error)

	// Get returns the usage row for the month containing at, with zero
	// counters when absent.
	Get(ctx context.Context, userID uuid.UUID, at time.Time) (*dto.UsageRead, error)
}

// TransactionRepository records invoices and payments.
type TransactionRepository interface {
	// Create stores a transaction for the user's client and assigns its
	// sequential transaction number.
	Create(ctx context.Context, userID uuid.UUID, tc *dto.TransactionCreate) (*dto.TransactionRead, error)
}

// UserRepository provides read access to user accounts and business profiles.
type UserRepository interface {
	// Get returns the user, or domain.ErrUserNotFound.
	Get(ctx context.Context, id uuid.UUID) (*dto.UserRead, error)

	// GetBusinessInfo returns the user's business profile, or nil when the
	// user has not created one.
	GetBusinessInfo(ctx context.Context, userID uuid.UUID) (*dto.BusinessInfoRead, error)

	// UpsertBusinessInfo creates or replaces the user's business profile.
	UpsertBusinessInfo(ctx context.Context, userID uuid.UUID, info *dto.BusinessInfoUpsert) (*dto.BusinessInfoRead, error)
}
