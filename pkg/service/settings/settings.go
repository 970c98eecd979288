// Package settings manages account-level communication preferences and the
// business profile used for message branding.
package settings

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	"github.com/pursuepayments/invoicechase/pkg/repository"
	"github.com/shopspring/decimal"
)

// Service reads and writes user-level settings, per-client overrides, and
// business profiles.
type Service struct {
	settings repository.SettingsRepository
	clients  repository.ClientRepository
	users    repository.UserRepository
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a settings Service.
func New(settings repository.SettingsRepository, clients repository.ClientRepository, users repository.UserRepository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		settings: settings,
		clients:  clients,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the user's stored settings. When no row exists the system
// defaults are returned without creating one; the row materializes on the
// first update.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*dto.SettingsRead, error) {
	stored, err := s.settings.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return defaultRead(), nil
	}
	return toRead(stored), nil
}

// Update applies a partial settings change. Changing the reminder frequency
// also recomputes the scheduling cursor from now, so the next reminder lands
// one full new interval out rather than on the stale schedule.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, update *dto.SettingsUpdate) (*dto.SettingsRead, error) {
	var nextDate *time.Time
	if update.ReminderFrequencyDays != nil {
		next := domain.NextReminderDate(s.now(), *update.ReminderFrequencyDays)
		nextDate = &next
		s.logger.Info("Reminder frequency changed, rescheduling",
			"user_id", userID, "frequency_days", *update.ReminderFrequencyDays, "next", next)
	}
	if err := s.settings.UpsertUserSettings(ctx, userID, update, nextDate); err != nil {
		return nil, err
	}
	stored, err := s.settings.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, domain.ErrSettingsNotFound
	}
	return toRead(stored), nil
}

// GetClientSettings returns one client's override row. Nil fields inherit
// from the user level; a client with no overrides reads as an empty object.
func (s *Service) GetClientSettings(ctx context.Context, userID, clientID uuid.UUID) (*dto.SettingsRead, error) {
	if _, err := s.clients.Get(ctx, userID, clientID); err != nil {
		return nil, err
	}
	stored, err := s.settings.GetForClient(ctx, userID, clientID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return &dto.SettingsRead{}, nil
	}
	return toRead(stored), nil
}

// UpdateClientSettings applies a partial override change for one client.
// Changing the frequency gives the client its own scheduling cursor,
// recomputed from now, shadowing the user-level schedule from then on.
func (s *Service) UpdateClientSettings(ctx context.Context, userID, clientID uuid.UUID, update *dto.SettingsUpdate) (*dto.SettingsRead, error) {
	if _, err := s.clients.Get(ctx, userID, clientID); err != nil {
		return nil, err
	}
	var nextDate *time.Time
	if update.ReminderFrequencyDays != nil {
		next := domain.NextReminderDate(s.now(), *update.ReminderFrequencyDays)
		nextDate = &next
		s.logger.Info("Client reminder frequency changed, rescheduling",
			"user_id", userID, "client_id", clientID,
			"frequency_days", *update.ReminderFrequencyDays, "next", next)
	}
	if err := s.settings.UpsertClientSettings(ctx, userID, clientID, update, nextDate); err != nil {
		return nil, err
	}
	stored, err := s.settings.GetForClient(ctx, userID, clientID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, domain.ErrSettingsNotFound
	}
	return toRead(stored), nil
}

// GetBusinessInfo returns the user's business profile, or
// domain.ErrBusinessInfoNotFound when none exists yet.
func (s *Service) GetBusinessInfo(ctx context.Context, userID uuid.UUID) (*dto.BusinessInfoRead, error) {
	info, err := s.users.GetBusinessInfo(ctx, userID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, domain.ErrBusinessInfoNotFound
	}
	return info, nil
}

// UpsertBusinessInfo creates or replaces the user's business profile.
func (s *Service) UpsertBusinessInfo(ctx context.Context, userID uuid.UUID, upsert *dto.BusinessInfoUpsert) (*dto.BusinessInfoRead, error) {
	return s.users.UpsertBusinessInfo(ctx, userID, upsert)
}

func toRead(stored *dto.StoredSettings) *dto.SettingsRead {
	read := &dto.SettingsRead{
		SendAutomatedReminders:       stored.SendAutomatedReminders,
		SendTransactionNotifications: stored.SendTransactionNotifications,
		ReminderFrequencyDays:        stored.ReminderFrequencyDays,
		ReminderMinimumBalance:       stored.ReminderMinimumBalance,
		ReminderNextDate:             stored.ReminderNextDate,
	}
	if stored.CommunicationMethod != nil {
		method := string(*stored.CommunicationMethod)
		read.CommunicationMethod = &method
	}
	return read
}

func defaultRead() *dto.SettingsRead {
	method := string(domain.DefaultChannel)
	enabled := true
	days := domain.DefaultFrequencyDays
	minBalance := decimal.Zero
	return &dto.SettingsRead{
		CommunicationMethod:          &method,
		SendAutomatedReminders:       &enabled,
		SendTransactionNotifications: &enabled,
		ReminderFrequencyDays:        &days,
		ReminderMinimumBalance:       &minBalance,
	}
}
