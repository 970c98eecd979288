// Package repository holds the gorm models shared by the repository
// implementations in its subpackages.
package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a user account record in the database.
type User struct {
	gorm.Model
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	Email          string    `gorm:"uniqueIndex;not null;size:255"`
	Name           string    `gorm:"not null;size:255"`
	Currency       string    `gorm:"type:varchar(3);not null;default:'USD'"`
	CurrencySymbol string    `gorm:"type:varchar(8);not null;default:'$'"`
	PlanType       string    `gorm:"type:varchar(20);not null;default:'free'"`
}

// BusinessInfo is a user's business profile, one row per user.
type BusinessInfo struct {
	gorm.Model
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	BusinessName  string    `gorm:"not null;size:255"`
	BusinessEmail string    `gorm:"size:255"`
	Phone         string    `gorm:"size:32"`
	Website       string    `gorm:"size:255"`
	Address       string
	LogoURL       string `gorm:"size:512"`
}

// Client is a counterparty of a user. Its balance is never stored; it is
// aggregated from transactions on read.
type Client struct {
	gorm.Model
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID           uuid.UUID `gorm:"type:uuid;index;not null"`
	Name             string    `gorm:"not null;size:255"`
	Email            string    `gorm:"size:255"`
	Phone            string    `gorm:"size:32"`
	Company          string    `gorm:"size:255"`
	ReminderLastSent *time.Time
}

// Transaction is an invoice or a payment. UserID is denormalized from the
// client for query convenience and must always equal client.user_id.
type Transaction struct {
	gorm.Model
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	ClientID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	TransactionNumber string          `gorm:"size:32;not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Type              string          `gorm:"type:varchar(10);not null;check:type IN ('invoice','payment')"`
	Description       string
	CreatedDate       time.Time `gorm:"type:date"`
}

// UserSettings are a user's communication defaults, at most one row per
// user. Columns carry concrete defaults; a present row always has values.
type UserSettings struct {
	gorm.Model
	ID                           uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID                       uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	CommunicationMethod          string          `gorm:"type:varchar(10);not null;default:'email'"`
	SendAutomatedReminders       bool            `gorm:"not null;default:true"`
	SendTransactionNotifications bool            `gorm:"not null;default:true"`
	ReminderFrequencyDays        int             `gorm:"not null;default:7"`
	ReminderMinimumBalance       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ReminderNextDate             *time.Time
	ReminderFailureCount         int `gorm:"not null;default:0"`
}

// ClientSettings are per-client overrides, at most one row per client.
// Every preference column is nullable; null inherits from UserSettings.
type ClientSettings struct {
	gorm.Model
	ID                           uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID                       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_client_settings_owner"`
	ClientID                     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_client_settings_owner"`
	CommunicationMethod          *string   `gorm:"type:varchar(10)"`
	SendAutomatedReminders       *bool
	SendTransactionNotifications *bool
	ReminderFrequencyDays        *int
	ReminderMinimumBalance       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ReminderNextDate             *time.Time
	ReminderFailureCount         int `gorm:"not null;default:0"`
}

// MonthlyUsage is the per-user, per-calendar-month send counter row. The
// counters only ever increase.
type MonthlyUsage struct {
	gorm.Model
	UserID                 uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_monthly_usage_key"`
	Year                   int       `gorm:"not null;uniqueIndex:idx_monthly_usage_key"`
	Month                  int       `gorm:"not null;uniqueIndex:idx_monthly_usage_key"`
	SMSRemindersSent       int       `gorm:"not null;default:0"`
	SMSNotificationsSent   int       `gorm:"not null;default:0"`
	EmailRemindersSent     int       `gorm:"not null;default:0"`
	EmailNotificationsSent int       `gorm:"not null;default:0"`
}
