package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsRead is a user's (or client's) stored communication preferences.
// Nil fields are unset and inherit from the next level down.
type SettingsRead struct {
	CommunicationMethod          *string          `json:"communication_method,omitempty"`
	SendAutomatedReminders       *bool            `json:"send_automated_reminders,omitempty"`
	SendTransactionNotifications *bool            `json:"send_transaction_notifications,omitempty"`
	ReminderFrequencyDays        *int             `json:"reminder_frequency_days,omitempty"`
	ReminderMinimumBalance       *decimal.Decimal `json:"reminder_minimum_balance,omitempty"`
	ReminderNextDate             *time.Time       `json:"reminder_next_date,omitempty"`
}

// SettingsUpdate carries a partial settings write. Only non-nil fields are
// applied; a change to ReminderFrequencyDays also recomputes the reminder
// cursor so the schedule and the configured interval never desync.
type SettingsUpdate struct {
	CommunicationMethod          *string          `json:"communication_method,omitempty" validate:"omitempty,oneof=email sms"`
	SendAutomatedReminders       *bool            `json:"send_automated_reminders,omitempty"`
	SendTransactionNotifications *bool            `json:"send_transaction_notifications,omitempty"`
	ReminderFrequencyDays        *int             `json:"reminder_frequency_days,omitempty" validate:"omitempty,min=1"`
	ReminderMinimumBalance       *decimal.Decimal `json:"reminder_minimum_balance,omitempty"`
}

// QuotaChannelRead is one channel's position against its monthly cap.
type QuotaChannelRead struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

// QuotaRead summarizes the current month's usage against the plan limits.
type QuotaRead struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Email QuotaChannelRead `json:"email"`
	SMS   QuotaChannelRead `json:"sms"`
}

// UsageRead is the monthly send-counter row for one user and month.
type UsageRead struct {
	Year                   int `json:"year"`
	Month                  int `json:"month"`
	SMSRemindersSent       int `json:"sms_reminders_sent"`
	SMSNotificationsSent   int `json:"sms_notifications_sent"`
	EmailRemindersSent     int `json:"email_reminders_sent"`
	EmailNotificationsSent int `json:"email_notifications_sent"`
}
