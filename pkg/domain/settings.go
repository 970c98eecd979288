// Package domain holds the core billing and reminder types, including the
// effective-settings resolution that merges client overrides, user defaults,
// and system defaults into one policy per client.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// System defaults applied when neither client nor user settings carry a value.
const (
	DefaultChannel       = ChannelEmail
	DefaultFrequencyDays = 7
)

// Skip reasons surfaced in dispatch results when a client cannot be messaged.
const (
	SkipRemindersDisabled     = "Reminders disabled"
	SkipNotificationsDisabled = "Notifications disabled"
	SkipNoEmail               = "Client has no email"
	SkipNoPhone               = "Client has no phone"
)

// Settings holds one level of communication preferences. Nil fields inherit
// from the next level down: client settings fall back to user settings, user
// settings fall back to system defaults. Both the per-client override row and
// the per-user default row share this shape.
type Settings struct {
	CommunicationMethod          *Channel
	SendAutomatedReminders       *bool
	SendTransactionNotifications *bool
	ReminderFrequencyDays        *int
	ReminderMinimumBalance       *decimal.Decimal
}

// Contact is the reachable contact surface of a client.
type Contact struct {
	Email string
	Phone string
}

// Resolution is the effective communication policy for one client.
type Resolution struct {
	Enabled    bool
	Method     Channel
	Contact    string
	SkipReason string
}

// ResolveReminder computes the effective automated-reminder policy for a
// client. Precedence is field by field: client value if set, else user value
// if set, else system default (email, enabled).
func ResolveReminder(contact Contact, client, user *Settings) Resolution {
	if !resolveBool(client.remindersFlag(), user.remindersFlag(), true) {
		return Resolution{SkipReason: SkipRemindersDisabled}
	}
	return resolveMethod(contact, client, user)
}

// ResolveNotification computes the effective transaction-notification policy
// for a client. Identical precedence to ResolveReminder but gated on
// send_transaction_notifications; notifications have no balance threshold.
func ResolveNotification(contact Contact, client, user *Settings) Resolution {
	if !resolveBool(client.notificationsFlag(), user.notificationsFlag(), true) {
		return Resolution{SkipReason: SkipNotificationsDisabled}
	}
	return resolveMethod(contact, client, user)
}

// ResolveContact resolves only the method and contact address, ignoring the
// enabled flags. Used by the urgent reminder path, which bypasses the gates.
func ResolveContact(contact Contact, client, user *Settings) Resolution {
	return resolveMethod(contact, client, user)
}

// EffectiveFrequencyDays returns the reminder interval in days for a client.
func EffectiveFrequencyDays(client, user *Settings) int {
	if client != nil && client.ReminderFrequencyDays != nil && *client.ReminderFrequencyDays > 0 {
		return *client.ReminderFrequencyDays
	}
	if user != nil && user.ReminderFrequencyDays != nil && *user.ReminderFrequencyDays > 0 {
		return *user.ReminderFrequencyDays
	}
	return DefaultFrequencyDays
}

// EffectiveMinimumBalance returns the balance threshold below which automated
// reminders are skipped. A balance equal to the threshold still sends.
func EffectiveMinimumBalance(client, user *Settings) decimal.Decimal {
	if client != nil && client.ReminderMinimumBalance != nil {
		return *client.ReminderMinimumBalance
	}
	if user != nil && user.ReminderMinimumBalance != nil {
		return *user.ReminderMinimumBalance
	}
	return decimal.Zero
}

// NextReminderDate computes the cursor written after a successful automated
// send: now plus the interval, truncated to the top of the hour in UTC. The
// truncation is what makes the due-window comparison deterministic.
func NextReminderDate(now time.Time, frequencyDays int) time.Time {
	return now.UTC().AddDate(0, 0, frequencyDays).Truncate(time.Hour)
}

func resolveMethod(contact Contact, client, user *Settings) Resolution {
	method := DefaultChannel
	if client != nil && client.CommunicationMethod != nil && *client.CommunicationMethod != "" {
		method = *client.CommunicationMethod
	} else if user != nil && user.CommunicationMethod != nil && *user.CommunicationMethod != "" {
		method = *user.CommunicationMethod
	}

	switch method {
	case ChannelEmail:
		if contact.Email == "" {
			return Resolution{Method: method, SkipReason: SkipNoEmail}
		}
		return Resolution{Enabled: true, Method: method, Contact: contact.Email}
	case ChannelSMS:
		if contact.Phone == "" {
			return Resolution{Method: method, SkipReason: SkipNoPhone}
		}
		return Resolution{Enabled: true, Method: method, Contact: contact.Phone}
	default:
		return Resolution{Method: method, SkipReason: "Unknown communication method: " + string(method)}
	}
}

func (s *Settings) remindersFlag() *bool {
	if s == nil {
		return nil
	}
	return s.SendAutomatedReminders
}

func (s *Settings) notificationsFlag() *bool {
	if s == nil {
		return nil
	}
	return s.SendTransactionNotifications
}

func resolveBool(client, user *bool, fallback bool) bool {
	if client != nil {
		return *client
	}
	if user != nil {
		return *user
	}
	return fallback
}
