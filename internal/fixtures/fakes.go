// Package fixtures provides in-memory repository fakes for service tests.
// They are not safe for concurrent use; tests drive them sequentially.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	"github.com/pursuepayments/invoicechase/pkg/repository"
)

// compile-time interface checks
var (
	_ repository.ClientRepository      = (*FakeClientRepo)(nil)
	_ repository.SettingsRepository    = (*FakeSettingsRepo)(nil)
	_ repository.UsageRepository       = (*FakeUsageRepo)(nil)
	_ repository.TransactionRepository = (*FakeTransactionRepo)(nil)
	_ repository.UserRepository        = (*FakeUserRepo)(nil)
)

// FakeClientRepo serves clients from maps and records reminder stamps.
// Due is the candidate pool; when Settings is wired, FindDue filters the
// pool by the stored cursors the way the SQL scan does, so cursor advances
// feed back into the next scan.
type FakeClientRepo struct {
	Clients    map[uuid.UUID]dto.ClientRead
	Due        []dto.Candidate
	FindDueErr error
	LastSent   map[uuid.UUID]time.Time
	Settings   *FakeSettingsRepo
}

func NewFakeClientRepo() *FakeClientRepo {
	return &FakeClientRepo{
		Clients:  make(map[uuid.UUID]dto.ClientRead),
		LastSent: make(map[uuid.UUID]time.Time),
	}
}

func (f *FakeClientRepo) Get(_ context.Context, userID, clientID uuid.UUID) (*dto.ClientRead, error) {
	client, ok := f.Clients[clientID]
	if !ok || client.UserID != userID {
		return nil, domain.ErrClientNotFound
	}
	return &client, nil
}

func (f *FakeClientRepo) ListWithBalance(_ context.Context, userID uuid.UUID, clientIDs []uuid.UUID) ([]dto.ClientRead, error) {
	var out []dto.ClientRead
	for _, id := range clientIDs {
		if client, ok := f.Clients[id]; ok && client.UserID == userID {
			out = append(out, client)
		}
	}
	return out, nil
}

func (f *FakeClientRepo) FindDue(_ context.Context, now time.Time, grace time.Duration) ([]dto.Candidate, error) {
	if f.FindDueErr != nil {
		return nil, f.FindDueErr
	}
	if f.Settings == nil {
		return f.Due, nil
	}
	cutoff := now.Add(grace)
	out := make([]dto.Candidate, 0, len(f.Due))
	for _, cand := range f.Due {
		cursor := f.Settings.effectiveCursor(cand.UserID, cand.ClientID)
		if cursor == nil ||
			cursor.Truncate(time.Hour).Equal(now.Truncate(time.Hour)) ||
			!cursor.After(cutoff) {
			out = append(out, cand)
		}
	}
	return out, nil
}

func (f *FakeClientRepo) MarkReminderSent(_ context.Context, clientID uuid.UUID, at time.Time) error {
	f.LastSent[clientID] = at
	return nil
}

// NextDateWrite records one cursor advance.
type NextDateWrite struct {
	UserID   uuid.UUID
	ClientID uuid.UUID
	Next     time.Time
}

// FakeSettingsRepo serves settings rows and records cursor writes.
type FakeSettingsRepo struct {
	UserRows   map[uuid.UUID]*dto.StoredSettings
	ClientRows map[uuid.UUID]*dto.StoredSettings // keyed by client id
	NextDates  []NextDateWrite
	Failures   map[uuid.UUID]int // keyed by client id
}

func NewFakeSettingsRepo() *FakeSettingsRepo {
	return &FakeSettingsRepo{
		UserRows:   make(map[uuid.UUID]*dto.StoredSettings),
		ClientRows: make(map[uuid.UUID]*dto.StoredSettings),
		Failures:   make(map[uuid.UUID]int),
	}
}

func (f *FakeSettingsRepo) GetForUser(_ context.Context, userID uuid.UUID) (*dto.StoredSettings, error) {
	return f.UserRows[userID], nil
}

func (f *FakeSettingsRepo) GetForClient(_ context.Context, _ uuid.UUID, clientID uuid.UUID) (*dto.StoredSettings, error) {
	return f.ClientRows[clientID], nil
}

func (f *FakeSettingsRepo) UpsertUserSettings(_ context.Context, userID uuid.UUID, update *dto.SettingsUpdate, nextDate *time.Time) error {
	row := f.UserRows[userID]
	if row == nil {
		method := domain.DefaultChannel
		enabled := true
		days := domain.DefaultFrequencyDays
		row = &dto.StoredSettings{Settings: domain.Settings{
			CommunicationMethod:          &method,
			SendAutomatedReminders:       &enabled,
			SendTransactionNotifications: &enabled,
			ReminderFrequencyDays:        &days,
		}}
		f.UserRows[userID] = row
	}
	if update.CommunicationMethod != nil {
		method := domain.Channel(*update.CommunicationMethod)
		row.CommunicationMethod = &method
	}
	if update.SendAutomatedReminders != nil {
		row.SendAutomatedReminders = update.SendAutomatedReminders
	}
	if update.SendTransactionNotifications != nil {
		row.SendTransactionNotifications = update.SendTransactionNotifications
	}
	if update.ReminderFrequencyDays != nil {
		row.ReminderFrequencyDays = update.ReminderFrequencyDays
	}
	if update.ReminderMinimumBalance != nil {
		row.ReminderMinimumBalance = update.ReminderMinimumBalance
	}
	if nextDate != nil {
		row.ReminderNextDate = nextDate
	}
	return nil
}

func (f *FakeSettingsRepo) UpsertClientSettings(_ context.Context, _, clientID uuid.UUID, update *dto.SettingsUpdate, nextDate *time.Time) error {
	row := f.ClientRows[clientID]
	if row == nil {
		row = &dto.StoredSettings{}
		f.ClientRows[clientID] = row
	}
	if update.CommunicationMethod != nil {
		method := domain.Channel(*update.CommunicationMethod)
		row.CommunicationMethod = &method
	}
	if update.SendAutomatedReminders != nil {
		row.SendAutomatedReminders = update.SendAutomatedReminders
	}
	if update.SendTransactionNotifications != nil {
		row.SendTransactionNotifications = update.SendTransactionNotifications
	}
	if update.ReminderFrequencyDays != nil {
		row.ReminderFrequencyDays = update.ReminderFrequencyDays
	}
	if update.ReminderMinimumBalance != nil {
		row.ReminderMinimumBalance = update.ReminderMinimumBalance
	}
	if nextDate != nil {
		row.ReminderNextDate = nextDate
	}
	return nil
}

// effectiveCursor mirrors the scan's coalesce: the client-level cursor when
// set, else the user-level one.
func (f *FakeSettingsRepo) effectiveCursor(userID, clientID uuid.UUID) *time.Time {
	if row := f.ClientRows[clientID]; row != nil && row.ReminderNextDate != nil {
		return row.ReminderNextDate
	}
	if row := f.UserRows[userID]; row != nil {
		return row.ReminderNextDate
	}
	return nil
}

func (f *FakeSettingsRepo) WriteNextReminderDate(_ context.Context, userID, clientID uuid.UUID, next time.Time) error {
	f.NextDates = append(f.NextDates, NextDateWrite{UserID: userID, ClientID: clientID, Next: next})
	if row := f.ClientRows[clientID]; row != nil {
		row.ReminderNextDate = &next
		row.FailureCount = 0
	} else if row := f.UserRows[userID]; row != nil {
		row.ReminderNextDate = &next
		row.FailureCount = 0
	}
	f.Failures[clientID] = 0
	return nil
}

func (f *FakeSettingsRepo) RecordSendFailure(_ context.Context, _, clientID uuid.UUID) (int, error) {
	f.Failures[clientID]++
	return f.Failures[clientID], nil
}

type usageKey struct {
	userID  uuid.UUID
	channel domain.Channel
	kind    domain.MessageKind
}

// FakeUsageRepo counts sends in memory, ignoring month boundaries.
type FakeUsageRepo struct {
	Counts map[usageKey]int
}

func NewFakeUsageRepo() *FakeUsageRepo {
	return &FakeUsageRepo{Counts: make(map[usageKey]int)}
}

func (f *FakeUsageRepo) RecordSend(_ context.Context, userID uuid.UUID, channel domain.Channel, kind domain.MessageKind, _ time.Time) error {
	f.Counts[usageKey{userID, channel, kind}]++
	return nil
}

func (f *FakeUsageRepo) MonthTotal(_ context.Context, userID uuid.UUID, channel domain.Channel, _ time.Time) (int, error) {
	total := 0
	for key, n := range f.Counts {
		if key.userID == userID && key.channel == channel {
			total += n
		}
	}
	return total, nil
}

func (f *FakeUsageRepo) Get(_ context.Context, userID uuid.UUID, at time.Time) (*dto.UsageRead, error) {
	return &dto.UsageRead{
		Year:                   at.Year(),
		Month:                  int(at.Month()),
		SMSRemindersSent:       f.Counts[usageKey{userID, domain.ChannelSMS, domain.KindReminder}],
		SMSNotificationsSent:   f.Counts[usageKey{userID, domain.ChannelSMS, domain.KindNotification}],
		EmailRemindersSent:     f.Counts[usageKey{userID, domain.ChannelEmail, domain.KindReminder}],
		EmailNotificationsSent: f.Counts[usageKey{userID, domain.ChannelEmail, domain.KindNotification}],
	}, nil
}

// Sent returns the recorded count for one counter, for assertions.
func (f *FakeUsageRepo) Sent(userID uuid.UUID, channel domain.Channel, kind domain.MessageKind) int {
	return f.Counts[usageKey{userID, channel, kind}]
}

// FakeTransactionRepo appends created transactions.
type FakeTransactionRepo struct {
	Created   []dto.TransactionRead
	CreateErr error
}

func (f *FakeTransactionRepo) Create(_ context.Context, userID uuid.UUID, tc *dto.TransactionCreate) (*dto.TransactionRead, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	createdDate := tc.CreatedDate
	if createdDate.IsZero() {
		createdDate = time.Now().UTC()
	}
	tx := dto.TransactionRead{
		ID:                uuid.New(),
		UserID:            userID,
		ClientID:          tc.ClientID,
		TransactionNumber: fmt.Sprintf("TXN-%03d", len(f.Created)+1),
		Amount:            tc.Amount,
		Type:              tc.Type,
		Description:       tc.Description,
		CreatedDate:       createdDate,
	}
	f.Created = append(f.Created, tx)
	return &tx, nil
}

// FakeUserRepo serves users and business profiles from maps.
type FakeUserRepo struct {
	Users    map[uuid.UUID]*dto.UserRead
	Business map[uuid.UUID]*dto.BusinessInfoRead
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		Users:    make(map[uuid.UUID]*dto.UserRead),
		Business: make(map[uuid.UUID]*dto.BusinessInfoRead),
	}
}

func (f *FakeUserRepo) Get(_ context.Context, id uuid.UUID) (*dto.UserRead, error) {
	user, ok := f.Users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *FakeUserRepo) GetBusinessInfo(_ context.Context, userID uuid.UUID) (*dto.BusinessInfoRead, error) {
	return f.Business[userID], nil
}

func (f *FakeUserRepo) UpsertBusinessInfo(_ context.Context, userID uuid.UUID, info *dto.BusinessInfoUpsert) (*dto.BusinessInfoRead, error) {
	read := &dto.BusinessInfoRead{
		UserID:        userID,
		BusinessName:  info.BusinessName,
		BusinessEmail: info.BusinessEmail,
		Phone:         info.Phone,
		Website:       info.Website,
		Address:       info.Address,
		LogoURL:       info.LogoURL,
	}
	f.Business[userID] = read
	return read, nil
}
