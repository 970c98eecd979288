package settings_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/internal/fixtures"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	"github.com/pursuepayments/invoicechase/pkg/service/settings"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func newService(repo *fixtures.FakeSettingsRepo, users *fixtures.FakeUserRepo) *settings.Service {
	return newServiceWithClients(repo, fixtures.NewFakeClientRepo(), users)
}

func newServiceWithClients(repo *fixtures.FakeSettingsRepo, clients *fixtures.FakeClientRepo, users *fixtures.FakeUserRepo) *settings.Service {
	return settings.New(repo, clients, users, slog.Default(),
		settings.WithClock(func() time.Time { return testNow }))
}

func TestGet_DefaultsWhenNoRow(t *testing.T) {
	svc := newService(fixtures.NewFakeSettingsRepo(), fixtures.NewFakeUserRepo())

	read, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "email", *read.CommunicationMethod)
	assert.True(t, *read.SendAutomatedReminders)
	assert.True(t, *read.SendTransactionNotifications)
	assert.Equal(t, 7, *read.ReminderFrequencyDays)
	assert.True(t, read.ReminderMinimumBalance.IsZero())
	assert.Nil(t, read.ReminderNextDate)
}

func TestGet_ReturnsStoredRow(t *testing.T) {
	repo := fixtures.NewFakeSettingsRepo()
	userID := uuid.New()
	method := domain.ChannelSMS
	days := 14
	repo.UserRows[userID] = &dto.StoredSettings{Settings: domain.Settings{
		CommunicationMethod:   &method,
		ReminderFrequencyDays: &days,
	}}
	svc := newService(repo, fixtures.NewFakeUserRepo())

	read, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "sms", *read.CommunicationMethod)
	assert.Equal(t, 14, *read.ReminderFrequencyDays)
	assert.Nil(t, read.SendAutomatedReminders, "unset fields stay unset")
}

func TestUpdate_FrequencyChangeReschedules(t *testing.T) {
	repo := fixtures.NewFakeSettingsRepo()
	userID := uuid.New()
	svc := newService(repo, fixtures.NewFakeUserRepo())

	days := 3
	read, err := svc.Update(context.Background(), userID, &dto.SettingsUpdate{
		ReminderFrequencyDays: &days,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, *read.ReminderFrequencyDays)

	// now + 3 days, truncated to the hour
	want := time.Date(2026, 3, 13, 14, 0, 0, 0, time.UTC)
	require.NotNil(t, read.ReminderNextDate)
	assert.Equal(t, want, *read.ReminderNextDate)
}

func TestUpdate_OtherFieldsKeepCursor(t *testing.T) {
	repo := fixtures.NewFakeSettingsRepo()
	userID := uuid.New()
	cursor := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	enabled := true
	repo.UserRows[userID] = &dto.StoredSettings{
		Settings:         domain.Settings{SendAutomatedReminders: &enabled},
		ReminderNextDate: &cursor,
	}
	svc := newService(repo, fixtures.NewFakeUserRepo())

	minBalance := decimal.RequireFromString("250")
	disabled := false
	read, err := svc.Update(context.Background(), userID, &dto.SettingsUpdate{
		SendAutomatedReminders: &disabled,
		ReminderMinimumBalance: &minBalance,
	})
	require.NoError(t, err)
	assert.False(t, *read.SendAutomatedReminders)
	assert.True(t, read.ReminderMinimumBalance.Equal(minBalance))
	require.NotNil(t, read.ReminderNextDate)
	assert.Equal(t, cursor, *read.ReminderNextDate, "cursor untouched without a frequency change")
}

func TestGetClientSettings_NoOverridesIsEmpty(t *testing.T) {
	repo := fixtures.NewFakeSettingsRepo()
	clients := fixtures.NewFakeClientRepo()
	userID, clientID := uuid.New(), uuid.New()
	clients.Clients[clientID] = dto.ClientRead{ID: clientID, UserID: userID}
	svc := newServiceWithClients(repo, clients, fixtures.NewFakeUserRepo())

	read, err := svc.GetClientSettings(context.Background(), userID, clientID)
	require.NoError(t, err)
	assert.Nil(t, read.CommunicationMethod)
	assert.Nil(t, read.SendAutomatedReminders)
	assert.Nil(t, read.ReminderFrequencyDays)
}

func TestGetClientSettings_UnknownClient(t *testing.T) {
	svc := newService(fixtures.NewFakeSettingsRepo(), fixtures.NewFakeUserRepo())

	_, err := svc.GetClientSettings(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestUpdateClientSettings_CreatesOverrideRow(t *testing.T) {
	repo := fixtures.NewFakeSettingsRepo()
	clients := fixtures.NewFakeClientRepo()
	userID, clientID := uuid.New(), uuid.New()
	clients.Clients[clientID] = dto.ClientRead{ID: clientID, UserID: userID}
	svc := newServiceWithClients(repo, clients, fixtures.NewFakeUserRepo())

	disabled := false
	read, err := svc.UpdateClientSettings(context.Background(), userID, clientID, &dto.SettingsUpdate{
		SendAutomatedReminders: &disabled,
	})
	require.NoError(t, err)
	assert.False(t, *read.SendAutomatedReminders)
	assert.Nil(t, read.CommunicationMethod, "untouched fields keep inheriting")
	assert.Nil(t, read.ReminderNextDate, "no frequency change, no client-level cursor")
	require.NotNil(t, repo.ClientRows[clientID])
}

func TestUpdateClientSettings_FrequencyChangeStartsClientCursor(t *testing.T) {
	repo := fixtures.NewFakeSettingsRepo()
	clients := fixtures.NewFakeClientRepo()
	userID, clientID := uuid.New(), uuid.New()
	clients.Clients[clientID] = dto.ClientRead{ID: clientID, UserID: userID}
	svc := newServiceWithClients(repo, clients, fixtures.NewFakeUserRepo())

	days := 3
	read, err := svc.UpdateClientSettings(context.Background(), userID, clientID, &dto.SettingsUpdate{
		ReminderFrequencyDays: &days,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, *read.ReminderFrequencyDays)

	// now + 3 days, truncated to the hour, on the client row
	want := time.Date(2026, 3, 13, 14, 0, 0, 0, time.UTC)
	require.NotNil(t, read.ReminderNextDate)
	assert.Equal(t, want, *read.ReminderNextDate)
	require.NotNil(t, repo.ClientRows[clientID].ReminderNextDate)
	assert.Equal(t, want, *repo.ClientRows[clientID].ReminderNextDate)
}

func TestUpdateClientSettings_UnknownClient(t *testing.T) {
	svc := newService(fixtures.NewFakeSettingsRepo(), fixtures.NewFakeUserRepo())

	days := 3
	_, err := svc.UpdateClientSettings(context.Background(), uuid.New(), uuid.New(), &dto.SettingsUpdate{
		ReminderFrequencyDays: &days,
	})
	require.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestBusinessInfo_RoundTrip(t *testing.T) {
	users := fixtures.NewFakeUserRepo()
	userID := uuid.New()
	svc := newService(fixtures.NewFakeSettingsRepo(), users)

	_, err := svc.GetBusinessInfo(context.Background(), userID)
	require.ErrorIs(t, err, domain.ErrBusinessInfoNotFound)

	saved, err := svc.UpsertBusinessInfo(context.Background(), userID, &dto.BusinessInfoUpsert{
		BusinessName: "Acme Consulting",
		Phone:        "+15550001111",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Consulting", saved.BusinessName)

	got, err := svc.GetBusinessInfo(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}
