package settings

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGetForUser_NoRowIsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectQuery(`SELECT \* FROM "user_settings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	stored, err := repo.GetForUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestGetForUser_MapsColumns(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)
	userID := uuid.New()
	next := time.Date(2026, 3, 17, 14, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "communication_method", "send_automated_reminders",
		"send_transaction_notifications", "reminder_frequency_days",
		"reminder_minimum_balance", "reminder_next_date", "reminder_failure_count",
	}).AddRow(uuid.New(), userID, "sms", false, true, 14, "250.00", next, 2)
	mock.ExpectQuery(`SELECT \* FROM "user_settings"`).
		WillReturnRows(rows)

	stored, err := repo.GetForUser(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "sms", string(*stored.CommunicationMethod))
	assert.False(t, *stored.SendAutomatedReminders)
	assert.Equal(t, 14, *stored.ReminderFrequencyDays)
	assert.Equal(t, "250", stored.ReminderMinimumBalance.String())
	require.NotNil(t, stored.ReminderNextDate)
	assert.Equal(t, next, *stored.ReminderNextDate)
	assert.Equal(t, 2, stored.FailureCount)
}

func TestUpsertClientSettings_UpdatesExistingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)
	userID, clientID := uuid.New(), uuid.New()
	next := time.Date(2026, 3, 13, 14, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "client_settings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "client_id"}).
			AddRow(uuid.New(), userID, clientID))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "client_settings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	days := 3
	err := repo.UpsertClientSettings(context.Background(), userID, clientID,
		&dto.SettingsUpdate{ReminderFrequencyDays: &days}, &next)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteNextReminderDate_PrefersClientRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "client_settings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WriteNextReminderDate(context.Background(), uuid.New(), uuid.New(),
		time.Date(2026, 3, 17, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "user row untouched when the client row exists")
}

func TestWriteNextReminderDate_FallsBackToUserRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "client_settings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "user_settings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WriteNextReminderDate(context.Background(), uuid.New(), uuid.New(),
		time.Date(2026, 3, 17, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSendFailure_ClientRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "client_settings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT.*reminder_failure_count.* FROM "client_settings"`).
		WillReturnRows(sqlmock.NewRows([]string{"reminder_failure_count"}).AddRow(3))

	count, err := repo.RecordSendFailure(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
