package usage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/pkg/domain"
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

func TestRecordSend_UpsertsCounter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)INSERT INTO "monthly_usages".+ON CONFLICT \("user_id","year","month"\) DO UPDATE SET.+email_reminders_sent`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.RecordSend(context.Background(), uuid.New(), domain.ChannelEmail, domain.KindReminder,
		time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSend_UnknownCounter(t *testing.T) {
	db, _ := newMockDB(t)
	repo := New(db)

	err := repo.RecordSend(context.Background(), uuid.New(), domain.Channel("fax"), domain.KindReminder, time.Now())
	require.Error(t, err)
}

func TestMonthTotal_SumsBothKinds(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)
	userID := uuid.New()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT COALESCE\(SUM\(sms_reminders_sent \+ sms_notifications_sent\), 0\) FROM monthly_usages`).
		WithArgs(userID, 2026, 3).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(7))

	total, err := repo.MonthTotal(context.Background(), userID, domain.ChannelSMS, at)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_ZeroRowWhenAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := New(db)
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "monthly_usages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	read, err := repo.Get(context.Background(), uuid.New(), at)
	require.NoError(t, err)
	assert.Equal(t, 2026, read.Year)
	assert.Equal(t, 3, read.Month)
	assert.Zero(t, read.EmailRemindersSent)
}
