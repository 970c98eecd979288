// Package usage implements the monthly send-counter ledger. Increments use
// an upsert so concurrent dispatch for the same user never loses counts.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/infra/repository"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	pkgrepo "github.com/pursuepayments/invoicechase/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

// New returns a gorm-backed usage repository.
func New(db *gorm.DB) pkgrepo.UsageRepository {
	return &repo{db: db}
}

func counterColumn(channel domain.Channel, kind domain.MessageKind) (string, error) {
	switch {
	case channel == domain.ChannelSMS && kind == domain.KindReminder:
		return "sms_reminders_sent", nil
	case channel == domain.ChannelSMS && kind == domain.KindNotification:
		return "sms_notifications_sent", nil
	case channel == domain.ChannelEmail && kind == domain.KindReminder:
		return "email_reminders_sent", nil
	case channel == domain.ChannelEmail && kind == domain.KindNotification:
		return "email_notifications_sent", nil
	}
	return "", fmt.Errorf("no usage counter for channel %q kind %q", channel, kind)
}

// RecordSend lazily creates the (user, year, month) row and increments
// exactly one of the four counters, atomically on conflict.
func (r *repo) RecordSend(ctx context.Context, userID uuid.UUID, channel domain.Channel, kind domain.MessageKind, at time.Time) error {
	column, err := counterColumn(channel, kind)
	if err != nil {
		return err
	}

	at = at.UTC()
	row := repository.MonthlyUsage{
		UserID: userID,
		Year:   at.Year(),
		Month:  int(at.Month()),
	}
	switch column {
	case "sms_reminders_sent":
		row.SMSRemindersSent = 1
	case "sms_notifications_sent":
		row.SMSNotificationsSent = 1
	case "email_reminders_sent":
		row.EmailRemindersSent = 1
	case "email_notifications_sent":
		row.EmailNotificationsSent = 1
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]any{
			column: gorm.Expr(column + " + 1"),
		}),
	}).Create(&row).Error
}

func (r *repo) MonthTotal(ctx context.Context, userID uuid.UUID, channel domain.Channel, at time.Time) (int, error) {
	expr := "email_reminders_sent + email_notifications_sent"
	if channel == domain.ChannelSMS {
		expr = "sms_reminders_sent + sms_notifications_sent"
	}

	at = at.UTC()
	var total int
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(`+expr+`), 0) FROM monthly_usages
		WHERE user_id = ? AND year = ? AND month = ? AND deleted_at IS NULL`,
		userID, at.Year(), int(at.Month()),
	).Scan(&total).Error
	return total, err
}

func (r *repo) Get(ctx context.Context, userID uuid.UUID, at time.Time) (*dto.UsageRead, error) {
	at = at.UTC()
	read := &dto.UsageRead{Year: at.Year(), Month: int(at.Month())}

	var row repository.MonthlyUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND month = ?", userID, read.Year, read.Month).
		Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	read.SMSRemindersSent = row.SMSRemindersSent
	read.SMSNotificationsSent = row.SMSNotificationsSent
	read.EmailRemindersSent = row.EmailRemindersSent
	read.EmailNotificationsSent = row.EmailNotificationsSent
	return read, nil
}

var _ pkgrepo.UsageRepository = (*repo)(nil)
