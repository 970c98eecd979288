// Package settings implements persistence for the two settings levels and
// the reminder cursor write-back rules.
package settings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/infra/repository"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	pkgrepo "github.com/pursuepayments/invoicechase/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

// New returns a gorm-backed settings repository.
func New(db *gorm.DB) pkgrepo.SettingsRepository {
	return &repo{db: db}
}

func (r *repo) GetForUser(ctx context.Context, userID uuid.UUID) (*dto.StoredSettings, error) {
	var row repository.UserSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	method := domain.Channel(row.CommunicationMethod)
	minBalance := row.ReminderMinimumBalance
	freq := row.ReminderFrequencyDays
	reminders := row.SendAutomatedReminders
	notifications := row.SendTransactionNotifications
	return &dto.StoredSettings{
		Settings: domain.Settings{
			CommunicationMethod:          &method,
			SendAutomatedReminders:       &reminders,
			SendTransactionNotifications: &notifications,
			ReminderFrequencyDays:        &freq,
			ReminderMinimumBalance:       &minBalance,
		},
		ReminderNextDate: row.ReminderNextDate,
		FailureCount:     row.ReminderFailureCount,
	}, nil
}

func (r *repo) GetForClient(ctx context.Context, userID, clientID uuid.UUID) (*dto.StoredSettings, error) {
	var row repository.ClientSettings
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND client_id = ?", userID, clientID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var method *domain.Channel
	if row.CommunicationMethod != nil && *row.CommunicationMethod != "" {
		m := domain.Channel(*row.CommunicationMethod)
		method = &m
	}
	return &dto.StoredSettings{
		Settings: domain.Settings{
			CommunicationMethod:          method,
			SendAutomatedReminders:       row.SendAutomatedReminders,
			SendTransactionNotifications: row.SendTransactionNotifications,
			ReminderFrequencyDays:        row.ReminderFrequencyDays,
			ReminderMinimumBalance:       row.ReminderMinimumBalance,
		},
		ReminderNextDate: row.ReminderNextDate,
		FailureCount:     row.ReminderFailureCount,
	}, nil
}

func (r *repo) UpsertUserSettings(ctx context.Context, userID uuid.UUID, update *dto.SettingsUpdate, nextDate *time.Time) error {
	var existing repository.UserSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := repository.UserSettings{ID: uuid.New(), UserID: userID}
		applyDefaults(&row)
		applyUpdate(&row, update)
		row.ReminderNextDate = nextDate
		return r.db.WithContext(ctx).Create(&row).Error
	case err != nil:
		return err
	}

	updates := updateMap(update)
	if nextDate != nil {
		updates["reminder_next_date"] = nextDate.UTC()
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&repository.UserSettings{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}

func (r *repo) UpsertClientSettings(ctx context.Context, userID, clientID uuid.UUID, update *dto.SettingsUpdate, nextDate *time.Time) error {
	var existing repository.ClientSettings
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND client_id = ?", userID, clientID).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fields left nil stay null and keep inheriting
		row := repository.ClientSettings{
			ID:                           uuid.New(),
			UserID:                       userID,
			ClientID:                     clientID,
			CommunicationMethod:          update.CommunicationMethod,
			SendAutomatedReminders:       update.SendAutomatedReminders,
			SendTransactionNotifications: update.SendTransactionNotifications,
			ReminderFrequencyDays:        update.ReminderFrequencyDays,
			ReminderMinimumBalance:       update.ReminderMinimumBalance,
			ReminderNextDate:             nextDate,
		}
		return r.db.WithContext(ctx).Create(&row).Error
	case err != nil:
		return err
	}

	updates := updateMap(update)
	if nextDate != nil {
		updates["reminder_next_date"] = nextDate.UTC()
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&repository.ClientSettings{}).
		Where("user_id = ? AND client_id = ?", userID, clientID).
		Updates(updates).Error
}

// WriteNextReminderDate advances the cursor on whichever row governs the
// client's schedule: the client-level row when one exists, else the
// user-level row. Never both. The consecutive-failure counter resets with
// the advance.
func (r *repo) WriteNextReminderDate(ctx context.Context, userID, clientID uuid.UUID, next time.Time) error {
	res := r.db.WithContext(ctx).Model(&repository.ClientSettings{}).
		Where("user_id = ? AND client_id = ?", userID, clientID).
		Updates(map[string]any{
			"reminder_next_date":     next.UTC(),
			"reminder_failure_count": 0,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&repository.UserSettings{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"reminder_next_date":     next.UTC(),
			"reminder_failure_count": 0,
		}).Error
}

func (r *repo) RecordSendFailure(ctx context.Context, userID, clientID uuid.UUID) (int, error) {
	res := r.db.WithContext(ctx).Model(&repository.ClientSettings{}).
		Where("user_id = ? AND client_id = ?", userID, clientID).
		Update("reminder_failure_count", gorm.Expr("reminder_failure_count + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		var count int
		err := r.db.WithContext(ctx).Model(&repository.ClientSettings{}).
			Where("user_id = ? AND client_id = ?", userID, clientID).
			Select("reminder_failure_count").Scan(&count).Error
		return count, err
	}

	if err := r.db.WithContext(ctx).Model(&repository.UserSettings{}).
		Where("user_id = ?", userID).
		Update("reminder_failure_count", gorm.Expr("reminder_failure_count + 1")).Error; err != nil {
		return 0, err
	}
	var count int
	err := r.db.WithContext(ctx).Model(&repository.UserSettings{}).
		Where("user_id = ?", userID).
		Select("reminder_failure_count").Scan(&count).Error
	return count, err
}

func applyDefaults(row *repository.UserSettings) {
	row.CommunicationMethod = string(domain.DefaultChannel)
	row.SendAutomatedReminders = true
	row.SendTransactionNotifications = true
	row.ReminderFrequencyDays = domain.DefaultFrequencyDays
}

func applyUpdate(row *repository.UserSettings, update *dto.SettingsUpdate) {
	if update.CommunicationMethod != nil {
		row.CommunicationMethod = *update.CommunicationMethod
	}
	if update.SendAutomatedReminders != nil {
		row.SendAutomatedReminders = *update.SendAutomatedReminders
	}
	if update.SendTransactionNotifications != nil {
		row.SendTransactionNotifications = *update.SendTransactionNotifications
	}
	if update.ReminderFrequencyDays != nil {
		row.ReminderFrequencyDays = *update.ReminderFrequencyDays
	}
	if update.ReminderMinimumBalance != nil {
		row.ReminderMinimumBalance = *update.ReminderMinimumBalance
	}
}

func updateMap(update *dto.SettingsUpdate) map[string]any {
	updates := make(map[string]any)
	if update.CommunicationMethod != nil {
		updates["communication_method"] = *update.CommunicationMethod
	}
	if update.SendAutomatedReminders != nil {
		updates["send_automated_reminders"] = *update.SendAutomatedReminders
	}
	if update.SendTransactionNotifications != nil {
		updates["send_transaction_notifications"] = *update.SendTransactionNotifications
	}
	if update.ReminderFrequencyDays != nil {
		updates["reminder_frequency_days"] = *update.ReminderFrequencyDays
	}
	if update.ReminderMinimumBalance != nil {
		updates["reminder_minimum_balance"] = *update.ReminderMinimumBalance
	}
	return updates
}

var _ pkgrepo.SettingsRepository = (*repo)(nil)
