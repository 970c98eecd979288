// Package client implements the client repository, including the
// due-candidate scan that drives the automated reminder cycle.
package client

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/infra/repository"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	pkgrepo "github.com/pursuepayments/invoicechase/pkg/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

// New returns a gorm-backed client repository.
func New(db *gorm.DB) pkgrepo.ClientRepository {
	return &repo{db: db}
}

const balanceExpr = `COALESCE(SUM(CASE WHEN t.type = 'invoice' THEN t.amount ELSE 0 END), 0)
	- COALESCE(SUM(CASE WHEN t.type = 'payment' THEN t.amount ELSE 0 END), 0)`

type clientRow struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Name             string
	Email            string
	Phone            string
	Company          string
	Balance          decimal.Decimal
	ReminderLastSent *time.Time
}

func (r *repo) Get(ctx context.Context, userID, clientID uuid.UUID) (*dto.ClientRead, error) {
	var row clientRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id, c.user_id, c.name, c.email, c.phone, c.company, c.reminder_last_sent,
			`+balanceExpr+` AS balance
		FROM clients c
		LEFT JOIN transactions t ON t.client_id = c.id AND t.deleted_at IS NULL
		WHERE c.id = ? AND c.user_id = ? AND c.deleted_at IS NULL
		GROUP BY c.id, c.user_id, c.name, c.email, c.phone, c.company, c.reminder_last_sent`,
		clientID, userID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, domain.ErrClientNotFound
	}
	return mapRow(row), nil
}

func (r *repo) ListWithBalance(ctx context.Context, userID uuid.UUID, clientIDs []uuid.UUID) ([]dto.ClientRead, error) {
	if len(clientIDs) == 0 {
		return nil, nil
	}
	var rows []clientRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id, c.user_id, c.name, c.email, c.phone, c.company, c.reminder_last_sent,
			`+balanceExpr+` AS balance
		FROM clients c
		LEFT JOIN transactions t ON t.client_id = c.id AND t.deleted_at IS NULL
		WHERE c.id IN ? AND c.user_id = ? AND c.deleted_at IS NULL
		GROUP BY c.id, c.user_id, c.name, c.email, c.phone, c.company, c.reminder_last_sent`,
		clientIDs, userID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClientRead, 0, len(rows))
	for _, row := range rows {
		out = append(out, *mapRow(row))
	}
	return out, nil
}

// FindDue selects every client whose effective reminder cursor is inside the
// due window: the client-level cursor when set, else the user-level one. A
// cursor is due when its hour slot equals now's hour slot, or when it falls
// at or before now+grace (catch-up for delayed runs).
func (r *repo) FindDue(ctx context.Context, now time.Time, grace time.Duration) ([]dto.Candidate, error) {
	hourSlot := now.UTC().Truncate(time.Hour)
	cutoff := now.UTC().Add(grace)

	var rows []struct {
		ClientID uuid.UUID
		UserID   uuid.UUID
		Name     string
		Email    string
		Phone    string
		Balance  decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id AS client_id, c.user_id, c.name, c.email, c.phone,
			`+balanceExpr+` AS balance
		FROM clients c
		LEFT JOIN client_settings cs ON cs.client_id = c.id AND cs.user_id = c.user_id AND cs.deleted_at IS NULL
		LEFT JOIN user_settings us ON us.user_id = c.user_id AND us.deleted_at IS NULL
		LEFT JOIN transactions t ON t.client_id = c.id AND t.deleted_at IS NULL
		WHERE c.deleted_at IS NULL AND (
			(cs.reminder_next_date IS NOT NULL AND
				(date_trunc('hour', cs.reminder_next_date) = ? OR cs.reminder_next_date <= ?))
			OR
			(cs.reminder_next_date IS NULL AND us.reminder_next_date IS NOT NULL AND
				(date_trunc('hour', us.reminder_next_date) = ? OR us.reminder_next_date <= ?))
		)
		GROUP BY c.id, c.user_id, c.name, c.email, c.phone`,
		hourSlot, cutoff, hourSlot, cutoff,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]dto.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, dto.Candidate{
			ClientID: row.ClientID,
			UserID:   row.UserID,
			Name:     row.Name,
			Email:    row.Email,
			Phone:    row.Phone,
			Balance:  row.Balance,
		})
	}
	return candidates, nil
}

func (r *repo) MarkReminderSent(ctx context.Context, clientID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&repository.Client{}).
		Where("id = ?", clientID).
		Update("reminder_last_sent", at.UTC()).Error
}

func mapRow(row clientRow) *dto.ClientRead {
	return &dto.ClientRead{
		ID:               row.ID,
		UserID:           row.UserID,
		Name:             row.Name,
		Email:            row.Email,
		Phone:            row.Phone,
		Company:          row.Company,
		Balance:          row.Balance,
		ReminderLastSent: row.ReminderLastSent,
	}
}

var _ pkgrepo.ClientRepository = (*repo)(nil)
