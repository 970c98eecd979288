// Package transaction implements transaction persistence.
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/infra/repository"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	pkgrepo "github.com/pursuepayments/invoicechase/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

// New returns a gorm-backed transaction repository.
func New(db *gorm.DB) pkgrepo.TransactionRepository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, userID uuid.UUID, tc *dto.TransactionCreate) (*dto.TransactionRead, error) {
	createdDate := tc.CreatedDate
	if createdDate.IsZero() {
		createdDate = time.Now().UTC()
	}

	row := repository.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		ClientID:    tc.ClientID,
		Amount:      tc.Amount,
		Type:        tc.Type,
		Description: tc.Description,
		CreatedDate: createdDate,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&repository.Transaction{}).
			Where("user_id = ?", userID).
			Count(&count).Error; err != nil {
			return err
		}
		row.TransactionNumber = fmt.Sprintf("TXN-%03d", count+1)
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}

	return &dto.TransactionRead{
		ID:                row.ID,
		UserID:            row.UserID,
		ClientID:          row.ClientID,
		TransactionNumber: row.TransactionNumber,
		Amount:            row.Amount,
		Type:              row.Type,
		Description:       row.Description,
		CreatedDate:       row.CreatedDate,
	}, nil
}

var _ pkgrepo.TransactionRepository = (*repo)(nil)
