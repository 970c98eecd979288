// Package user implements user and business-profile persistence.
package user

import (
	"context"
	"errors"

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

// New returns a gorm-backed user repository.
func New(db *gorm.DB) pkgrepo.UserRepository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*dto.UserRead, error) {
	var row repository.User
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dto.UserRead{
		ID:             row.ID,
		Email:          row.Email,
		Name:           row.Name,
		Currency:       row.Currency,
		CurrencySymbol: row.CurrencySymbol,
		PlanType:       domain.Plan(row.PlanType),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

func (r *repo) GetBusinessInfo(ctx context.Context, userID uuid.UUID) (*dto.BusinessInfoRead, error) {
	var row repository.BusinessInfo
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapBusiness(&row), nil
}

func (r *repo) UpsertBusinessInfo(ctx context.Context, userID uuid.UUID, info *dto.BusinessInfoUpsert) (*dto.BusinessInfoRead, error) {
	var row repository.BusinessInfo
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = repository.BusinessInfo{ID: uuid.New(), UserID: userID}
	case err != nil:
		return nil, err
	}

	row.BusinessName = info.BusinessName
	row.BusinessEmail = info.BusinessEmail
	row.Phone = info.Phone
	row.Website = info.Website
	row.Address = info.Address
	row.LogoURL = info.LogoURL

	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, err
	}
	return mapBusiness(&row), nil
}

func mapBusiness(row *repository.BusinessInfo) *dto.BusinessInfoRead {
	return &dto.BusinessInfoRead{
		UserID:        row.UserID,
		BusinessName:  row.BusinessName,
		BusinessEmail: row.BusinessEmail,
		Phone:         row.Phone,
		Website:       row.Website,
		Address:       row.Address,
		LogoURL:       row.LogoURL,
	}
}

var _ pkgrepo.UserRepository = (*repo)(nil)
