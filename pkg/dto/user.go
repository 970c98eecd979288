package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/pkg/domain"
)

// UserRead represents a read-optimized view of a user account.
type UserRead struct {
	ID             uuid.UUID   `json:"id"`
	Email          string      `json:"email"`
	Name           string      `json:"name"`
	Currency       string      `json:"currency"`
	CurrencySymbol string      `json:"currency_symbol"`
	PlanType       domain.Plan `json:"plan_type"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// BusinessInfoRead is a user's business profile used for message branding.
type BusinessInfoRead struct {
	UserID        uuid.UUID `json:"user_id"`
	BusinessName  string    `json:"business_name"`
	BusinessEmail string    `json:"business_email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Website       string    `json:"website,omitempty"`
	Address       string    `json:"address,omitempty"`
	LogoURL       string    `json:"logo_url,omitempty"`
}

// BusinessInfoUpsert is the writable portion of a business profile.
type BusinessInfoUpsert struct {
	BusinessName  string `json:"business_name" validate:"required,max=255"`
	BusinessEmail string `json:"business_email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty"`
	Website       string `json:"website,omitempty"`
	Address       string `json:"address,omitempty"`
	LogoURL       string `json:"logo_url,omitempty"`
}
