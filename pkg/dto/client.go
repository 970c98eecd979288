package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientRead represents a read-optimized view of a client with its computed
// balance (invoices minus payments, never stored).
type ClientRead struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	Name             string          `json:"name"`
	Email            string          `json:"email,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	Company          string          `json:"company,omitempty"`
	Balance          decimal.Decimal `json:"balance"`
	ReminderLastSent *time.Time      `json:"reminder_last_sent,omitempty"`
}

// Candidate is one row produced by the due-candidate scan: a client whose
// effective reminder cursor falls inside the current due window.
type Candidate struct {
	ClientID uuid.UUID
	UserID   uuid.UUID
	Name     string
	Email    string
	Phone    string
	Balance  decimal.Decimal
}

// TransactionCreate is the data needed to record an invoice or a payment.
type TransactionCreate struct {
	ClientID    uuid.UUID       `json:"client_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=invoice payment"`
	Description string          `json:"description,omitempty"`
	CreatedDate time.Time       `json:"created_date,omitempty"`
}

// TransactionRead represents a stored transaction.
type TransactionRead struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	ClientID          uuid.UUID       `json:"client_id"`
	TransactionNumber string          `json:"transaction_number"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type"`
	Description       string          `json:"description,omitempty"`
	CreatedDate       time.Time       `json:"created_date"`
}
