package dto

import (
	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/pkg/domain"
)

// DispatchResult is the per-client outcome of one reminder dispatch attempt.
type DispatchResult struct {
	ClientID uuid.UUID      `json:"client_id"`
	Success  bool           `json:"success"`
	Method   domain.Channel `json:"method,omitempty"`
	SentTo   string         `json:"sent_to,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// CycleResult is the outcome of one full automated dispatch cycle.
type CycleResult struct {
	Success bool             `json:"success"`
	Results []DispatchResult `json:"results"`
	Message string           `json:"message"`
}
