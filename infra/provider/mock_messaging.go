package provider

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/pkg/provider"
)

// MockMessagingSender is an in-memory sender used in development and tests.
// It records every message and can be told to fail.
type MockMessagingSender struct {
	mu     sync.Mutex
	logger *slog.Logger

	Emails []provider.EmailMessage
	SMS    []MockSMS

	FailEmail error
	FailSMS   error
}

// MockSMS is one recorded SMS send.
type MockSMS struct {
	To   string
	Body string
}

// NewMockMessagingSender returns a sender that accepts everything.
func NewMockMessagingSender(logger *slog.Logger) *MockMessagingSender {
	return &MockMessagingSender{logger: logger}
}

func (m *MockMessagingSender) SendEmail(_ context.Context, msg provider.EmailMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEmail != nil {
		return "", m.FailEmail
	}
	m.Emails = append(m.Emails, msg)
	receipt := uuid.NewString()
	m.logger.Info("Mock email sent", "to", msg.To, "subject", msg.Subject, "receipt", receipt)
	return receipt, nil
}

func (m *MockMessagingSender) SendSMS(_ context.Context, to, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSMS != nil {
		return "", m.FailSMS
	}
	m.SMS = append(m.SMS, MockSMS{To: to, Body: body})
	receipt := uuid.NewString()
	m.logger.Info("Mock SMS sent", "to", to, "receipt", receipt)
	return receipt, nil
}

var (
	_ provider.EmailSender = (*MockMessagingSender)(nil)
	_ provider.SMSSender   = (*MockMessagingSender)(nil)
)
