package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/config"
	infraprovider "github.com/pursuepayments/invoicechase/infra/provider"
	"github.com/pursuepayments/invoicechase/internal/fixtures"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	"github.com/pursuepayments/invoicechase/pkg/service/notification"
	"github.com/pursuepayments/invoicechase/pkg/service/quota"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	svc          *notification.Service
	transactions *fixtures.FakeTransactionRepo
	settings     *fixtures.FakeSettingsRepo
	usage        *fixtures.FakeUsageRepo
	sender       *infraprovider.MockMessagingSender

	userID   uuid.UUID
	clientID uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.Default()
	h := &harness{
		transactions: &fixtures.FakeTransactionRepo{},
		settings:     fixtures.NewFakeSettingsRepo(),
		usage:        fixtures.NewFakeUsageRepo(),
		sender:       infraprovider.NewMockMessagingSender(logger),
		userID:       uuid.New(),
		clientID:     uuid.New(),
	}

	users := fixtures.NewFakeUserRepo()
	users.Users[h.userID] = &dto.UserRead{
		ID:             h.userID,
		Email:          "owner@example.com",
		Name:           "Avery Owner",
		Currency:       "USD",
		CurrencySymbol: "$",
		PlanType:       domain.PlanFree,
	}

	clients := fixtures.NewFakeClientRepo()
	clients.Clients[h.clientID] = dto.ClientRead{
		ID:      h.clientID,
		UserID:  h.userID,
		Name:    "Pat Client",
		Email:   "pat@example.com",
		Phone:   "+15552223333",
		Balance: decimal.NewFromInt(200),
	}

	quotaSvc := quota.New(h.usage, config.QuotaConfig{
		SMSLimits:   map[string]int{"free": 10},
		EmailLimits: map[string]int{"free": 100},
	}, logger)

	h.svc = notification.New(
		h.transactions, clients, h.settings, users, quotaSvc,
		h.sender, h.sender,
		config.MessagingConfig{
			FromInvoice: "Invoices <invoices@acme.test>",
			FromReceipt: "Receipts <receipts@acme.test>",
		},
		logger,
	)
	return h
}

func boolPtr(b bool) *bool { return &b }

func TestRecordTransaction_InvoiceSendsNotification(t *testing.T) {
	h := newHarness(t)

	tx, notif, err := h.svc.RecordTransaction(context.Background(), h.userID, &dto.TransactionCreate{
		ClientID: h.clientID,
		Amount:   decimal.NewFromFloat(120.50),
		Type:     string(domain.TransactionInvoice),
	})
	require.NoError(t, err)
	assert.Equal(t, "TXN-001", tx.TransactionNumber)

	require.NotNil(t, notif)
	assert.True(t, notif.Success)
	assert.Equal(t, domain.ChannelEmail, notif.Method)
	assert.Equal(t, "pat@example.com", notif.SentTo)

	require.Len(t, h.sender.Emails, 1)
	email := h.sender.Emails[0]
	assert.Contains(t, email.Subject, "Invoice")
	assert.Contains(t, email.Text, "120.50")
	assert.Equal(t, "Invoices <invoices@acme.test>", email.From)
	assert.Equal(t, 1, h.usage.Sent(h.userID, domain.ChannelEmail, domain.KindNotification))
}

func TestRecordTransaction_PaymentUsesReceiptAddress(t *testing.T) {
	h := newHarness(t)

	_, notif, err := h.svc.RecordTransaction(context.Background(), h.userID, &dto.TransactionCreate{
		ClientID: h.clientID,
		Amount:   decimal.NewFromInt(75),
		Type:     string(domain.TransactionPayment),
	})
	require.NoError(t, err)
	assert.True(t, notif.Success)

	require.Len(t, h.sender.Emails, 1)
	assert.Contains(t, h.sender.Emails[0].Subject, "Payment")
	assert.Equal(t, "Receipts <receipts@acme.test>", h.sender.Emails[0].From)
}

func TestRecordTransaction_NotificationsDisabledStillRecords(t *testing.T) {
	h := newHarness(t)
	h.settings.UserRows[h.userID] = &dto.StoredSettings{Settings: domain.Settings{
		SendTransactionNotifications: boolPtr(false),
	}}

	tx, notif, err := h.svc.RecordTransaction(context.Background(), h.userID, &dto.TransactionCreate{
		ClientID: h.clientID,
		Amount:   decimal.NewFromInt(40),
		Type:     string(domain.TransactionInvoice),
	})
	require.NoError(t, err)
	assert.NotNil(t, tx)

	assert.False(t, notif.Success)
	assert.Equal(t, domain.SkipNotificationsDisabled, notif.Message)
	assert.Empty(t, h.sender.Emails)
	assert.Len(t, h.transactions.Created, 1)
}

func TestRecordTransaction_SendFailureDoesNotFailRequest(t *testing.T) {
	h := newHarness(t)
	h.sender.FailEmail = errors.New("provider down")

	tx, notif, err := h.svc.RecordTransaction(context.Background(), h.userID, &dto.TransactionCreate{
		ClientID: h.clientID,
		Amount:   decimal.NewFromInt(40),
		Type:     string(domain.TransactionInvoice),
	})
	require.NoError(t, err)
	assert.NotNil(t, tx)
	assert.False(t, notif.Success)
	assert.Equal(t, "Failed to send", notif.Message)
	assert.Zero(t, h.usage.Sent(h.userID, domain.ChannelEmail, domain.KindNotification))
}

func TestRecordTransaction_QuotaBlocksNotification(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 100; i++ {
		require.NoError(t, h.usage.RecordSend(context.Background(), h.userID, domain.ChannelEmail, domain.KindNotification, time.Now()))
	}

	_, notif, err := h.svc.RecordTransaction(context.Background(), h.userID, &dto.TransactionCreate{
		ClientID: h.clientID,
		Amount:   decimal.NewFromInt(40),
		Type:     string(domain.TransactionInvoice),
	})
	require.NoError(t, err)
	assert.False(t, notif.Success)
	assert.Equal(t, "Monthly email limit reached", notif.Message)
	assert.Empty(t, h.sender.Emails)
	assert.Len(t, h.transactions.Created, 1, "the transaction itself is never blocked")
}

func TestRecordTransaction_UnknownClient(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.svc.RecordTransaction(context.Background(), h.userID, &dto.TransactionCreate{
		ClientID: uuid.New(),
		Amount:   decimal.NewFromInt(40),
		Type:     string(domain.TransactionInvoice),
	})
	require.ErrorIs(t, err, domain.ErrClientNotFound)
	assert.Empty(t, h.transactions.Created)
}

func TestRecordTransaction_SMSNotification(t *testing.T) {
	h := newHarness(t)
	method := domain.ChannelSMS
	h.settings.ClientRows[h.clientID] = &dto.StoredSettings{Settings: domain.Settings{
		CommunicationMethod: &method,
	}}

	_, notif, err := h.svc.RecordTransaction(context.Background(), h.userID, &dto.TransactionCreate{
		ClientID: h.clientID,
		Amount:   decimal.NewFromInt(75),
		Type:     string(domain.TransactionPayment),
	})
	require.NoError(t, err)
	assert.True(t, notif.Success)
	require.Len(t, h.sender.SMS, 1)
	assert.Contains(t, h.sender.SMS[0].Body, "payment")
	assert.Contains(t, h.sender.SMS[0].Body, "75.00 USD")
}
