package message_test

import (
	"strings"
	"testing"

	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/message"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderEmail_StandardTone(t *testing.T) {
	t.Parallel()
	email := message.ReminderEmail("Acme Co", "Jordan", decimal.RequireFromString("1234.5"), "$", false)

	assert.Equal(t, "Payment Reminder: $1,234.50 Outstanding", email.Subject)
	assert.Contains(t, email.HTML, "Automated Balance Reminder")
	assert.Contains(t, email.HTML, "Dear Jordan,")
	assert.Contains(t, email.Text, "$1,234.50")
	assert.NotContains(t, email.Text, "<strong>")
}

func TestReminderEmail_UrgentTone(t *testing.T) {
	t.Parallel()
	email := message.ReminderEmail("Acme Co", "Jordan", decimal.RequireFromString("200"), "$", true)

	assert.Equal(t, "Urgent Reminder: $200.00 Outstanding", email.Subject)
	assert.Contains(t, email.HTML, "Urgent Payment Reminder")
	assert.Contains(t, email.HTML, "Pay Now")
}

func TestTransactionEmail(t *testing.T) {
	t.Parallel()
	email := message.TransactionEmail("Acme Co", "Jordan", domain.TransactionPayment, decimal.RequireFromString("150.25"), "$")
	assert.Equal(t, "New Payment ($150.25) from Acme Co", email.Subject)
	assert.Contains(t, email.HTML, "New Payment Notification")

	email = message.TransactionEmail("Acme Co", "Jordan", domain.TransactionInvoice, decimal.RequireFromString("150.25"), "$")
	assert.Contains(t, email.Subject, "New Invoice")
}

func TestReminderSMS(t *testing.T) {
	t.Parallel()
	body := message.ReminderSMS("Acme Co", "Jordan", decimal.RequireFromString("99.9"), "$", false)
	require.True(t, strings.HasPrefix(body, "Hello Jordan,"))
	assert.Contains(t, body, "$99.90")

	urgentBody := message.ReminderSMS("Acme Co", "Jordan", decimal.RequireFromString("99.9"), "$", true)
	require.True(t, strings.HasPrefix(urgentBody, "Dear Jordan,"))
	assert.Contains(t, urgentBody, "outstanding balance")
}

func TestTransactionSMS(t *testing.T) {
	t.Parallel()
	body := message.TransactionSMS("Acme Co", "Jordan", domain.TransactionInvoice, decimal.RequireFromString("1000000"), "USD")
	assert.Contains(t, body, "1,000,000.00 USD")
	assert.Contains(t, body, "invoice")
}
