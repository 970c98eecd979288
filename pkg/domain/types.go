package domain

// Channel is an outbound communication channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

// MessageKind distinguishes the two automated message types counted
// against the monthly quota.
type MessageKind string

const (
	KindReminder     MessageKind = "reminder"
	KindNotification MessageKind = "notification"
)

// Plan is a subscription plan controlling monthly send quotas.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanStarter Plan = "starter"
	PlanPro     Plan = "pro"
)

// TransactionType is the kind of a recorded transaction.
type TransactionType string

const (
	TransactionInvoice TransactionType = "invoice"
	TransactionPayment TransactionType = "payment"
)
