// Package provider defines the outbound messaging interfaces. Concrete
// implementations (Resend, Twilio) live under infra/provider.
package provider

import "context"

// EmailMessage is one outbound email with both HTML and plain-text bodies.
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
	From    string
	ReplyTo string
}

// EmailSender delivers a single email and returns the provider receipt id.
// Ordinary delivery failures surface as errors; callers on the dispatch path
// convert them into failure results rather than propagating.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) (receipt string, err error)
}

// SMSSender delivers a single SMS and returns the provider receipt id.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (receipt string, err error)
}
