// Package message renders the outbound reminder and notification content.
// Generators are pure functions over business name, client name, amounts and
// an urgency flag; they own no transport concerns.
package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/shopspring/decimal"
)

const ctaLink = "https://pursuepayments.com"

// Email is rendered email content: subject plus HTML and plain-text bodies.
// The plain-text body matters for deliverability.
type Email struct {
	Subject string
	HTML    string
	Text    string
}

// ReminderEmail renders a balance reminder. The urgent flag changes tone and
// accent color only.
func ReminderEmail(businessName, clientName string, balance decimal.Decimal, currency string, urgent bool) Email {
	amount := currency + formatAmount(balance)

	subject := fmt.Sprintf("Payment Reminder: %s Outstanding", amount)
	heading := "Automated Balance Reminder"
	intro := fmt.Sprintf("This is an <strong>automated balance reminder</strong> from <strong>%s</strong>.", businessName)
	action := fmt.Sprintf("We wanted to inform you that your account currently reflects a balance of <strong>%s</strong>. Please review at your convenience.", amount)
	button := "View Account"
	accent := "#3b82f6"
	if urgent {
		subject = fmt.Sprintf("Urgent Reminder: %s Outstanding", amount)
		heading = "Urgent Payment Reminder"
		intro = fmt.Sprintf("It has been some time since we received your payment. Your account with %s shows an outstanding balance of <strong>%s</strong>.", businessName, amount)
		action = fmt.Sprintf("We kindly remind you that your account currently has an outstanding balance of <strong>%s</strong>. Your prompt attention to this matter is appreciated.", amount)
		button = "Pay Now"
		accent = "#ef4444"
	}

	html := renderHTML(subject, heading, accent, businessName, []string{
		fmt.Sprintf("<p>Dear %s,</p>", clientName),
		fmt.Sprintf("<p>%s</p>", intro),
		fmt.Sprintf("<p>%s</p>", action),
		fmt.Sprintf(`<div style="text-align:center;"><a href="%s" class="btn">%s</a></div>`, ctaLink, button),
		"<p style=\"margin-top:20px;\">Thank you for your time!</p>",
		"<p>— Pursue Payments Team</p>",
	})

	text := fmt.Sprintf(`%s

Dear %s,

%s

%s

View account details: %s

Thank you for your time!

— The %s Team
Sent via Pursue Payments
`, subject, clientName, stripTags(intro), stripTags(action), ctaLink, businessName)

	return Email{Subject: subject, HTML: html, Text: text}
}

// TransactionEmail renders an invoice-issued or payment-received notification.
func TransactionEmail(businessName, clientName string, txType domain.TransactionType, amount decimal.Decimal, currency string) Email {
	pretty := "Invoice"
	if txType == domain.TransactionPayment {
		pretty = "Payment"
	}
	value := currency + formatAmount(amount)

	subject := fmt.Sprintf("New %s (%s) from %s", pretty, value, businessName)
	html := renderHTML(subject, fmt.Sprintf("New %s Notification", pretty), "#10b981", businessName, []string{
		fmt.Sprintf("<p>Dear %s,</p>", clientName),
		fmt.Sprintf("<p>A new <strong>%s</strong> has been recorded for <strong>%s</strong>.</p>", strings.ToLower(pretty), value),
		"<p>Click below to view your details:</p>",
		fmt.Sprintf(`<a href="%s" class="btn">View %s Details</a>`, ctaLink, pretty),
		"<p>If you have questions, reply directly to this email.</p>",
		"<p>- Pursue Payments Team</p>",
	})

	text := fmt.Sprintf(`%s

Dear %s,

A new %s has been recorded for %s.

View %s Details: %s

If you have questions, reply directly to this email.

Sent via Pursue Payments
`, subject, clientName, strings.ToLower(pretty), value, pretty, ctaLink)

	return Email{Subject: subject, HTML: html, Text: text}
}

// ReminderSMS renders the SMS body for a balance reminder.
func ReminderSMS(businessName, clientName string, balance decimal.Decimal, currency string, urgent bool) string {
	amount := currency + formatAmount(balance)
	if urgent {
		return fmt.Sprintf("Dear %s, this is a reminder from %s that your account shows an outstanding balance of %s. Thank you for your attention.",
			clientName, businessName, amount)
	}
	return fmt.Sprintf("Hello %s, %s would like to inform you that your account currently reflects a balance of %s.",
		clientName, businessName, amount)
}

// TransactionSMS renders the SMS body for a transaction notification.
func TransactionSMS(businessName, clientName string, txType domain.TransactionType, amount decimal.Decimal, currency string) string {
	value := formatAmount(amount) + " " + currency
	if txType == domain.TransactionPayment {
		return fmt.Sprintf("Hello %s, a payment of %s has been received and added to your account with %s.",
			clientName, value, businessName)
	}
	return fmt.Sprintf("Hello %s, a new invoice of %s has been issued and recorded in your account with %s.",
		clientName, value, businessName)
}

func renderHTML(title, heading, accent, businessName string, body []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>%s</title>
<style>
body { margin:0; padding:0; font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,'Helvetica Neue',sans-serif; background:#f3f4f6; }
.container { max-width:600px; margin:24px auto; background:#ffffff; border-radius:8px; overflow:hidden; border:1px solid #e6edf3; }
.header { background:%s; padding:20px; color:#fff; text-align:center; }
.header h1 { margin:0; font-size:20px; font-weight:700; }
.content { padding:28px; color:#0f172a; line-height:1.5; }
.btn { display:inline-block; padding:12px 20px; border-radius:6px; text-decoration:none; font-weight:600; margin-top:18px; background:%s; color:#fff; }
.footer { padding:24px; background:#f8fafc; color:#64748b; font-size:12px; text-align:center; line-height:1.5; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>%s</h1></div>
<div class="content">
`, title, accent, accent, heading)
	for _, p := range body {
		b.WriteString(p)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, `</div>
<div class="footer">
<p>Sent via Pursue Payments</p>
<p>&copy; %d %s</p>
</div>
</div>
</body>
</html>`, time.Now().Year(), businessName)
	return b.String()
}

// formatAmount renders a decimal with two fraction digits and thousands
// separators, e.g. 1234.5 -> "1,234.50".
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)
	out := strings.Join(groups, ",") + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func stripTags(s string) string {
	r := strings.NewReplacer("<strong>", "", "</strong>", "")
	return r.Replace(s)
}
