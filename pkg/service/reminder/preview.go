package reminder

import (
	"context"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/message"
	"github.com/pursuepayments/invoicechase/pkg/provider"
	"github.com/shopspring/decimal"
)

// Sample figures used by the preview sends so the rendered message looks
// like a real one.
var (
	previewBalance = decimal.NewFromFloat(350.75)
	previewPayment = decimal.NewFromFloat(150.25)
)

// SendTestEmail renders a preview of the given message kind and emails it to
// the account owner's own address. Usage counters are incremented like any
// other send.
func (s *Service) SendTestEmail(ctx context.Context, userID uuid.UUID, kind domain.MessageKind) (string, error) {
	owner, err := s.owner(ctx, make(map[uuid.UUID]*ownerInfo), userID)
	if err != nil {
		return "", err
	}
	if owner.user.Email == "" {
		return "", domain.ErrNoContact
	}

	em := s.previewEmail(owner, kind)
	_, err = s.email.SendEmail(ctx, provider.EmailMessage{
		To:      owner.user.Email,
		Subject: em.Subject,
		HTML:    em.HTML,
		Text:    em.Text,
		From:    s.fromFor(kind),
		ReplyTo: owner.user.Email,
	})
	if err != nil {
		return "", err
	}
	if err := s.quota.RecordSend(ctx, userID, domain.ChannelEmail, kind); err != nil {
		s.logger.Error("Failed to record usage", "user_id", userID, "error", err)
	}
	return owner.user.Email, nil
}

// SendTestSMS renders a preview of the given message kind and texts it to the
// phone number on the user's business profile.
func (s *Service) SendTestSMS(ctx context.Context, userID uuid.UUID, kind domain.MessageKind) (string, error) {
	owner, err := s.owner(ctx, make(map[uuid.UUID]*ownerInfo), userID)
	if err != nil {
		return "", err
	}
	info, err := s.users.GetBusinessInfo(ctx, userID)
	if err != nil {
		return "", err
	}
	if info == nil || info.Phone == "" {
		return "", domain.ErrNoContact
	}

	body := s.previewSMS(owner, kind)
	if _, err := s.sms.SendSMS(ctx, info.Phone, body); err != nil {
		return "", err
	}
	if err := s.quota.RecordSend(ctx, userID, domain.ChannelSMS, kind); err != nil {
		s.logger.Error("Failed to record usage", "user_id", userID, "error", err)
	}
	return info.Phone, nil
}

func (s *Service) previewEmail(owner *ownerInfo, kind domain.MessageKind) message.Email {
	if kind == domain.KindNotification {
		return message.TransactionEmail(owner.businessName, owner.user.Name, domain.TransactionPayment, previewPayment, owner.user.CurrencySymbol)
	}
	return message.ReminderEmail(owner.businessName, owner.user.Name, previewBalance, owner.user.CurrencySymbol, false)
}

func (s *Service) previewSMS(owner *ownerInfo, kind domain.MessageKind) string {
	if kind == domain.KindNotification {
		return message.TransactionSMS(owner.businessName, owner.user.Name, domain.TransactionPayment, previewPayment, owner.user.Currency)
	}
	return message.ReminderSMS(owner.businessName, owner.user.Name, previewBalance, owner.user.CurrencySymbol, false)
}

func (s *Service) fromFor(kind domain.MessageKind) string {
	if kind == domain.KindNotification {
		return s.cfg.FromReceipt
	}
	return s.cfg.FromReminder
}
