// Package notification records invoices and payments and sends the
// per-transaction confirmation message when the client's effective settings
// ask for one.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/config"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	"github.com/pursuepayments/invoicechase/pkg/message"
	"github.com/pursuepayments/invoicechase/pkg/provider"
	"github.com/pursuepayments/invoicechase/pkg/repository"
	"github.com/pursuepayments/invoicechase/pkg/service/quota"
)

// Service records transactions and dispatches transaction notifications.
type Service struct {
	transactions repository.TransactionRepository
	clients      repository.ClientRepository
	settings     repository.SettingsRepository
	users        repository.UserRepository
	quota        *quota.Service
	email        provider.EmailSender
	sms          provider.SMSSender
	cfg          config.MessagingConfig
	logger       *slog.Logger
}

// New creates a notification Service.
func New(
	transactions repository.TransactionRepository,
	clients repository.ClientRepository,
	settings repository.SettingsRepository,
	users repository.UserRepository,
	quotaSvc *quota.Service,
	email provider.EmailSender,
	sms provider.SMSSender,
	cfg config.MessagingConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		transactions: transactions,
		clients:      clients,
		settings:     settings,
		users:        users,
		quota:        quotaSvc,
		email:        email,
		sms:          sms,
		cfg:          cfg,
		logger:       logger,
	}
}

// RecordTransaction stores the transaction and then sends the confirmation
// message. The notification is best effort: its failure never rolls back or
// fails the recorded transaction, and the outcome is reported alongside it.
func (s *Service) RecordTransaction(ctx context.Context, userID uuid.UUID, tc *dto.TransactionCreate) (*dto.TransactionRead, *dto.DispatchResult, error) {
	client, err := s.clients.Get(ctx, userID, tc.ClientID)
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.transactions.Create(ctx, userID, tc)
	if err != nil {
		return nil, nil, err
	}

	result := s.notify(ctx, userID, client, tx)
	return tx, &result, nil
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, client *dto.ClientRead, tx *dto.TransactionRead) dto.DispatchResult {
	cs, err := s.settings.GetForClient(ctx, userID, client.ID)
	if err != nil {
		s.logger.Error("Settings lookup failed", "client_id", client.ID, "error", err)
		return dto.DispatchResult{ClientID: client.ID, Message: "Internal error during dispatch"}
	}
	us, err := s.settings.GetForUser(ctx, userID)
	if err != nil {
		s.logger.Error("Settings lookup failed", "user_id", userID, "error", err)
		return dto.DispatchResult{ClientID: client.ID, Message: "Internal error during dispatch"}
	}
	clientLevel, userLevel := settingsOf(cs), settingsOf(us)

	res := domain.ResolveNotification(domain.Contact{Email: client.Email, Phone: client.Phone}, clientLevel, userLevel)
	if !res.Enabled {
		return dto.DispatchResult{ClientID: client.ID, Method: res.Method, Message: res.SkipReason}
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		s.logger.Error("Owner lookup failed", "user_id", userID, "error", err)
		return dto.DispatchResult{ClientID: client.ID, Method: res.Method, Message: "Internal error during dispatch"}
	}

	allowed, err := s.quota.CanSend(ctx, userID, res.Method, user.PlanType)
	if err != nil {
		s.logger.Error("Quota check failed", "user_id", userID, "error", err)
		return dto.DispatchResult{ClientID: client.ID, Method: res.Method, Message: "Internal error during dispatch"}
	}
	if !allowed {
		return dto.DispatchResult{
			ClientID: client.ID,
			Method:   res.Method,
			Message:  fmt.Sprintf("Monthly %s limit reached", res.Method),
		}
	}

	if err := s.send(ctx, user, client, tx, res); err != nil {
		s.logger.Warn("Transaction notification failed",
			"client_id", client.ID, "method", res.Method, "error", err)
		return dto.DispatchResult{ClientID: client.ID, Method: res.Method, Message: "Failed to send"}
	}
	if err := s.quota.RecordSend(ctx, userID, res.Method, domain.KindNotification); err != nil {
		s.logger.Error("Failed to record usage", "user_id", userID, "error", err)
	}
	return dto.DispatchResult{ClientID: client.ID, Success: true, Method: res.Method, SentTo: res.Contact}
}

func (s *Service) send(ctx context.Context, user *dto.UserRead, client *dto.ClientRead, tx *dto.TransactionRead, res domain.Resolution) error {
	businessName := s.businessName(ctx, user)
	txType := domain.TransactionType(tx.Type)

	switch res.Method {
	case domain.ChannelEmail:
		em := message.TransactionEmail(businessName, client.Name, txType, tx.Amount, user.CurrencySymbol)
		_, err := s.email.SendEmail(ctx, provider.EmailMessage{
			To:      res.Contact,
			Subject: em.Subject,
			HTML:    em.HTML,
			Text:    em.Text,
			From:    s.fromFor(txType),
			ReplyTo: user.Email,
		})
		return err
	case domain.ChannelSMS:
		body := message.TransactionSMS(businessName, client.Name, txType, tx.Amount, user.Currency)
		_, err := s.sms.SendSMS(ctx, res.Contact, body)
		return err
	default:
		return domain.ErrInvalidChannel
	}
}

func (s *Service) businessName(ctx context.Context, user *dto.UserRead) string {
	info, err := s.users.GetBusinessInfo(ctx, user.ID)
	if err != nil {
		s.logger.Error("Business info lookup failed", "user_id", user.ID, "error", err)
		return user.Name
	}
	if info != nil && info.BusinessName != "" {
		return info.BusinessName
	}
	return user.Name
}

// Invoices confirm from the invoicing address, payments from the receipts
// address.
func (s *Service) fromFor(txType domain.TransactionType) string {
	if txType == domain.TransactionPayment {
		return s.cfg.FromReceipt
	}
	return s.cfg.FromInvoice
}

func settingsOf(ss *dto.StoredSettings) *domain.Settings {
	if ss == nil {
		return nil
	}
	return &ss.Settings
}
