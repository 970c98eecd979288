// Package reminder implements the automated reminder dispatch engine and the
// urgent on-demand path. One cycle scans for due candidates, applies the
// balance gate, resolves effective settings, enforces the monthly quota,
// sends, and reschedules each client's cursor.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/config"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	"github.com/pursuepayments/invoicechase/pkg/message"
	"github.com/pursuepayments/invoicechase/pkg/provider"
	"github.com/pursuepayments/invoicechase/pkg/repository"
	"github.com/pursuepayments/invoicechase/pkg/service/quota"
	"github.com/shopspring/decimal"
)

// maxConsecutiveFailures bounds the implicit retry of a failing client:
// after this many failed automated sends in a row, the cursor advances by
// the full interval anyway and the failure is escalated in the logs.
const maxConsecutiveFailures = 3

// Service orchestrates reminder dispatch.
type Service struct {
	clients  repository.ClientRepository
	settings repository.SettingsRepository
	users    repository.UserRepository
	quota    *quota.Service
	email    provider.EmailSender
	sms      provider.SMSSender
	cfg      config.MessagingConfig
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates the dispatch Service.
func New(
	clients repository.ClientRepository,
	settings repository.SettingsRepository,
	users repository.UserRepository,
	quotaSvc *quota.Service,
	email provider.EmailSender,
	sms provider.SMSSender,
	cfg config.MessagingConfig,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		clients:  clients,
		settings: settings,
		users:    users,
		quota:    quotaSvc,
		email:    email,
		sms:      sms,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ownerInfo is the per-user context needed to brand and address messages,
// cached for the duration of one cycle.
type ownerInfo struct {
	user         *dto.UserRead
	businessName string
}

// RunCycle executes one automated dispatch pass. Candidates are processed
// sequentially and in isolation: a failure for one client never aborts the
// cycle, and every candidate yields a result. Callers must ensure cycles do
// not overlap; the cursor advance is the only de-duplication mechanism.
func (s *Service) RunCycle(ctx context.Context, grace time.Duration) dto.CycleResult {
	now := s.now().UTC()
	candidates, err := s.clients.FindDue(ctx, now, grace)
	if err != nil {
		s.logger.Error("Due-candidate scan failed", "error", err)
		return dto.CycleResult{Message: "Failed to scan for due reminders"}
	}
	s.logger.Info("Dispatch cycle started", "candidates", len(candidates), "grace", grace)

	owners := make(map[uuid.UUID]*ownerInfo)
	results := make([]dto.DispatchResult, 0, len(candidates))
	for _, cand := range candidates {
		results = append(results, s.processCandidate(ctx, owners, cand, now))
	}
	return dto.CycleResult{
		Success: true,
		Results: results,
		Message: "Automated reminders processed",
	}
}

func (s *Service) processCandidate(ctx context.Context, owners map[uuid.UUID]*ownerInfo, cand dto.Candidate, now time.Time) (result dto.DispatchResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Reminder dispatch panicked", "client_id", cand.ClientID, "panic", r)
			result = dto.DispatchResult{ClientID: cand.ClientID, Message: "Internal error during dispatch"}
		}
	}()

	clientLevel, userLevel, err := s.loadSettings(ctx, cand.UserID, cand.ClientID)
	if err != nil {
		s.logger.Error("Settings lookup failed", "client_id", cand.ClientID, "error", err)
		return dto.DispatchResult{ClientID: cand.ClientID, Message: "Internal error during dispatch"}
	}

	minBalance := domain.EffectiveMinimumBalance(clientLevel, userLevel)
	if cand.Balance.LessThan(minBalance) {
		return dto.DispatchResult{
			ClientID: cand.ClientID,
			Message:  fmt.Sprintf("Balance below minimum (%s)", minBalance.String()),
		}
	}

	res := domain.ResolveReminder(domain.Contact{Email: cand.Email, Phone: cand.Phone}, clientLevel, userLevel)
	if !res.Enabled {
		return dto.DispatchResult{ClientID: cand.ClientID, Method: res.Method, Message: res.SkipReason}
	}

	owner, err := s.owner(ctx, owners, cand.UserID)
	if err != nil {
		s.logger.Error("Owner lookup failed", "user_id", cand.UserID, "error", err)
		return dto.DispatchResult{ClientID: cand.ClientID, Method: res.Method, Message: "Internal error during dispatch"}
	}

	allowed, err := s.quota.CanSend(ctx, cand.UserID, res.Method, owner.user.PlanType)
	if err != nil {
		s.logger.Error("Quota check failed", "user_id", cand.UserID, "error", err)
		return dto.DispatchResult{ClientID: cand.ClientID, Method: res.Method, Message: "Internal error during dispatch"}
	}
	if !allowed {
		return dto.DispatchResult{
			ClientID: cand.ClientID,
			Method:   res.Method,
			Message:  fmt.Sprintf("Monthly %s limit reached", res.Method),
		}
	}

	if err := s.sendReminder(ctx, owner, cand.Name, cand.Balance, res, false); err != nil {
		s.logger.Warn("Reminder send failed", "client_id", cand.ClientID, "method", res.Method, "error", err)
		s.handleSendFailure(ctx, cand, clientLevel, userLevel, now)
		return dto.DispatchResult{ClientID: cand.ClientID, Method: res.Method, Message: "Failed to send"}
	}

	s.recordSuccess(ctx, cand, clientLevel, userLevel, res.Method, now)
	return dto.DispatchResult{
		ClientID: cand.ClientID,
		Success:  true,
		Method:   res.Method,
		SentTo:   res.Contact,
	}
}

// recordSuccess performs the post-send bookkeeping: last-sent stamp, usage
// counter, and the cursor advance that takes the client out of the due
// window until the next interval.
func (s *Service) recordSuccess(ctx context.Context, cand dto.Candidate, clientLevel, userLevel *domain.Settings, method domain.Channel, now time.Time) {
	if err := s.clients.MarkReminderSent(ctx, cand.ClientID, now); err != nil {
		s.logger.Error("Failed to record last-sent time", "client_id", cand.ClientID, "error", err)
	}
	if err := s.quota.RecordSend(ctx, cand.UserID, method, domain.KindReminder); err != nil {
		s.logger.Error("Failed to record usage", "user_id", cand.UserID, "error", err)
	}
	next := domain.NextReminderDate(now, domain.EffectiveFrequencyDays(clientLevel, userLevel))
	if err := s.settings.WriteNextReminderDate(ctx, cand.UserID, cand.ClientID, next); err != nil {
		s.logger.Error("Failed to advance reminder cursor; client will stay due",
			"client_id", cand.ClientID, "error", err)
	}
}

// handleSendFailure leaves the cursor in place so the client is retried on
// the next cycle while still inside the grace window, but bounds the retries:
// at maxConsecutiveFailures the cursor advances by the full interval anyway.
func (s *Service) handleSendFailure(ctx context.Context, cand dto.Candidate, clientLevel, userLevel *domain.Settings, now time.Time) {
	count, err := s.settings.RecordSendFailure(ctx, cand.UserID, cand.ClientID)
	if err != nil {
		s.logger.Error("Failed to record send failure", "client_id", cand.ClientID, "error", err)
		return
	}
	if count < maxConsecutiveFailures {
		return
	}
	s.logger.Warn("Consecutive send failures exhausted retries, rescheduling",
		"client_id", cand.ClientID, "failures", count)
	next := domain.NextReminderDate(now, domain.EffectiveFrequencyDays(clientLevel, userLevel))
	if err := s.settings.WriteNextReminderDate(ctx, cand.UserID, cand.ClientID, next); err != nil {
		s.logger.Error("Failed to reschedule after repeated failures", "client_id", cand.ClientID, "error", err)
	}
}

// SendUrgent sends an urgent-toned reminder to the given clients right now.
// It bypasses the enabled flag, the balance gate, and the schedule: cursors
// and last-sent stamps are untouched.
func (s *Service) SendUrgent(ctx context.Context, userID uuid.UUID, clientIDs []uuid.UUID) dto.CycleResult {
	clients, err := s.clients.ListWithBalance(ctx, userID, clientIDs)
	if err != nil {
		s.logger.Error("Client lookup failed", "user_id", userID, "error", err)
		return dto.CycleResult{Message: "Failed to load clients"}
	}

	owners := make(map[uuid.UUID]*ownerInfo)
	results := make([]dto.DispatchResult, 0, len(clients))
	for _, client := range clients {
		results = append(results, s.sendUrgentTo(ctx, owners, userID, client))
	}
	return dto.CycleResult{
		Success: true,
		Results: results,
		Message: "Urgent reminders processed",
	}
}

func (s *Service) sendUrgentTo(ctx context.Context, owners map[uuid.UUID]*ownerInfo, userID uuid.UUID, client dto.ClientRead) dto.DispatchResult {
	clientLevel, userLevel, err := s.loadSettings(ctx, userID, client.ID)
	if err != nil {
		s.logger.Error("Settings lookup failed", "client_id", client.ID, "error", err)
		return dto.DispatchResult{ClientID: client.ID, Message: "Internal error during dispatch"}
	}

	res := domain.ResolveContact(domain.Contact{Email: client.Email, Phone: client.Phone}, clientLevel, userLevel)
	if !res.Enabled {
		return dto.DispatchResult{ClientID: client.ID, Method: res.Method, Message: res.SkipReason}
	}

	owner, err := s.owner(ctx, owners, userID)
	if err != nil {
		s.logger.Error("Owner lookup failed", "user_id", userID, "error", err)
		return dto.DispatchResult{ClientID: client.ID, Method: res.Method, Message: "Internal error during dispatch"}
	}

	if err := s.sendReminder(ctx, owner, client.Name, client.Balance, res, true); err != nil {
		s.logger.Warn("Urgent reminder failed", "client_id", client.ID, "error", err)
		return dto.DispatchResult{ClientID: client.ID, Method: res.Method, Message: "Failed to send"}
	}
	if err := s.quota.RecordSend(ctx, userID, res.Method, domain.KindReminder); err != nil {
		s.logger.Error("Failed to record usage", "user_id", userID, "error", err)
	}
	return dto.DispatchResult{ClientID: client.ID, Success: true, Method: res.Method, SentTo: res.Contact}
}

func (s *Service) sendReminder(ctx context.Context, owner *ownerInfo, clientName string, balance decimal.Decimal, res domain.Resolution, urgent bool) error {
	switch res.Method {
	case domain.ChannelEmail:
		em := message.ReminderEmail(owner.businessName, clientName, balance, owner.user.CurrencySymbol, urgent)
		_, err := s.email.SendEmail(ctx, provider.EmailMessage{
			To:      res.Contact,
			Subject: em.Subject,
			HTML:    em.HTML,
			Text:    em.Text,
			From:    s.cfg.FromReminder,
			ReplyTo: owner.user.Email,
		})
		return err
	case domain.ChannelSMS:
		body := message.ReminderSMS(owner.businessName, clientName, balance, owner.user.CurrencySymbol, urgent)
		_, err := s.sms.SendSMS(ctx, res.Contact, body)
		return err
	default:
		return domain.ErrInvalidChannel
	}
}

func (s *Service) loadSettings(ctx context.Context, userID, clientID uuid.UUID) (clientLevel, userLevel *domain.Settings, err error) {
	cs, err := s.settings.GetForClient(ctx, userID, clientID)
	if err != nil {
		return nil, nil, err
	}
	us, err := s.settings.GetForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return settingsOf(cs), settingsOf(us), nil
}

func (s *Service) owner(ctx context.Context, cache map[uuid.UUID]*ownerInfo, userID uuid.UUID) (*ownerInfo, error) {
	if owner, ok := cache[userID]; ok {
		return owner, nil
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	businessName := user.Name
	info, err := s.users.GetBusinessInfo(ctx, userID)
	if err != nil {
		return nil, err
	}
	if info != nil && info.BusinessName != "" {
		businessName = info.BusinessName
	}
	owner := &ownerInfo{user: user, businessName: businessName}
	cache[userID] = owner
	return owner, nil
}

func settingsOf(ss *dto.StoredSettings) *domain.Settings {
	if ss == nil {
		return nil
	}
	return &ss.Settings
}
