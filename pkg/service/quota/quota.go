// Package quota implements the monthly send-quota ledger: plan-indexed
// per-channel caps checked before every automated send.
package quota

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/config"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	"github.com/pursuepayments/invoicechase/pkg/repository"
)

// Service answers quota questions and records sends. Checking is
// side-effect free; enforcement is the caller's job, and every send path in
// this codebase hard-blocks when the check fails.
type Service struct {
	usage  repository.UsageRepository
	limits config.QuotaConfig
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a quota Service.
func New(usage repository.UsageRepository, limits config.QuotaConfig, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		usage:  usage,
		limits: limits,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CanSend reports whether the user may send one more message on the channel
// this calendar month: current usage (reminders plus notifications) must be
// strictly below the plan limit.
func (s *Service) CanSend(ctx context.Context, userID uuid.UUID, channel domain.Channel, plan domain.Plan) (bool, error) {
	total, err := s.usage.MonthTotal(ctx, userID, channel, s.now())
	if err != nil {
		return false, err
	}
	limit := s.limits.Limit(plan, channel)
	if total >= limit {
		s.logger.Warn("Monthly quota reached",
			"user_id", userID, "channel", channel, "plan", plan,
			"used", total, "limit", limit)
		return false, nil
	}
	return true, nil
}

// RecordSend increments the counter for one sent message. Safe under
// concurrent dispatch for the same user.
func (s *Service) RecordSend(ctx context.Context, userID uuid.UUID, channel domain.Channel, kind domain.MessageKind) error {
	return s.usage.RecordSend(ctx, userID, channel, kind, s.now())
}

// Usage returns the current month's counters for UI display.
func (s *Service) Usage(ctx context.Context, userID uuid.UUID) (*dto.UsageRead, error) {
	return s.usage.Get(ctx, userID, s.now())
}

// Summary reports the current month's usage against the plan's per-channel
// caps.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, plan domain.Plan) (*dto.QuotaRead, error) {
	usage, err := s.usage.Get(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	return &dto.QuotaRead{
		Year:  usage.Year,
		Month: usage.Month,
		Email: dto.QuotaChannelRead{
			Used:  usage.EmailRemindersSent + usage.EmailNotificationsSent,
			Limit: s.limits.Limit(plan, domain.ChannelEmail),
		},
		SMS: dto.QuotaChannelRead{
			Used:  usage.SMSRemindersSent + usage.SMSNotificationsSent,
			Limit: s.limits.Limit(plan, domain.ChannelSMS),
		},
	}, nil
}
