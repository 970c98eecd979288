package quota_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/config"
	"github.com/pursuepayments/invoicechase/internal/fixtures"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/service/quota"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(usage *fixtures.FakeUsageRepo) *quota.Service {
	limits := config.QuotaConfig{
		SMSLimits:   map[string]int{"free": 2, "starter": 100},
		EmailLimits: map[string]int{"free": 3, "starter": 1000},
	}
	return quota.New(usage, limits, slog.Default(),
		quota.WithClock(func() time.Time {
			return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
		}))
}

func TestCanSend_BelowLimit(t *testing.T) {
	usage := fixtures.NewFakeUsageRepo()
	svc := newService(usage)
	userID := uuid.New()

	ok, err := svc.CanSend(context.Background(), userID, domain.ChannelSMS, domain.PlanFree)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanSend_AtLimitBlocks(t *testing.T) {
	usage := fixtures.NewFakeUsageRepo()
	svc := newService(usage)
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.RecordSend(ctx, userID, domain.ChannelSMS, domain.KindReminder))
	require.NoError(t, svc.RecordSend(ctx, userID, domain.ChannelSMS, domain.KindNotification))

	ok, err := svc.CanSend(ctx, userID, domain.ChannelSMS, domain.PlanFree)
	require.NoError(t, err)
	assert.False(t, ok, "reminders and notifications share the channel cap")
}

func TestCanSend_ChannelsAreIndependent(t *testing.T) {
	usage := fixtures.NewFakeUsageRepo()
	svc := newService(usage)
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.RecordSend(ctx, userID, domain.ChannelSMS, domain.KindReminder))
	require.NoError(t, svc.RecordSend(ctx, userID, domain.ChannelSMS, domain.KindReminder))

	ok, err := svc.CanSend(ctx, userID, domain.ChannelEmail, domain.PlanFree)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanSend_UnknownPlanFallsBackToFree(t *testing.T) {
	usage := fixtures.NewFakeUsageRepo()
	svc := newService(usage)
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.RecordSend(ctx, userID, domain.ChannelSMS, domain.KindReminder))
	require.NoError(t, svc.RecordSend(ctx, userID, domain.ChannelSMS, domain.KindReminder))

	ok, err := svc.CanSend(ctx, userID, domain.ChannelSMS, domain.Plan("enterprise"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummary(t *testing.T) {
	usage := fixtures.NewFakeUsageRepo()
	svc := newService(usage)
	userID := uuid.New()
	ctx := context.Background()

	require.NoError(t, svc.RecordSend(ctx, userID, domain.ChannelEmail, domain.KindReminder))
	require.NoError(t, svc.RecordSend(ctx, userID, domain.ChannelEmail, domain.KindNotification))
	require.NoError(t, svc.RecordSend(ctx, userID, domain.ChannelSMS, domain.KindReminder))

	summary, err := svc.Summary(ctx, userID, domain.PlanStarter)
	require.NoError(t, err)
	assert.Equal(t, 2026, summary.Year)
	assert.Equal(t, 3, summary.Month)
	assert.Equal(t, 2, summary.Email.Used)
	assert.Equal(t, 1000, summary.Email.Limit)
	assert.Equal(t, 1, summary.SMS.Used)
	assert.Equal(t, 100, summary.SMS.Limit)
}
