package config

import (
	"log/slog"
	"testing"

	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaLimit_PerPlanAndChannel(t *testing.T) {
	q := QuotaConfig{
		SMSLimits:   map[string]int{"free": 10, "starter": 100, "pro": 500},
		EmailLimits: map[string]int{"free": 100, "starter": 1000, "pro": 5000},
	}

	assert.Equal(t, 10, q.Limit(domain.PlanFree, domain.ChannelSMS))
	assert.Equal(t, 1000, q.Limit(domain.PlanStarter, domain.ChannelEmail))
	assert.Equal(t, 500, q.Limit(domain.PlanPro, domain.ChannelSMS))
}

func TestQuotaLimit_UnknownPlanGetsFreeTier(t *testing.T) {
	q := QuotaConfig{
		SMSLimits:   map[string]int{"free": 10},
		EmailLimits: map[string]int{"free": 100},
	}

	assert.Equal(t, 10, q.Limit(domain.Plan("enterprise"), domain.ChannelSMS))
	assert.Equal(t, 100, q.Limit(domain.Plan(""), domain.ChannelEmail))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(slog.Default(), "testdata/nonexistent.env")
	require.NoError(t, err)

	assert.Equal(t, "0 * * * *", cfg.Scheduler.CronSpec)
	assert.Equal(t, 10, cfg.Scheduler.GraceMinutes)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 100, cfg.Quota.EmailLimits["free"])
	assert.Equal(t, 10, cfg.Quota.SMSLimits["free"])
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****", maskKey("short"))
	assert.Equal(t, "re****_key", maskKey("re_secret_key"))
}
