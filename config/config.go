// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pursuepayments/invoicechase/pkg/domain"
)

type DBConfig struct {
	Url string `envconfig:"URL"`
}

type ServerConfig struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"3000"`
}

// MessagingConfig carries the outbound provider credentials and the
// purpose-specific from-addresses.
type MessagingConfig struct {
	ResendAPIKey     string        `envconfig:"RESEND_API_KEY"`
	ResendAPIURL     string        `envconfig:"RESEND_API_URL" default:"https://api.resend.com"`
	TwilioAccountSID string        `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string        `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioNumber     string        `envconfig:"TWILIO_NUMBER"`
	TwilioAPIURL     string        `envconfig:"TWILIO_API_URL" default:"https://api.twilio.com"`
	HTTPTimeout      time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	FromSystem   string `envconfig:"FROM_SYSTEM" default:"Pursue Payments <system@pursuepayments.com>"`
	FromReminder string `envconfig:"FROM_REMINDER" default:"Pursue Payments <reminders@pursuepayments.com>"`
	FromInvoice  string `envconfig:"FROM_INVOICE" default:"Pursue Payments <invoices@pursuepayments.com>"`
	FromReceipt  string `envconfig:"FROM_RECEIPT" default:"Pursue Payments <receipts@pursuepayments.com>"`
}

// QuotaConfig holds the plan-indexed monthly send limits per channel.
type QuotaConfig struct {
	SMSLimits   map[string]int `envconfig:"SMS_LIMITS" default:"free:10,starter:100,pro:500"`
	EmailLimits map[string]int `envconfig:"EMAIL_LIMITS" default:"free:100,starter:1000,pro:5000"`
}

// Limit returns the monthly cap for a plan on a channel. Unknown plans get
// the free tier limit.
func (q QuotaConfig) Limit(plan domain.Plan, channel domain.Channel) int {
	limits := q.EmailLimits
	if channel == domain.ChannelSMS {
		limits = q.SMSLimits
	}
	if limit, ok := limits[string(plan)]; ok {
		return limit
	}
	return limits[string(domain.PlanFree)]
}

// SchedulerConfig controls the automated dispatch cycle.
type SchedulerConfig struct {
	CronSpec     string `envconfig:"CRON_SPEC" default:"0 * * * *"`
	GraceMinutes int    `envconfig:"GRACE_MINUTES" default:"10"`
	Enabled      bool   `envconfig:"ENABLED" default:"true"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"text"`
}

type AppConfig struct {
	Env       string          `envconfig:"APP_ENV" default:"development"`
	Server    ServerConfig    `envconfig:"SERVER"`
	DB        DBConfig        `envconfig:"DATABASE"`
	Messaging MessagingConfig `envconfig:"MESSAGING"`
	Quota     QuotaConfig     `envconfig:"QUOTA"`
	Scheduler SchedulerConfig `envconfig:"SCHEDULER"`
	Log       LogConfig       `envconfig:"LOG"`
}

// Load reads configuration from the environment. When envFilePath is given,
// that .env file is loaded first; missing files are non-fatal.
func Load(logger *slog.Logger, envFilePath ...string) (*AppConfig, error) {
	var err error
	if len(envFilePath) > 0 && envFilePath[0] != "" {
		err = godotenv.Load(envFilePath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		logger.Warn("No .env file found, using system environment variables")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	logger.Info("App config loaded",
		"env", cfg.Env,
		"scheduler_cron", cfg.Scheduler.CronSpec,
		"scheduler_grace_minutes", cfg.Scheduler.GraceMinutes,
		"resend_api_key", maskKey(cfg.Messaging.ResendAPIKey),
		"twilio_account_sid", maskKey(cfg.Messaging.TwilioAccountSID),
	)
	return &cfg, nil
}

func maskKey(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
