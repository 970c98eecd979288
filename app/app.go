// Package app wires repositories, services, the scheduler, and the HTTP
// layer into a runnable application.
package app

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/pursuepayments/invoicechase/config"
	infraprovider "github.com/pursuepayments/invoicechase/infra/provider"
	clientrepo "github.com/pursuepayments/invoicechase/infra/repository/client"
	settingsrepo "github.com/pursuepayments/invoicechase/infra/repository/settings"
	txrepo "github.com/pursuepayments/invoicechase/infra/repository/transaction"
	usagerepo "github.com/pursuepayments/invoicechase/infra/repository/usage"
	userrepo "github.com/pursuepayments/invoicechase/infra/repository/user"
	"github.com/pursuepayments/invoicechase/internal/scheduler"
	"github.com/pursuepayments/invoicechase/pkg/provider"
	"github.com/pursuepayments/invoicechase/pkg/service/notification"
	"github.com/pursuepayments/invoicechase/pkg/service/quota"
	"github.com/pursuepayments/invoicechase/pkg/service/reminder"
	"github.com/pursuepayments/invoicechase/pkg/service/settings"
	"github.com/pursuepayments/invoicechase/webapi"
	"gorm.io/gorm"
)

// App is the assembled application.
type App struct {
	Fiber     *fiber.App
	Scheduler *scheduler.Scheduler
	Config    *config.AppConfig
	Logger    *slog.Logger
}

// New builds all repositories and services and returns the assembled App.
func New(cfg *config.AppConfig, db *gorm.DB, logger *slog.Logger) *App {
	clients := clientrepo.New(db)
	settingsRepo := settingsrepo.New(db)
	usage := usagerepo.New(db)
	transactions := txrepo.New(db)
	users := userrepo.New(db)

	email, sms := senders(cfg.Messaging, logger)

	quotaSvc := quota.New(usage, cfg.Quota, logger)
	reminderSvc := reminder.New(clients, settingsRepo, users, quotaSvc, email, sms, cfg.Messaging, logger)
	notificationSvc := notification.New(transactions, clients, settingsRepo, users, quotaSvc, email, sms, cfg.Messaging, logger)
	settingsSvc := settings.New(settingsRepo, clients, users, logger)

	fiberApp := webapi.NewApp(webapi.Deps{
		Reminder:     reminderSvc,
		Notification: notificationSvc,
		Settings:     settingsSvc,
		Quota:        quotaSvc,
		Users:        users,
		Config:       cfg,
	})

	return &App{
		Fiber:     fiberApp,
		Scheduler: scheduler.New(cfg.Scheduler, reminderSvc, logger),
		Config:    cfg,
		Logger:    logger,
	}
}

// senders picks the real outbound providers when credentials are configured
// and falls back to the recording mock otherwise, so development setups can
// run without provider accounts.
func senders(cfg config.MessagingConfig, logger *slog.Logger) (provider.EmailSender, provider.SMSSender) {
	var email provider.EmailSender
	var sms provider.SMSSender

	mock := infraprovider.NewMockMessagingSender(logger)
	if cfg.ResendAPIKey != "" {
		email = infraprovider.NewResendEmailSender(cfg, logger)
	} else {
		logger.Warn("No Resend API key configured, emails go to the mock sender")
		email = mock
	}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		sms = infraprovider.NewTwilioSMSSender(cfg, logger)
	} else {
		logger.Warn("No Twilio credentials configured, SMS go to the mock sender")
		sms = mock
	}
	return email, sms
}
