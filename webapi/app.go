package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pursuepayments/invoicechase/config"
	"github.com/pursuepayments/invoicechase/pkg/repository"
	"github.com/pursuepayments/invoicechase/pkg/service/notification"
	"github.com/pursuepayments/invoicechase/pkg/service/quota"
	"github.com/pursuepayments/invoicechase/pkg/service/reminder"
	"github.com/pursuepayments/invoicechase/pkg/service/settings"
)

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Reminder     *reminder.Service
	Notification *notification.Service
	Settings     *settings.Service
	Quota        *quota.Service
	Users        repository.UserRepository
	Config       *config.AppConfig
}

// NewApp builds the Fiber application with all routes registered.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ProblemDetailsJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ProblemDetailsJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	ReminderRoutes(app, deps.Reminder, deps.Config.Scheduler)
	SettingsRoutes(app, deps.Settings, deps.Quota, deps.Users)
	TransactionRoutes(app, deps.Notification)

	return app
}
