// Reminder endpoints: the manual cycle trigger, the urgent on-demand send,
// and the message previews.

package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/config"
	"github.com/pursuepayments/invoicechase/pkg/domain"
	"github.com/pursuepayments/invoicechase/pkg/service/reminder"
)

type UrgentReminderRequest struct {
	ClientIDs []uuid.UUID `json:"client_ids" validate:"required,min=1"`
}

type TestMessageRequest struct {
	Type string `json:"type" validate:"omitempty,oneof=reminder notification"`
}

// ReminderRoutes registers the reminder dispatch endpoints.
//
//   - POST /reminders/run        : run one automated dispatch cycle now.
//   - POST /reminders/urgent     : send urgent reminders to selected clients.
//   - POST /reminders/test-email : email a message preview to the account owner.
//   - POST /reminders/test-sms   : text a message preview to the account owner.
func ReminderRoutes(app *fiber.App, reminderSvc *reminder.Service, schedCfg config.SchedulerConfig) {
	app.Post("/reminders/run", RequireUser(), RunReminderCycle(reminderSvc, schedCfg))
	app.Post("/reminders/urgent", RequireUser(), SendUrgentReminders(reminderSvc))
	app.Post("/reminders/test-email", RequireUser(), SendTestEmail(reminderSvc))
	app.Post("/reminders/test-sms", RequireUser(), SendTestSMS(reminderSvc))
}

// RunReminderCycle triggers one automated dispatch pass immediately, with
// the same grace window the scheduler uses. Intended for operators; the
// cursor advance keeps a manual run from double-sending.
func RunReminderCycle(reminderSvc *reminder.Service, schedCfg config.SchedulerConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log.Infof("Manual dispatch cycle requested")
		grace := time.Duration(c.QueryInt("grace_minutes", schedCfg.GraceMinutes)) * time.Minute
		result := reminderSvc.RunCycle(c.Context(), grace)
		if !result.Success {
			return ProblemDetailsJSON(c, fiber.StatusInternalServerError, "Dispatch cycle failed", result.Message)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, result.Message, result.Results)
	}
}

// SendUrgentReminders sends an urgent-toned reminder to each listed client,
// bypassing schedules and enablement flags.
func SendUrgentReminders(reminderSvc *reminder.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		input, err := BindAndValidate[UrgentReminderRequest](c)
		if err != nil {
			return nil
		}
		log.Infof("Urgent reminders requested for %d clients", len(input.ClientIDs))
		result := reminderSvc.SendUrgent(c.Context(), userID, input.ClientIDs)
		if !result.Success {
			return ProblemDetailsJSON(c, fiber.StatusInternalServerError, "Urgent send failed", result.Message)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, result.Message, result.Results)
	}
}

// SendTestEmail emails a preview of the reminder or notification template to
// the account owner's own address.
func SendTestEmail(reminderSvc *reminder.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		sentTo, err := reminderSvc.SendTestEmail(c.Context(), userID, previewKind(c))
		if err != nil {
			log.Errorf("Test email failed: %v", err)
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to send test email", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Test email sent", fiber.Map{"sent_to": sentTo})
	}
}

// SendTestSMS texts a preview of the reminder or notification template to
// the phone on the account owner's business profile.
func SendTestSMS(reminderSvc *reminder.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		sentTo, err := reminderSvc.SendTestSMS(c.Context(), userID, previewKind(c))
		if err != nil {
			log.Errorf("Test SMS failed: %v", err)
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to send test SMS", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Test SMS sent", fiber.Map{"sent_to": sentTo})
	}
}

// previewKind reads the optional message type from the body; the reminder
// template is the default.
func previewKind(c *fiber.Ctx) domain.MessageKind {
	var input TestMessageRequest
	if err := c.BodyParser(&input); err == nil && input.Type == "notification" {
		return domain.KindNotification
	}
	return domain.KindReminder
}
