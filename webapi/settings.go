// Settings endpoints: communication preferences, the business profile, and
// the monthly quota summary.

package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	"github.com/pursuepayments/invoicechase/pkg/repository"
	"github.com/pursuepayments/invoicechase/pkg/service/quota"
	"github.com/pursuepayments/invoicechase/pkg/service/settings"
)

// SettingsRoutes registers the settings and quota endpoints.
//
//   - GET /settings/notifications   : read the user's communication preferences.
//   - PUT /settings/notifications   : partially update the preferences.
//   - GET /clients/:id/settings     : read one client's overrides.
//   - PUT /clients/:id/settings     : partially update a client's overrides.
//   - GET /settings/business        : read the business profile.
//   - PUT /settings/business        : create or replace the business profile.
//   - GET /quota/channels           : current month usage against plan limits.
func SettingsRoutes(app *fiber.App, settingsSvc *settings.Service, quotaSvc *quota.Service, users repository.UserRepository) {
	app.Get("/settings/notifications", RequireUser(), GetNotificationSettings(settingsSvc))
	app.Put("/settings/notifications", RequireUser(), UpdateNotificationSettings(settingsSvc))
	app.Get("/clients/:id/settings", RequireUser(), GetClientSettings(settingsSvc))
	app.Put("/clients/:id/settings", RequireUser(), UpdateClientSettings(settingsSvc))
	app.Get("/settings/business", RequireUser(), GetBusinessInfo(settingsSvc))
	app.Put("/settings/business", RequireUser(), UpsertBusinessInfo(settingsSvc))
	app.Get("/quota/channels", RequireUser(), GetQuota(quotaSvc, users))
}

// GetNotificationSettings returns the stored preferences, or the system
// defaults when the user has never saved any.
func GetNotificationSettings(settingsSvc *settings.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		read, err := settingsSvc.Get(c.Context(), userID)
		if err != nil {
			log.Errorf("Failed to load settings: %v", err)
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to load settings", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Settings fetched", read)
	}
}

// UpdateNotificationSettings applies a partial preference change. A new
// reminder frequency also reschedules the next reminder.
func UpdateNotificationSettings(settingsSvc *settings.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		input, err := BindAndValidate[dto.SettingsUpdate](c)
		if err != nil {
			return nil
		}
		read, err := settingsSvc.Update(c.Context(), userID, input)
		if err != nil {
			log.Errorf("Failed to update settings: %v", err)
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to update settings", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Settings updated", read)
	}
}

// GetClientSettings returns one client's override row. Unset fields are
// omitted from the response; they inherit from the user-level preferences.
func GetClientSettings(settingsSvc *settings.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		clientID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ProblemDetailsJSON(c, fiber.StatusBadRequest, "Invalid client id", err.Error())
		}
		read, err := settingsSvc.GetClientSettings(c.Context(), userID, clientID)
		if err != nil {
			log.Errorf("Failed to load client settings: %v", err)
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to load client settings", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Client settings fetched", read)
	}
}

// UpdateClientSettings applies a partial override change for one client. A
// new reminder frequency gives the client its own schedule.
func UpdateClientSettings(settingsSvc *settings.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		clientID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ProblemDetailsJSON(c, fiber.StatusBadRequest, "Invalid client id", err.Error())
		}
		input, err := BindAndValidate[dto.SettingsUpdate](c)
		if err != nil {
			return nil
		}
		read, err := settingsSvc.UpdateClientSettings(c.Context(), userID, clientID, input)
		if err != nil {
			log.Errorf("Failed to update client settings: %v", err)
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to update client settings", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Client settings updated", read)
	}
}

// GetBusinessInfo returns the business profile used for message branding.
func GetBusinessInfo(settingsSvc *settings.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		info, err := settingsSvc.GetBusinessInfo(c.Context(), userID)
		if err != nil {
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to load business info", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Business info fetched", info)
	}
}

// UpsertBusinessInfo creates or replaces the business profile.
func UpsertBusinessInfo(settingsSvc *settings.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		input, err := BindAndValidate[dto.BusinessInfoUpsert](c)
		if err != nil {
			return nil
		}
		info, err := settingsSvc.UpsertBusinessInfo(c.Context(), userID, input)
		if err != nil {
			log.Errorf("Failed to save business info: %v", err)
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to save business info", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Business info saved", info)
	}
}

// GetQuota returns this month's per-channel usage against the plan limits.
func GetQuota(quotaSvc *quota.Service, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		user, err := users.Get(c.Context(), userID)
		if err != nil {
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to load user", err.Error())
		}
		summary, err := quotaSvc.Summary(c.Context(), userID, user.PlanType)
		if err != nil {
			log.Errorf("Failed to load quota summary: %v", err)
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to load quota", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Quota fetched", summary)
	}
}
