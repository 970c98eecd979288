package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// userIDHeader carries the authenticated user's id, set by the gateway in
// front of this service. Authentication itself happens upstream.
const userIDHeader = "X-User-ID"

const userIDLocal = "user_id"

// RequireUser rejects requests that lack a valid user id header and stashes
// the parsed id in the request locals for handlers.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(userIDHeader)
		if raw == "" {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user identity")
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "invalid user identity")
		}
		c.Locals(userIDLocal, userID)
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user's id from the request locals.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals(userIDLocal).(uuid.UUID)
	return userID, ok
}
