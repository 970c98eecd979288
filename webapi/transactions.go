// Transaction endpoints: recording invoices and payments, which also
// triggers the per-transaction notification.

package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	"github.com/pursuepayments/invoicechase/pkg/service/notification"
)

// TransactionRoutes registers the transaction endpoint.
//
//   - POST /transactions : record an invoice or payment for a client.
func TransactionRoutes(app *fiber.App, notificationSvc *notification.Service) {
	app.Post("/transactions", RequireUser(), CreateTransaction(notificationSvc))
}

// CreateTransaction records the transaction and reports the notification
// outcome alongside it. A failed notification never fails the request.
func CreateTransaction(notificationSvc *notification.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		input, err := BindAndValidate[dto.TransactionCreate](c)
		if err != nil {
			return nil
		}
		tx, notif, err := notificationSvc.RecordTransaction(c.Context(), userID, input)
		if err != nil {
			log.Errorf("Failed to record transaction: %v", err)
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to record transaction", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Transaction recorded", fiber.Map{
			"transaction":  tx,
			"notification": notif,
		})
	}
}
