package details

import (
	"github.com/gofiber/fiber/v2"

	emailRoute "membership_backend/internals/features/notifications/emails/route"
	paymentRoute "membership_backend/internals/features/payment/payments/route"
)

func PaymentWebhookRoutes(api fiber.Router, d Deps) {
	paymentRoute.PaymentWebhookRoutes(api, d.DB, d.Webhook, d.Limits)
}

func PaymentAdminRoutes(admin fiber.Router, d Deps) {
	paymentRoute.PaymentAdminRoutes(admin, d.DB)
	emailRoute.EmailNotificationAdminRoutes(admin, d.DB, d.Dispatcher)
}
