package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/payment/payments/controller"
	"membership_backend/internals/features/payment/payments/service"
	"membership_backend/internals/middlewares"
)

// PaymentWebhookRoutes mounts the unauthenticated gateway callback.
func PaymentWebhookRoutes(r fiber.Router, db *gorm.DB, webhook *service.WebhookService, limits middlewares.RateLimits) {
	ctl := controller.NewPaymentController(db, webhook)
	r.Post("/webhook/paystack", limits.Webhook(), ctl.Paystack)
}

func PaymentAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewPaymentController(db, nil)

	g := admin.Group("/payments")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Detail)
}
