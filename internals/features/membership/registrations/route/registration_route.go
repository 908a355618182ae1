package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/membership/registrations/controller"
	"membership_backend/internals/features/membership/registrations/service"
	emailService "membership_backend/internals/features/notifications/emails/service"
	"membership_backend/internals/middlewares"
	"membership_backend/internals/middlewares/auth"
)

// RegistrationPublicRoutes mounts the sign-up form endpoint.
func RegistrationPublicRoutes(r fiber.Router, db *gorm.DB, svc *service.RegistrationService, limits middlewares.RateLimits) {
	ctl := controller.NewRegistrationController(db, svc, nil)
	r.Post("/registrations", limits.Registration(), ctl.Submit)
}

func RegistrationAdminRoutes(admin fiber.Router, db *gorm.DB, d *emailService.Dispatcher) {
	ctl := controller.NewRegistrationController(db, nil, d)

	g := admin.Group("/registrations")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Detail)
	g.Patch("/:id", auth.CanWrite(), ctl.Patch)
	g.Post("/:id/resend-email", auth.CanWrite(), ctl.ResendEmail)
}
