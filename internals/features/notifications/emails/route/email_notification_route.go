package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/notifications/emails/controller"
	emailService "membership_backend/internals/features/notifications/emails/service"
	"membership_backend/internals/middlewares/auth"
)

// EmailNotificationAdminRoutes mounts /email-notifications on the guarded admin group.
func EmailNotificationAdminRoutes(admin fiber.Router, db *gorm.DB, d *emailService.Dispatcher) {
	ctl := controller.NewEmailNotificationController(db, d)

	g := admin.Group("/email-notifications")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Detail)
	g.Post("/:id/resend", auth.CanWrite(), ctl.Resend)
}
