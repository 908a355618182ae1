package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/reports/imports/controller"
	"membership_backend/internals/features/reports/imports/service"
	"membership_backend/internals/middlewares"
	"membership_backend/internals/middlewares/auth"
)

func ImportRoutes(admin fiber.Router, db *gorm.DB, im *service.Importer, limits middlewares.RateLimits) {
	ctl := controller.NewImportController(db, im)

	g := admin.Group("/import", auth.CanWrite())
	g.Post("/users", limits.Import("users"), ctl.Users)
	g.Post("/payments", limits.Import("payments"), ctl.Payments)
}
