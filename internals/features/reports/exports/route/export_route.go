package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/reports/exports/controller"
	"membership_backend/internals/middlewares"
)

func ExportRoutes(admin fiber.Router, db *gorm.DB, batchSize int, limits middlewares.RateLimits) {
	ctl := controller.NewExportController(db, batchSize)

	g := admin.Group("/exports")
	g.Get("/users.csv", limits.Export("users"), ctl.Users)
	g.Get("/payments.csv", limits.Export("payments"), ctl.Payments)
}
