package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/reports/renewals/controller"
	"membership_backend/internals/middlewares/auth"
)

func RenewalRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewRenewalController(db)

	g := admin.Group("/renewals")
	g.Get("/", ctl.List)
	g.Post("/sweep", auth.CanWrite(), ctl.Sweep)
}
