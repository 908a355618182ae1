package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/reports/stats/controller"
)

func StatsRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewStatsController(db)

	g := admin.Group("/stats")
	g.Get("/summary", ctl.Summary)
	g.Get("/membership-types", ctl.MembershipTypes)
	g.Get("/registrations-trend", ctl.Trend)
}
