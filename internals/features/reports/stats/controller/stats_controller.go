package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/reports/stats/service"
	helper "membership_backend/internals/helpers"
)

type StatsController struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{DB: db, now: time.Now}
}

// GET /api/admin/stats/summary
func (ctl *StatsController) Summary(c *fiber.Ctx) error {
	s, err := service.Summary(c.UserContext(), ctl.DB, ctl.now())
	if err != nil {
		log.Printf("[ERROR] stats summary: %v", err)
		return helper.JsonAppError(c, helper.PersistenceError("Failed to compute stats", err))
	}
	return helper.JsonOK(c, "Stats summary", s)
}

// GET /api/admin/stats/membership-types?period=week|month|all
func (ctl *StatsController) MembershipTypes(c *fiber.Ctx) error {
	period := c.Query("period", service.PeriodWeek)
	switch period {
	case service.PeriodWeek, service.PeriodMonth, service.PeriodAll:
	default:
		return helper.JsonError(c, fiber.StatusBadRequest, "period must be one of week, month, all")
	}
	rows, err := service.ByMembershipType(c.UserContext(), ctl.DB, period, ctl.now())
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to compute membership type breakdown", err))
	}
	return helper.JsonOK(c, "Membership type breakdown", fiber.Map{"period": period, "items": rows})
}

// GET /api/admin/stats/registrations-trend?days=N
func (ctl *StatsController) Trend(c *fiber.Ctx) error {
	days := helper.ClampInt(c.Query("days"), service.DefaultTrendDays, 1, service.MaxTrendDays)
	rows, err := service.Trend(c.UserContext(), ctl.DB, days, ctl.now())
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to compute trend", err))
	}
	return helper.JsonOK(c, "Registrations trend", fiber.Map{"days": days, "items": rows})
}
