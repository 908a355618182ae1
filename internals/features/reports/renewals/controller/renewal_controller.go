package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/reports/renewals/service"
	helper "membership_backend/internals/helpers"
)

type RenewalController struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewRenewalController(db *gorm.DB) *RenewalController {
	return &RenewalController{DB: db, now: time.Now}
}

// GET /api/admin/renewals?status=due|overdue&windowDays=&page=&pageSize=&q=
func (ctl *RenewalController) List(c *fiber.Ctx) error {
	status := c.Query("status", service.StatusDue)
	if status != service.StatusDue && status != service.StatusOverdue {
		status = service.StatusDue
	}
	window := helper.ClampInt(c.Query("windowDays"), service.DefaultWindowDays, 1, service.MaxWindowDays)
	page := helper.ClampInt(c.Query("page"), 1, 1, 1<<20)
	size := helper.ClampInt(c.Query("pageSize"), 20, 1, 100)
	p := helper.Paging{Page: page, PageSize: size, Offset: (page - 1) * size}

	rows, total, err := service.ListRenewals(c.UserContext(), ctl.DB, service.ListFilter{
		Status:     status,
		WindowDays: window,
		Q:          c.Query("q"),
		Paging:     p,
	}, ctl.now())
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to list renewals", err))
	}
	return helper.JsonList(c, "Renewals fetched", rows, helper.BuildPagination(total, p, len(rows)))
}

// POST /api/admin/renewals/sweep runs the expiry sweep now.
func (ctl *RenewalController) Sweep(c *fiber.Ctx) error {
	res, err := service.SweepExpired(c.UserContext(), ctl.DB, ctl.now())
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to run expiry sweep", err))
	}
	return helper.JsonOK(c, "Expiry sweep completed", res)
}
