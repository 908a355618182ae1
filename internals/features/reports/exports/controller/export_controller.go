package controller

import (
	"bufio"
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/reports/exports/service"
	helper "membership_backend/internals/helpers"
)

type openFunc func(ctx context.Context, db *gorm.DB, r service.DateRange, batchSize int) (*service.Export, error)

type ExportController struct {
	DB        *gorm.DB
	BatchSize int
	now       func() time.Time
}

func NewExportController(db *gorm.DB, batchSize int) *ExportController {
	return &ExportController{DB: db, BatchSize: batchSize, now: time.Now}
}

// GET /api/admin/exports/users.csv?start=&end=
func (ctl *ExportController) Users(c *fiber.Ctx) error {
	return ctl.stream(c, "users", service.OpenUsersExport)
}

// GET /api/admin/exports/payments.csv?start=&end=
func (ctl *ExportController) Payments(c *fiber.Ctx) error {
	return ctl.stream(c, "payments", service.OpenPaymentsExport)
}

func (ctl *ExportController) stream(c *fiber.Ctx, entity string, openExport openFunc) error {
	r, ae := service.ParseRange(c.Query("start"), c.Query("end"))
	if ae != nil {
		return helper.JsonAppError(c, ae)
	}

	// the stream outlives the handler, so it gets its own context
	export, err := openExport(context.Background(), ctl.DB, r, ctl.BatchSize)
	if err != nil {
		return helper.JsonAppError(c, helper.PersistenceError("Failed to export "+entity, err))
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+service.Filename(entity, ctl.now())+`"`)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if err := export.WriteTo(w); err != nil {
			log.Printf("[ERROR] export %s: %v", entity, err)
		}
		_ = w.Flush()
	})
	return nil
}
