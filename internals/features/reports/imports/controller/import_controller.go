package controller

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/reports/imports/service"
	auditModel "membership_backend/internals/features/users/audit/model"
	auditService "membership_backend/internals/features/users/audit/service"
	helper "membership_backend/internals/helpers"
)

type importFunc func(ctx context.Context, r io.Reader, dryRun bool) (*service.Result, error)

type ImportController struct {
	DB       *gorm.DB
	Importer *service.Importer
}

func NewImportController(db *gorm.DB, im *service.Importer) *ImportController {
	return &ImportController{DB: db, Importer: im}
}

// POST /api/admin/import/users?dryRun=true|false (multipart "file")
func (ctl *ImportController) Users(c *fiber.Ctx) error {
	return ctl.handle(c, "user", ctl.Importer.ImportUsers)
}

// POST /api/admin/import/payments?dryRun=true|false (multipart "file")
func (ctl *ImportController) Payments(c *fiber.Ctx) error {
	return ctl.handle(c, "payment", ctl.Importer.ImportPayments)
}

func (ctl *ImportController) handle(c *fiber.Ctx, entity string, importFn importFunc) error {
	dryRun := helper.QueryBool(c, "dryRun", true)

	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Missing file")
	}
	f, err := fh.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Unable to read uploaded file")
	}
	defer f.Close()

	res, err := importFn(c.UserContext(), f, dryRun)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	// dry runs never write, audit included
	if !dryRun {
		auditService.Log(c, ctl.DB, auditModel.ActionImport, entity, "", nil, fiber.Map{
			"file":      fh.Filename,
			"processed": res.Processed,
			"created":   res.Created,
			"updated":   res.Updated,
			"errors":    len(res.Errors),
		})
	}
	return helper.JsonOK(c, "Import completed", res)
}
