package details

import (
	"github.com/gofiber/fiber/v2"

	exportRoute "membership_backend/internals/features/reports/exports/route"
	importRoute "membership_backend/internals/features/reports/imports/route"
	renewalRoute "membership_backend/internals/features/reports/renewals/route"
	statsRoute "membership_backend/internals/features/reports/stats/route"
)

// ReportAdminRoutes: dashboards, renewals and CSV in/out.
func ReportAdminRoutes(admin fiber.Router, d Deps) {
	statsRoute.StatsRoutes(admin, d.DB)
	renewalRoute.RenewalRoutes(admin, d.DB)
	// exports page through the DB with the import batch size
	exportRoute.ExportRoutes(admin, d.DB, d.Config.ImportBatchSize, d.Limits)
	importRoute.ImportRoutes(admin, d.DB, d.Importer, d.Limits)
}
