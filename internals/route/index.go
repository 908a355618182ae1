package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	routeDetails "membership_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, d routeDetails.Deps) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, d)

	// ===================== GROUPS =====================
	api := app.Group("/api")

	log.Println("[INFO] Setting up ADMIN group (guard)...")
	admin := api.Group("/admin", d.Guard.RequireAdmin())

	// ===================== MOUNT ROUTES =====================

	log.Println("[INFO] Mounting Auth routes...")
	routeDetails.AuthRoutes(api, admin, d)

	log.Println("[INFO] Mounting Membership routes...")
	routeDetails.MembershipPublicRoutes(api, d)
	routeDetails.MembershipAdminRoutes(admin, d)

	log.Println("[INFO] Mounting User routes...")
	routeDetails.UserRoutes(api, d)

	log.Println("[INFO] Mounting Payment routes...")
	routeDetails.PaymentWebhookRoutes(api, d)
	routeDetails.PaymentAdminRoutes(admin, d)

	log.Println("[INFO] Mounting Report routes...")
	routeDetails.ReportAdminRoutes(admin, d)
}
