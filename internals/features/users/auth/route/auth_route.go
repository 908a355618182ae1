package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/users/auth/controller"
	"membership_backend/internals/features/users/auth/service"
	"membership_backend/internals/middlewares"
	"membership_backend/internals/middlewares/auth"
)

// AuthRoutes mounts /api/auth.
func AuthRoutes(r fiber.Router, db *gorm.DB, svc *service.AuthService, cookie controller.CookieConfig, guard *auth.Guard, limits middlewares.RateLimits) {
	ctl := controller.NewAuthController(db, svc, cookie)

	g := r.Group("/auth")
	g.Post("/login", limits.Login(), ctl.Login)
	g.Post("/logout", ctl.Logout)
	g.Post("/forgot", limits.ForgotPassword(), ctl.Forgot)
	g.Post("/reset", ctl.Reset)
	g.Get("/me", guard.RequireAdmin(), ctl.Me)
}

// AdminUserRoutes mounts /admins on an already guarded admin group.
func AdminUserRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewAdminUsersController(db)

	g := admin.Group("/admins", auth.SuperAdminOnly())
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Patch("/:id", ctl.Patch)
}
