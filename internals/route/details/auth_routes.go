package details

import (
	"github.com/gofiber/fiber/v2"

	authController "membership_backend/internals/features/users/auth/controller"
	authRoute "membership_backend/internals/features/users/auth/route"
)

func AuthRoutes(api fiber.Router, admin fiber.Router, d Deps) {
	cookie := authController.CookieConfig{
		Name:   d.Config.AuthCookieName,
		Domain: d.Config.CookieDomain,
		Secure: d.Config.CookieSecure || d.Config.IsProduction(),
		TTL:    d.Config.SessionTTL(),
	}
	authRoute.AuthRoutes(api, d.DB, d.Auth, cookie, d.Guard, d.Limits)
	authRoute.AdminUserRoutes(admin, d.DB)
}
