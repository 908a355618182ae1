package details

import (
	"github.com/gofiber/fiber/v2"

	userRoute "membership_backend/internals/features/users/user/route"
)

// UserRoutes lives at /api/users rather than under /api/admin, still behind the guard.
func UserRoutes(api fiber.Router, d Deps) {
	api.Use("/users", d.Guard.RequireAdmin())
	userRoute.UserRoutes(api, d.DB)
}
