package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/users/user/controller"
	"membership_backend/internals/middlewares/auth"
)

// UserRoutes mounts /users on an already guarded group.
func UserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewUserController(db)

	g := r.Group("/users")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Detail)
	g.Post("/", auth.CanWrite(), ctl.Create)
	g.Patch("/:id", auth.CanWrite(), ctl.Patch)
	g.Delete("/:id", auth.CanWrite(), ctl.Delete)
}
