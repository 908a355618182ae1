package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"membership_backend/internals/features/membership/membership_types/controller"
	"membership_backend/internals/middlewares/auth"
)

// MembershipTypePublicRoutes mounts the read-only catalog used by the sign-up form.
func MembershipTypePublicRoutes(r fiber.Router, db *gorm.DB) {
	ctl := controller.NewMembershipTypeController(db)
	r.Get("/membership-types", ctl.ListPublic)
}

func MembershipTypeAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctl := controller.NewMembershipTypeController(db)

	g := admin.Group("/membership-types")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Detail)
	g.Post("/", auth.CanWrite(), ctl.Create)
	g.Patch("/:id", auth.CanWrite(), ctl.Patch)
	g.Delete("/:id", auth.CanWrite(), ctl.Delete)
}
