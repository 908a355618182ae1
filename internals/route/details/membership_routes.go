package details

import (
	"github.com/gofiber/fiber/v2"

	typeRoute "membership_backend/internals/features/membership/membership_types/route"
	regRoute "membership_backend/internals/features/membership/registrations/route"
)

// MembershipPublicRoutes: catalog + sign-up form.
func MembershipPublicRoutes(api fiber.Router, d Deps) {
	typeRoute.MembershipTypePublicRoutes(api, d.DB)
	regRoute.RegistrationPublicRoutes(api, d.DB, d.Registrations, d.Limits)
}

func MembershipAdminRoutes(admin fiber.Router, d Deps) {
	typeRoute.MembershipTypeAdminRoutes(admin, d.DB)
	regRoute.RegistrationAdminRoutes(admin, d.DB, d.Dispatcher)
}
