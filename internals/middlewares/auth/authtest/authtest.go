// Package authtest stands in for the admin guard in handler tests.
package authtest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	authModel "membership_backend/internals/features/users/auth/model"
	"membership_backend/internals/middlewares/auth"
)

// As puts a synthetic admin with the given role into Locals, the way the guard does.
func As(role string) fiber.Handler {
	a := &authModel.AdminUser{
		ID:       uuid.New(),
		Username: role + "-tester",
		Email:    role + "@example.com",
		Role:     role,
		IsActive: true,
	}
	return func(c *fiber.Ctx) error {
		c.Locals(auth.LocalsAdmin, a)
		c.Locals(auth.LocalsAdminID, a.ID.String())
		c.Locals(auth.LocalsAdminRole, a.Role)
		return c.Next()
	}
}
