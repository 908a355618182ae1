package auth

import (
	"github.com/gofiber/fiber/v2"

	authModel "membership_backend/internals/features/users/auth/model"
	helper "membership_backend/internals/helpers"
)

// RoleMiddlewareWithCustomError lets through admins whose role is allowed.
// Missing admin -> 401, wrong role -> 403.
func RoleMiddlewareWithCustomError(allowedRoles []string, customForbiddenMessage string) fiber.Handler {
	if customForbiddenMessage == "" {
		customForbiddenMessage = "Forbidden"
	}
	return func(c *fiber.Ctx) error {
		admin := CurrentAdmin(c)
		if admin == nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		for _, allowed := range allowedRoles {
			if admin.Role == allowed {
				return c.Next()
			}
		}
		return helper.JsonError(c, fiber.StatusForbidden, customForbiddenMessage)
	}
}

func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	return RoleMiddlewareWithCustomError(roles, customMessage)
}

// CanWrite is the mutating role set.
func CanWrite() fiber.Handler {
	return OnlyRoles("", authModel.RoleSuperAdmin, authModel.RoleAdmin)
}

func SuperAdminOnly() fiber.Handler {
	return OnlyRoles("", authModel.RoleSuperAdmin)
}

// WriteMethods guards mutating verbs only, so one group can carry reads and writes.
func WriteMethods() fiber.Handler {
	write := CanWrite()
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		return write(c)
	}
}
