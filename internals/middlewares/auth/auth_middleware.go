package auth

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	auditService "membership_backend/internals/features/users/audit/service"
	authModel "membership_backend/internals/features/users/auth/model"
	authRepo "membership_backend/internals/features/users/auth/repository"
	authService "membership_backend/internals/features/users/auth/service"
	helper "membership_backend/internals/helpers"
)

const (
	LocalsAdmin     = "admin"
	LocalsAdminID   = auditService.LocalsAdminID
	LocalsAdminRole = "admin_role"
)

// Guard authenticates admin sessions. Every request re-reads the admin row so
// deactivation takes effect before the token expires.
type Guard struct {
	DB         *gorm.DB
	Tokens     *authService.TokenService
	CookieName string
}

func NewGuard(db *gorm.DB, tokens *authService.TokenService, cookieName string) *Guard {
	return &Guard{DB: db, Tokens: tokens, CookieName: cookieName}
}

func (g *Guard) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := helper.GetRawAccessToken(c, g.CookieName)
		if raw == "" {
			return unauthorized(c)
		}

		claims, err := g.Tokens.Parse(raw, authService.PurposeSession)
		if err != nil {
			return unauthorized(c)
		}

		ctx := c.UserContext()
		revoked, err := authRepo.IsTokenBlacklisted(ctx, g.DB, authService.TokenHash(raw))
		if err != nil {
			log.Printf("[ERROR] blacklist lookup: %v", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Internal server error")
		}
		if revoked {
			return unauthorized(c)
		}

		adminID, _ := claims.AdminID()
		admin, err := authRepo.FindAdminByID(ctx, g.DB, adminID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return unauthorized(c)
			}
			log.Printf("[ERROR] admin lookup %s: %v", adminID, err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Internal server error")
		}
		if !admin.IsActive {
			return unauthorized(c)
		}

		storeAdmin(c, admin)
		helper.SetRawAccessToken(c, raw)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
}

func storeAdmin(c *fiber.Ctx, a *authModel.AdminUser) {
	c.Locals(LocalsAdmin, a)
	c.Locals(LocalsAdminID, a.ID.String())
	c.Locals(LocalsAdminRole, a.Role)
}

// CurrentAdmin returns the admin put in Locals by the guard, or nil.
func CurrentAdmin(c *fiber.Ctx) *authModel.AdminUser {
	a, _ := c.Locals(LocalsAdmin).(*authModel.AdminUser)
	return a
}
