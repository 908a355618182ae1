package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	auditModel "membership_backend/internals/features/users/audit/model"
	auditService "membership_backend/internals/features/users/audit/service"
	"membership_backend/internals/features/users/auth/service"
	helper "membership_backend/internals/helpers"
	"membership_backend/internals/middlewares/auth"
)

type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
	TTL    time.Duration
}

type AuthController struct {
	DB     *gorm.DB
	Auth   *service.AuthService
	Cookie CookieConfig
}

func NewAuthController(db *gorm.DB, svc *service.AuthService, cookie CookieConfig) *AuthController {
	return &AuthController{DB: db, Auth: svc, Cookie: cookie}
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := ac.Auth.Login(c.UserContext(), in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	ac.setCookie(c, res.Token, res.ExpiresAt)

	entry := auditService.FromRequest(c, auditModel.ActionAdminLogin, "admin", res.Admin.ID.String(), nil, fiber.Map{"email": res.Admin.Email})
	entry.AdminUserID = &res.Admin.ID
	auditService.Record(ac.DB.WithContext(c.UserContext()), entry)

	return helper.JsonOK(c, "Login successful", fiber.Map{"admin": service.ProfileOf(res.Admin)})
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	admin := auth.CurrentAdmin(c)
	if admin == nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return helper.JsonOK(c, "OK", fiber.Map{"admin": service.ProfileOf(admin)})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	raw := helper.GetRawAccessToken(c, ac.Cookie.Name)
	if err := ac.Auth.Logout(c.UserContext(), raw); err != nil {
		return helper.JsonAppError(c, err)
	}
	ac.clearCookie(c)
	return helper.JsonOK(c, "Logged out", fiber.Map{"ok": true})
}

// POST /api/auth/forgot
func (ac *AuthController) Forgot(c *fiber.Ctx) error {
	var in struct {
		Email string `json:"email"`
	}
	_ = c.BodyParser(&in)
	ac.Auth.ForgotPassword(c.UserContext(), in.Email)
	return helper.JsonOK(c, "If the account exists, a reset link has been sent", fiber.Map{"ok": true})
}

// POST /api/auth/reset
func (ac *AuthController) Reset(c *fiber.Ctx) error {
	var in service.ResetInput
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request")
	}
	adminID, err := ac.Auth.ResetPassword(c.UserContext(), in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	entry := auditService.FromRequest(c, auditModel.ActionAdminPasswordReset, "admin", adminID, nil, nil)
	if id, perr := helper.ParseUUIDString(adminID); perr == nil {
		entry.AdminUserID = &id
	}
	auditService.Record(ac.DB.WithContext(c.UserContext()), entry)

	return helper.JsonOK(c, "Password updated", fiber.Map{"ok": true})
}

/* ===== cookie ===== */

func (ac *AuthController) setCookie(c *fiber.Ctx, token string, exp time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     ac.Cookie.Name,
		Value:    token,
		Path:     "/",
		Domain:   ac.Cookie.Domain,
		Expires:  exp,
		MaxAge:   int(ac.Cookie.TTL.Seconds()),
		Secure:   ac.Cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (ac *AuthController) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     ac.Cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   ac.Cookie.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   ac.Cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
