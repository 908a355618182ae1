package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Locals key holding the raw token once the guard has accepted it.
const LocRawToken = "raw_token"

// GetRawAccessToken reads the session token from the cookie, then from
// Locals, then from "Authorization: Bearer <token>".
func GetRawAccessToken(c *fiber.Ctx, cookieName string) string {
	if v := strings.TrimSpace(c.Cookies(cookieName)); v != "" {
		return v
	}
	if v, ok := c.Locals(LocRawToken).(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	fields := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
		return strings.Trim(fields[1], "\"'")
	}
	return ""
}

func SetRawAccessToken(c *fiber.Ctx, raw string) {
	if strings.TrimSpace(raw) != "" {
		c.Locals(LocRawToken, strings.TrimSpace(raw))
	}
}
