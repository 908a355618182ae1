package middlewares

import "github.com/gofiber/fiber/v2"

// SecurityHeaders sets the static hardening headers. HSTS only in production.
func SecurityHeaders(production bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderXFrameOptions, "DENY")
		c.Set(fiber.HeaderReferrerPolicy, "no-referrer-when-downgrade")
		c.Set(fiber.HeaderXXSSProtection, "0")
		if production {
			c.Set(fiber.HeaderStrictTransportSecurity, "max-age=15552000; includeSubDomains")
		}
		return c.Next()
	}
}
