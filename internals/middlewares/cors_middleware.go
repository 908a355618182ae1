package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CorsMiddleware allows the configured admin/form origins with credentials.
func CorsMiddleware(origins []string) fiber.Handler {
	allow := strings.Join(origins, ",")
	if allow == "" {
		allow = "http://localhost:5173"
	}
	return cors.New(cors.Config{
		AllowOrigins:     allow,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders:    "Content-Disposition, Retry-After, X-Request-ID",
		AllowCredentials: true,
	})
}
