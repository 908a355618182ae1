package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"membership_backend/internals/configs"
	"membership_backend/internals/metrics"
	"membership_backend/internals/middlewares/logger"
)

// SetupMiddlewares installs the global chain in order.
func SetupMiddlewares(app *fiber.App, cfg *configs.Config) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestContext(30 * time.Second))
	app.Use(logger.LoggerMiddleware())
	app.Use(SecurityHeaders(cfg.IsProduction()))
	app.Use(CorsMiddleware(cfg.CorsOriginList()))
	app.Use(metrics.Middleware())
}
