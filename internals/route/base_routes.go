package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	database "membership_backend/internals/databases"
	"membership_backend/internals/metrics"
	routeDetails "membership_backend/internals/route/details"
)

func BaseRoutes(app *fiber.App, d routeDetails.Deps) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Membership API is running 🚀")
	})

	app.Get("/metrics", metrics.Handler())

	app.Static("/uploads", d.Config.UploadDir, fiber.Static{
		MaxAge: 3600,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		dbStatus := "Connected"
		redisStatus := "Disabled"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if err := database.Ping(ctx, d.DB); err != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}
		if d.Redis != nil {
			redisStatus = "Connected"
			// rate limits fail open without redis
			if err := d.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = "Redis connection error"
				if serverStatus == "OK" {
					serverStatus = "DEGRADED"
				}
			}
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"redis":          redisStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    d.Config.Env,
		})
	})
}
