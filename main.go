package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/robfig/cron/v3"

	"membership_backend/internals/configs"
	database "membership_backend/internals/databases"
	regService "membership_backend/internals/features/membership/registrations/service"
	emailService "membership_backend/internals/features/notifications/emails/service"
	paymentService "membership_backend/internals/features/payment/payments/service"
	importService "membership_backend/internals/features/reports/imports/service"
	renewalScheduler "membership_backend/internals/features/reports/renewals/scheduler"
	authScheduler "membership_backend/internals/features/users/auth/scheduler"
	authService "membership_backend/internals/features/users/auth/service"
	helper "membership_backend/internals/helpers"
	middlewares "membership_backend/internals/middlewares"
	"membership_backend/internals/middlewares/auth"
	routes "membership_backend/internals/route"
	routeDetails "membership_backend/internals/route/details"
	"membership_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// `membership migrate up|down` runs the schema migrations and exits
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		direction := "up"
		if len(os.Args) > 2 {
			direction = os.Args[2]
		}
		if err := database.RunMigrations(cfg.DSN(), direction); err != nil {
			log.Fatalf("❌ migrate %s: %v", direction, err)
		}
		return
	}

	// 🔌 DB connect + schema + pool + warm-up
	db := database.ConnectDB(cfg)
	if cfg.DBAutoMigrate {
		if err := database.RunMigrations(cfg.DSN(), "up"); err != nil {
			log.Fatalf("❌ migrations failed: %v", err)
		}
	}
	database.TunePool(db, cfg)
	database.WarmUpQueries(db)

	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Printf("[WARN] %v; rate limits stay in-process", err)
	}

	photos, err := helper.NewPhotoStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// ✉️ notifications
	dispatcher := emailService.NewDispatcher(db, emailService.NewSender(cfg), cfg.EmailRatePerMinute, cfg.SupportEmail)

	// 🔐 admin auth
	tokens := authService.NewTokenService(cfg.JWTSecret, cfg.SessionTTL())
	deps := routeDetails.Deps{
		DB:            db,
		Redis:         rdb,
		Config:        cfg,
		Guard:         auth.NewGuard(db, tokens, cfg.AuthCookieName),
		Auth:          authService.NewAuthService(db, tokens, dispatcher, cfg),
		Limits:        middlewares.NewRateLimits(rdb),
		Dispatcher:    dispatcher,
		Registrations: regService.NewRegistrationService(db, photos, dispatcher, cfg.MembershipIDPrefix, cfg.RenewalWindowDays),
		Webhook:       paymentService.NewWebhookService(db, cfg.PaystackSecretKey),
		Importer:      importService.NewImporter(db, cfg.ImportMaxRows, cfg.ImportBatchSize),
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	seeds.RunAllSeeds(seedCtx, db, cfg)
	cancelSeed()

	// ⏱ scheduler after DB is ready
	jobs := cron.New()
	if _, err := authScheduler.RegisterBlacklistCleanup(jobs, db); err != nil {
		log.Printf("[ERROR] schedule blacklist cleanup: %v", err)
	}
	if _, err := renewalScheduler.RegisterExpirySweep(jobs, db, cfg.ExpirySweepCron); err != nil {
		log.Printf("[ERROR] schedule expiry sweep (%q): %v", cfg.ExpirySweepCron, err)
	}
	jobs.Start()

	fiberCfg := fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          helper.FiberErrorHandler,
		DisableStartupMessage: true,
		BodyLimit:             32 << 20, // CSV imports; photos are capped by PhotoStore
	}
	middlewares.ApplyProxySettings(&fiberCfg, cfg.TrustedProxyList())
	app := fiber.New(fiberCfg)

	// exports stream their body; compress and etag would buffer it
	streaming := func(c *fiber.Ctx) bool {
		return strings.HasPrefix(c.Path(), "/api/admin/exports")
	}
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault, Next: streaming}))
	app.Use(etag.New(etag.Config{Next: streaming}))

	middlewares.SetupMiddlewares(app, cfg)

	// ✅ Routes
	routes.SetupRoutes(app, deps)

	app.Server().ReadTimeout = 30 * time.Second
	app.Server().WriteTimeout = 120 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Printf("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: HTTP, cron, redis, DB pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("⏳ Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	<-jobs.Stop().Done()

	if rdb != nil {
		_ = rdb.Close()
	}
	database.Close(db)
}
