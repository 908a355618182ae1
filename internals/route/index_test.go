package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership_backend/internals/configs"
	"membership_backend/internals/databases/testdb"
	regService "membership_backend/internals/features/membership/registrations/service"
	paymentService "membership_backend/internals/features/payment/payments/service"
	importService "membership_backend/internals/features/reports/imports/service"
	authModel "membership_backend/internals/features/users/auth/model"
	authService "membership_backend/internals/features/users/auth/service"
	"membership_backend/internals/middlewares"
	"membership_backend/internals/middlewares/auth"
	routeDetails "membership_backend/internals/route/details"
)

func newTestApp(t *testing.T, rdb *redis.Client) (*fiber.App, *authService.TokenService, routeDetails.Deps) {
	t.Helper()
	db := testdb.New(t)
	cfg := &configs.Config{
		Env:            "test",
		AuthCookieName: "chefs_admin_token",
		AuthJWTExpires: "1h",
		UploadDir:      t.TempDir(),
		AppURL:         "http://localhost",
		AdminBasePath:  "/admin",
	}
	tokens := authService.NewTokenService("secret", time.Hour)
	d := routeDetails.Deps{
		DB:            db,
		Redis:         rdb,
		Config:        cfg,
		Guard:         auth.NewGuard(db, tokens, cfg.AuthCookieName),
		Auth:          authService.NewAuthService(db, tokens, nil, cfg),
		Limits:        middlewares.RateLimits{Counter: middlewares.NewMemoryCounter()},
		Registrations: regService.NewRegistrationService(db, nil, nil, "CAG", 30),
		Webhook:       paymentService.NewWebhookService(db, "whsec"),
		Importer:      importService.NewImporter(db, 0, 0),
	}
	app := fiber.New()
	SetupRoutes(app, d)
	return app, tokens, d
}

func status(t *testing.T, app *fiber.App, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRouteTreeGuards(t *testing.T) {
	app, tokens, d := newTestApp(t, nil)

	assert.Equal(t, fiber.StatusOK, status(t, app, "GET", "/api/membership-types", ""))
	assert.Equal(t, fiber.StatusOK, status(t, app, "GET", "/metrics", ""))

	for _, path := range []string{
		"/api/users",
		"/api/admin/registrations",
		"/api/admin/payments",
		"/api/admin/stats/summary",
		"/api/admin/renewals",
		"/api/admin/email-notifications",
		"/api/admin/membership-types",
		"/api/auth/me",
	} {
		assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "GET", path, ""), path)
	}

	viewer := &authModel.AdminUser{Username: "viewer", Email: "viewer@example.com", PasswordHash: "x", Role: authModel.RoleViewer, IsActive: true}
	require.NoError(t, d.DB.Create(viewer).Error)
	tok, _, err := tokens.IssueSession(viewer)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, status(t, app, "GET", "/api/users", tok))
	assert.Equal(t, fiber.StatusOK, status(t, app, "GET", "/api/admin/renewals", tok))
	assert.Equal(t, fiber.StatusForbidden, status(t, app, "GET", "/api/admin/admins", tok))
	assert.Equal(t, fiber.StatusForbidden, status(t, app, "POST", "/api/admin/renewals/sweep", tok))
}

func TestHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	app, _, _ := newTestApp(t, rdb)

	read := func() (int, map[string]any) {
		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		return resp.StatusCode, body
	}

	code, body := read()
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "Connected", body["redis"])

	mr.Close()
	code, body = read()
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "DEGRADED", body["status"])
}
