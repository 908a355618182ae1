package route_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership_backend/internals/databases/testdb"
	paymentModel "membership_backend/internals/features/payment/payments/model"
	"membership_backend/internals/features/reports/exports/route"
	authModel "membership_backend/internals/features/users/auth/model"
	"membership_backend/internals/middlewares"
	"membership_backend/internals/middlewares/auth/authtest"
)

func TestExportResponses(t *testing.T) {
	db := testdb.New(t)
	app := fiber.New()
	limits := middlewares.RateLimits{Counter: middlewares.NewMemoryCounter()}
	route.ExportRoutes(app.Group("/api/admin", authtest.As(authModel.RoleViewer)), db, 100, limits)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/exports/payments.csv", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="payments-\d{4}-\d{2}-\d{2}\.csv"$`, resp.Header.Get("Content-Disposition"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "id,reference,gateway,status,amount,currency,channel,paid_at,customer_email,created_at,membership_id\n", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/api/admin/exports/users.csv?start=yesterday", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/admin/exports/users.csv", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "id,first_name,middle_name,"))
}

func TestExportRateLimit(t *testing.T) {
	db := testdb.New(t)
	app := fiber.New()
	limits := middlewares.RateLimits{Counter: middlewares.NewMemoryCounter()}
	route.ExportRoutes(app.Group("/api/admin", authtest.As(authModel.RoleViewer)), db, 100, limits)

	for i := 0; i < 20; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/exports/users.csv", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/exports/users.csv", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	// each export has its own budget
	resp, err = app.Test(httptest.NewRequest("GET", "/api/admin/exports/payments.csv", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestExportQueryFailureReturnsJSONError(t *testing.T) {
	db := testdb.New(t)
	app := fiber.New()
	limits := middlewares.RateLimits{Counter: middlewares.NewMemoryCounter()}
	route.ExportRoutes(app.Group("/api/admin", authtest.As(authModel.RoleViewer)), db, 100, limits)
	require.NoError(t, db.Migrator().DropTable(&paymentModel.Payment{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/exports/payments.csv", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.Empty(t, resp.Header.Get("Content-Disposition"))
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Failed to export payments")
	assert.NotContains(t, string(body), "reference,gateway")
}
