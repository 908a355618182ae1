package route_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"membership_backend/internals/databases/testdb"
	paymentModel "membership_backend/internals/features/payment/payments/model"
	"membership_backend/internals/features/reports/imports/route"
	"membership_backend/internals/features/reports/imports/service"
	auditModel "membership_backend/internals/features/users/audit/model"
	authModel "membership_backend/internals/features/users/auth/model"
	"membership_backend/internals/middlewares"
	"membership_backend/internals/middlewares/auth/authtest"
)

const paymentsCSV = "reference,status,amount,currency,customer_email\n" +
	"CASH-1,success,150,GHS,ama@example.com\n" +
	"CASH-2,nope,150,GHS,kofi@example.com\n"

func newApp(db *gorm.DB, role string) *fiber.App {
	app := fiber.New()
	limits := middlewares.RateLimits{Counter: middlewares.NewMemoryCounter()}
	route.ImportRoutes(app.Group("/api/admin", authtest.As(role)), db, service.NewImporter(db, 0, 0), limits)
	return app
}

func upload(t *testing.T, app *fiber.App, path, field, content string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "payments.csv")
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) service.Result {
	t.Helper()
	var body struct {
		Data service.Result `json:"data"`
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Data
}

func counts(t *testing.T, db *gorm.DB) (payments, audits int64) {
	t.Helper()
	require.NoError(t, db.Model(&paymentModel.Payment{}).Count(&payments).Error)
	require.NoError(t, db.Model(&auditModel.AuditLog{}).Where("action = ?", auditModel.ActionImport).Count(&audits).Error)
	return payments, audits
}

func TestImportPaymentsDryRunThenApply(t *testing.T) {
	db := testdb.New(t)
	app := newApp(db, authModel.RoleAdmin)

	// dryRun defaults to true
	resp := upload(t, app, "/api/admin/import/payments", "file", paymentsCSV)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	dry := decode(t, resp)
	assert.True(t, dry.DryRun)
	assert.Equal(t, 2, dry.Processed)
	assert.Equal(t, 1, dry.Created)
	require.Len(t, dry.Errors, 1)
	assert.Equal(t, 3, dry.Errors[0].Row)

	payments, audits := counts(t, db)
	assert.Zero(t, payments)
	assert.Zero(t, audits)

	resp = upload(t, app, "/api/admin/import/payments?dryRun=false", "file", paymentsCSV)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	applied := decode(t, resp)
	assert.False(t, applied.DryRun)
	assert.Equal(t, dry.Created, applied.Created)
	assert.Equal(t, dry.Errors, applied.Errors)

	payments, audits = counts(t, db)
	assert.EqualValues(t, 1, payments)
	assert.EqualValues(t, 1, audits)
}

func TestImportRejectsBadUploads(t *testing.T) {
	db := testdb.New(t)
	app := newApp(db, authModel.RoleAdmin)

	resp := upload(t, app, "/api/admin/import/payments", "", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = upload(t, app, "/api/admin/import/users", "file", "email,first_name\nama@example.com,Ama\n")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "Missing required columns")
}

func TestImportRequiresWriteRole(t *testing.T) {
	db := testdb.New(t)
	app := newApp(db, authModel.RoleViewer)

	resp := upload(t, app, "/api/admin/import/payments?dryRun=false", "file", paymentsCSV)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	payments, _ := counts(t, db)
	assert.Zero(t, payments)
}
