package route_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"membership_backend/internals/databases/testdb"
	typeModel "membership_backend/internals/features/membership/membership_types/model"
	regModel "membership_backend/internals/features/membership/registrations/model"
	"membership_backend/internals/features/payment/payments/dto"
	"membership_backend/internals/features/payment/payments/model"
	"membership_backend/internals/features/payment/payments/route"
	"membership_backend/internals/features/payment/payments/service"
	authModel "membership_backend/internals/features/users/auth/model"
	userModel "membership_backend/internals/features/users/user/model"
	"membership_backend/internals/metrics"
	"membership_backend/internals/middlewares"
	"membership_backend/internals/middlewares/auth/authtest"
)

const secret = "sk_test_123"

type envelope struct {
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
	Received   bool            `json:"received"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func newApp(db *gorm.DB, secretKey string) *fiber.App {
	app := fiber.New()
	api := app.Group("/api")
	limits := middlewares.RateLimits{Counter: middlewares.NewMemoryCounter()}
	route.PaymentWebhookRoutes(api, db, service.NewWebhookService(db, secretKey), limits)
	route.PaymentAdminRoutes(api.Group("/admin", authtest.As(authModel.RoleViewer)), db)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func webhook(t *testing.T, app *fiber.App, body string) (int, envelope) {
	t.Helper()
	return send(t, app, "POST", "/api/webhook/paystack", body,
		map[string]string{"x-paystack-signature": service.Signature(secret, []byte(body))})
}

func seedPaidRegistration(t *testing.T, db *gorm.DB, ref string) (*model.Payment, *regModel.Registration) {
	t.Helper()
	u := &userModel.User{
		FirstName: "Esi", LastName: "Owusu", Email: "esi@example.com", PhoneNumber: "+233241112223",
		DateOfBirth: time.Date(1992, 3, 3, 0, 0, 0, 0, time.UTC), Gender: userModel.GenderFemale,
		Nationality: "Ghanaian", IDType: userModel.IDTypePassport, IDNumber: "P1234567",
		StreetAddress: "1 Castle Road", City: "Accra", Region: "Greater Accra",
	}
	require.NoError(t, db.Create(u).Error)
	mt := &typeModel.MembershipType{Name: "Professional", Slug: "professional", Price: 500, IsActive: true}
	require.NoError(t, db.Create(mt).Error)
	email := "esi@example.com"
	p := &model.Payment{Reference: ref, Status: model.PaymentStatusPending, Amount: 500, CustomerEmail: &email}
	require.NoError(t, db.Create(p).Error)
	r := &regModel.Registration{
		UserID: u.ID, MembershipTypeID: mt.ID, PaymentID: p.ID, MembershipID: "CAG-2025-000001",
		PaymentReference: ref, PaymentStatus: p.Status, PaymentAmount: p.Amount,
		MembershipStatus: regModel.MembershipStatusActive, MembershipExpiry: time.Now().AddDate(1, 0, 0),
		TermsAccepted: true, CodeOfConductAccepted: true, DataPrivacyAccepted: true,
	}
	require.NoError(t, db.Create(r).Error)
	return p, r
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := testdb.New(t)
	body := `{"event":"charge.success","data":{"reference":"ref-x","amount":50000}}`
	before := testutil.ToFloat64(metrics.WebhookEvents.WithLabelValues("unknown", service.ResultRejected))

	status, _ := send(t, newApp(db, secret), "POST", "/api/webhook/paystack", body,
		map[string]string{"x-paystack-signature": service.Signature("wrong", []byte(body))})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = send(t, newApp(db, secret), "POST", "/api/webhook/paystack", body, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	// no secret configured: nothing verifies
	status, _ = send(t, newApp(db, ""), "POST", "/api/webhook/paystack", body,
		map[string]string{"x-paystack-signature": service.Signature("", []byte(body))})
	assert.Equal(t, fiber.StatusBadRequest, status)

	var n int64
	require.NoError(t, db.Model(&model.Payment{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Equal(t, before+3, testutil.ToFloat64(metrics.WebhookEvents.WithLabelValues("unknown", service.ResultRejected)))
}

func TestWebhookChargeSuccessMirrorsRegistration(t *testing.T) {
	db := testdb.New(t)
	p, r := seedPaidRegistration(t, db, "ref-001")
	app := newApp(db, secret)

	status, env := webhook(t, app, `{"event":"charge.success","data":{"reference":"ref-001","amount":99900,
		"currency":"GHS","channel":"mobile_money","paid_at":"2025-04-01T10:15:00.000Z",
		"customer":{"email":"esi@example.com"}}}`)
	require.Equal(t, fiber.StatusOK, status, env.Error)
	assert.True(t, env.Received)

	var got model.Payment
	require.NoError(t, db.First(&got, "id = ?", p.ID).Error)
	assert.Equal(t, model.PaymentStatusSuccess, got.Status)
	assert.Equal(t, 500.0, got.Amount)
	require.NotNil(t, got.Channel)
	assert.Equal(t, "mobile_money", *got.Channel)
	require.NotNil(t, got.PaidAt)
	assert.True(t, got.PaidAt.Equal(time.Date(2025, 4, 1, 10, 15, 0, 0, time.UTC)))

	var reg regModel.Registration
	require.NoError(t, db.First(&reg, "id = ?", r.ID).Error)
	assert.Equal(t, model.PaymentStatusSuccess, reg.PaymentStatus)

	status, _ = webhook(t, app, `{"event":"charge.failed","data":{"reference":"ref-001"}}`)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, db.First(&reg, "id = ?", r.ID).Error)
	assert.Equal(t, model.PaymentStatusFailed, reg.PaymentStatus)
}

func TestWebhookUnknownReferenceCreatesPayment(t *testing.T) {
	db := testdb.New(t)
	app := newApp(db, secret)

	status, _ := webhook(t, app, `{"event":"charge.success","data":{"reference":"ref-new","amount":25050,
		"currency":"ghs","customer":{"email":"Kojo@Example.com"},"metadata":{"source":"pos"}}}`)
	require.Equal(t, fiber.StatusOK, status)

	var p model.Payment
	require.NoError(t, db.First(&p, "reference = ?", "ref-new").Error)
	assert.Equal(t, model.GatewayPaystack, p.Gateway)
	assert.Equal(t, 250.5, p.Amount)
	assert.Equal(t, "GHS", p.Currency)
	require.NotNil(t, p.CustomerEmail)
	assert.Equal(t, "kojo@example.com", *p.CustomerEmail)
	assert.JSONEq(t, `{"source":"pos"}`, string(p.Metadata))
	assert.NotNil(t, p.PaidAt)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	db := testdb.New(t)
	status, env := webhook(t, newApp(db, secret), `{"event":"transfer.success","data":{"reference":"ref-t"}}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Received)

	var n int64
	require.NoError(t, db.Model(&model.Payment{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAdminListAndDetail(t *testing.T) {
	db := testdb.New(t)
	p, _ := seedPaidRegistration(t, db, "ref-001")
	require.NoError(t, db.Create(&model.Payment{Reference: "walk-in-7", Gateway: model.GatewayManual,
		Status: model.PaymentStatusSuccess, Amount: 100}).Error)
	app := newApp(db, secret)

	status, env := send(t, app, "GET", "/api/admin/payments?q=ESI@", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, env.Pagination.Total)

	status, env = send(t, app, "GET", "/api/admin/payments?status=success", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, env.Pagination.Total)

	status, _ = send(t, app, "GET", "/api/admin/payments?status=paid", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env = send(t, app, "GET", "/api/admin/payments/"+p.ID.String(), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var d dto.PaymentDetail
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "ref-001", d.Payment.Reference)
	require.NotNil(t, d.Registration)
	assert.Equal(t, "CAG-2025-000001", d.Registration.MembershipID)
	assert.Equal(t, "Esi Owusu", d.Registration.MemberName)
}
