package route_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"membership_backend/internals/databases/testdb"
	typeModel "membership_backend/internals/features/membership/membership_types/model"
	regModel "membership_backend/internals/features/membership/registrations/model"
	"membership_backend/internals/features/membership/registrations/route"
	"membership_backend/internals/features/membership/registrations/service"
	emailModel "membership_backend/internals/features/notifications/emails/model"
	emailService "membership_backend/internals/features/notifications/emails/service"
	auditModel "membership_backend/internals/features/users/audit/model"
	authModel "membership_backend/internals/features/users/auth/model"
	helper "membership_backend/internals/helpers"
	"membership_backend/internals/middlewares"
	"membership_backend/internals/middlewares/auth/authtest"
)

type okSender struct {
	mu    sync.Mutex
	count int
	fail  bool
}

func (s *okSender) Send(context.Context, emailService.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.count++
	return nil
}

type env struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	app    *fiber.App
	db     *gorm.DB
	dir    string
	sender *okSender
	mtype  *typeModel.MembershipType
}

func setup(t *testing.T, role string) *fixture {
	t.Helper()
	db := testdb.New(t)
	dir := t.TempDir()
	photos, err := helper.NewPhotoStore(dir, 5<<20)
	require.NoError(t, err)

	sender := &okSender{}
	d := emailService.NewDispatcher(db, sender, 600, "support@chefsghana.com")
	svc := service.NewRegistrationService(db, photos, d, "CAG", 30)
	limits := middlewares.RateLimits{Counter: middlewares.NewMemoryCounter()}

	app := fiber.New()
	api := app.Group("/api")
	route.RegistrationPublicRoutes(api, db, svc, limits)
	route.RegistrationAdminRoutes(api.Group("/admin", authtest.As(role)), db, d)

	mt := &typeModel.MembershipType{Name: "Student", Slug: "student", Price: 50, IsActive: true, Benefits: datatypes.JSON(`[]`)}
	require.NoError(t, db.Create(mt).Error)
	return &fixture{app: app, db: db, dir: dir, sender: sender, mtype: mt}
}

func formPayload(typeID, email, ref string) string {
	p := map[string]any{
		"membershipTypeId": typeID,
		"membershipSlug":   "student",
		"personal": map[string]any{
			"firstName": "Yaw", "lastName": "Boateng", "dateOfBirth": "2002-08-19",
			"gender": "male", "nationality": "Ghanaian",
		},
		"contact": map[string]any{
			"email": email, "phone": "+233551234567", "streetAddress": "4 Ring Road East",
			"city": "Kumasi", "region": "Ashanti",
		},
		"identification": map[string]any{"idType": "voter_id", "idNumber": "VT12345"},
		"professional": map[string]any{
			"institution_name": "Kumasi Technical University", "program": "Hospitality",
			"expected_graduation": "2026-07", "student_id_number": "KTU-99",
		},
		"emergencyContact": map[string]any{"name": "Efua Boateng", "relationship": "Mother", "phone": "+233201112223"},
		"terms":            map[string]any{"termsAccepted": true, "codeOfConductAccepted": true, "dataPrivacyAccepted": true},
		"payment":          map[string]any{"reference": ref, "amount": 50, "channel": "mobile_money"},
	}
	b, _ := json.Marshal(p)
	return string(b)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for x := 0; x < 40; x++ {
		for y := 0; y < 40; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: 120, B: uint8(y * 6), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func submit(t *testing.T, app *fiber.App, payload string, photo []byte, photoName string) (int, env) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("payload", payload))
	if photo != nil {
		fw, err := w.CreateFormFile("profilePhoto", photoName)
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/registrations", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var e env
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return resp.StatusCode, e
}

func jsonCall(t *testing.T, app *fiber.App, method, path, body string) (int, env) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var e env
	_ = json.Unmarshal(raw, &e)
	return resp.StatusCode, e
}

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSubmitWithPhoto(t *testing.T) {
	f := setup(t, authModel.RoleAdmin)

	status, e := submit(t, f.app, formPayload(f.mtype.ID.String(), "yaw@example.com", "PSK_A"), pngBytes(t), "me.png")
	require.Equal(t, fiber.StatusCreated, status, e.Error)

	var out struct {
		MembershipID   string `json:"membership_id"`
		RegistrationID string `json:"registration_id"`
		EmailSent      bool   `json:"email_sent"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &out))
	assert.True(t, service.IsMembershipID(out.MembershipID))
	assert.True(t, out.EmailSent)

	var doc regModel.RegistrationDocument
	require.NoError(t, f.db.First(&doc, "registration_id = ?", out.RegistrationID).Error)
	assert.Equal(t, regModel.DocumentTypeProfilePhoto, doc.DocumentType)
	assert.Equal(t, "me.png", doc.FileName)
	assert.Equal(t, "image/png", doc.MimeType)
	assert.True(t, strings.HasPrefix(doc.FilePath, "uploads/"))

	files := storedFiles(t, f.dir)
	assert.Len(t, files, 2, "photo and thumbnail")
}

func TestSubmitRejectsNonImage(t *testing.T) {
	f := setup(t, authModel.RoleAdmin)

	status, e := submit(t, f.app, formPayload(f.mtype.ID.String(), "yaw@example.com", "PSK_B"), []byte("%PDF-1.4 not an image"), "cv.png")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, helper.ErrUploadNotAnImage.Error(), e.Error)
	assert.Empty(t, storedFiles(t, f.dir))
}

func TestFailedTransactionRemovesPhoto(t *testing.T) {
	f := setup(t, authModel.RoleAdmin)
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_document", func(tx *gorm.DB) {
		if tx.Statement.Table == "registration_documents" {
			_ = tx.AddError(errors.New("constraint"))
		}
	}))

	status, e := submit(t, f.app, formPayload(f.mtype.ID.String(), "yaw@example.com", "PSK_C"), pngBytes(t), "me.png")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Failed to submit registration", e.Error)
	assert.Empty(t, storedFiles(t, f.dir))

	var n int64
	f.db.Model(&regModel.Registration{}).Count(&n)
	assert.Zero(t, n)
}

func TestSubmitEmailFailureIsDegradedSuccess(t *testing.T) {
	f := setup(t, authModel.RoleAdmin)
	f.sender.fail = true

	status, e := submit(t, f.app, formPayload(f.mtype.ID.String(), "yaw@example.com", "PSK_D"), nil, "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `false`, string(mustField(t, e.Data, "email_sent")))
	assert.JSONEq(t, `"confirmation email could not be delivered"`, string(mustField(t, e.Data, "email_error")))

	var failed int64
	f.db.Model(&emailModel.EmailNotification{}).Where("status = ?", emailModel.EmailStatusFailed).Count(&failed)
	assert.EqualValues(t, 1, failed)
}

func TestReplayReturns200(t *testing.T) {
	f := setup(t, authModel.RoleAdmin)
	payload := formPayload(f.mtype.ID.String(), "yaw@example.com", "PSK_E")

	status, _ := submit(t, f.app, payload, nil, "")
	require.Equal(t, fiber.StatusCreated, status)
	status, e := submit(t, f.app, payload, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `true`, string(mustField(t, e.Data, "replayed")))
}

func TestAdminListPatchResend(t *testing.T) {
	f := setup(t, authModel.RoleAdmin)
	status, e := submit(t, f.app, formPayload(f.mtype.ID.String(), "yaw@example.com", "PSK_F"), nil, "")
	require.Equal(t, fiber.StatusCreated, status)
	var regID string
	require.NoError(t, json.Unmarshal(mustField(t, e.Data, "registration_id"), &regID))

	status, e = jsonCall(t, f.app, "GET", "/api/admin/registrations?q=BOATENG&status=active", "")
	require.Equal(t, fiber.StatusOK, status)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(e.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Student", items[0]["membership_type"])
	assert.Equal(t, "yaw@example.com", items[0]["email"])

	status, _ = jsonCall(t, f.app, "GET", "/api/admin/registrations?status=bogus", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, e = jsonCall(t, f.app, "PATCH", "/api/admin/registrations/"+regID, `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "No updates", e.Error)

	status, e = jsonCall(t, f.app, "PATCH", "/api/admin/registrations/"+regID, `{"membership_status":"suspended"}`)
	require.Equal(t, fiber.StatusOK, status, e.Error)
	var reg regModel.Registration
	require.NoError(t, f.db.First(&reg, "id = ?", regID).Error)
	assert.Equal(t, regModel.MembershipStatusSuspended, reg.MembershipStatus)

	status, _ = jsonCall(t, f.app, "PATCH", "/api/admin/registrations/"+regID, `{"membership_expiry":"31-12-2030"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = jsonCall(t, f.app, "POST", "/api/admin/registrations/"+regID+"/resend-email", "")
	require.Equal(t, fiber.StatusOK, status)

	var resent emailModel.EmailNotification
	require.NoError(t, f.db.Where("email_type = ?", emailModel.EmailTypeResend).First(&resent).Error)
	assert.True(t, strings.HasPrefix(resent.Subject, "[RESEND] "))

	var audits int64
	f.db.Model(&auditModel.AuditLog{}).Where("entity_type = ?", "registration").Count(&audits)
	assert.EqualValues(t, 2, audits)

	status, _ = jsonCall(t, f.app, "GET", "/api/admin/registrations/"+regID, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestViewerCannotPatch(t *testing.T) {
	f := setup(t, authModel.RoleViewer)
	status, _ := jsonCall(t, f.app, "PATCH", "/api/admin/registrations/00000000-0000-0000-0000-000000000001", `{"membership_status":"expired"}`)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	v, ok := m[key]
	require.True(t, ok, "missing %s in %s", key, string(raw))
	return v
}
