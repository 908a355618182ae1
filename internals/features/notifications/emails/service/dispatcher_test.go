package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership_backend/internals/databases/testdb"
	emailModel "membership_backend/internals/features/notifications/emails/model"
	authModel "membership_backend/internals/features/users/auth/model"
	helper "membership_backend/internals/helpers"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m)
	return nil
}

func sampleConfirmation() Confirmation {
	return Confirmation{
		MembershipID:   "CAG-2025-000001",
		MembershipType: "Professional Chef",
		Reference:      "PSK_123",
		Amount:         200,
		Currency:       "GHS",
		PaymentStatus:  "success",
		FullName:       "Ama <b>Mensah</b>",
		Email:          "ama@example.com",
		Phone:          "+233201234567",
		DateOfBirth:    "1990-05-01",
		Gender:         "female",
		Nationality:    "Ghanaian",
		IDType:         "ghana_card",
		IDNumber:       "GHA-123456789-0",
		Address:        "12 Oxford St, Accra, Greater Accra",
		EmergencyName:  "Kojo Mensah",
		Professional:   ProfessionalDetails([]byte(`{"current_position":"Head Chef","culinary_specialization":["Pastry","Local"],"years_of_experience":"5","certifications":""}`)),
	}
}

func TestSendRegistrationConfirmation_Sent(t *testing.T) {
	db := testdb.New(t)
	sender := &recordingSender{}
	d := NewDispatcher(db, sender, 60, "support@chefsghana.com")
	regID := uuid.New()

	row, err := d.SendRegistrationConfirmation(context.Background(), regID, sampleConfirmation())
	require.NoError(t, err)
	assert.Equal(t, emailModel.EmailStatusSent, row.Status)
	assert.NotNil(t, row.SentAt)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "ama@example.com", msg.To)
	assert.Equal(t, []string{"support@chefsghana.com"}, msg.Bcc)
	assert.Equal(t, "New Professional Chef registration - CAG-2025-000001", msg.Subject)
	assert.Contains(t, msg.HTML, "GH₵200.00")
	assert.Contains(t, msg.HTML, "Ama &lt;b&gt;Mensah&lt;/b&gt;")
	assert.Contains(t, msg.HTML, "culinary specialization: Pastry, Local")
	assert.NotContains(t, msg.HTML, "certifications")
	assert.NotContains(t, msg.HTML, "Alternate Phone")

	var rows []emailModel.EmailNotification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].RegistrationID)
	assert.Equal(t, regID, *rows[0].RegistrationID)
	assert.Equal(t, emailModel.EmailTypeRegistrationConfirmation, rows[0].EmailType)
}

func TestDispatch_FailureWritesFailedRow(t *testing.T) {
	db := testdb.New(t)
	d := NewDispatcher(db, &recordingSender{err: errors.New("smtp: 421 try later")}, 60, "")

	row, err := d.SendRegistrationConfirmation(context.Background(), uuid.New(), sampleConfirmation())
	require.Error(t, err)
	assert.Equal(t, emailModel.EmailStatusFailed, row.Status)

	var rows []emailModel.EmailNotification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, emailModel.EmailStatusFailed, rows[0].Status)
	require.NotNil(t, rows[0].ErrorMessage)
	assert.Contains(t, *rows[0].ErrorMessage, "421")
	assert.Nil(t, rows[0].SentAt)
}

func TestSendRegistrationConfirmation_RenderFailureWritesFailedRow(t *testing.T) {
	db := testdb.New(t)
	sender := &recordingSender{}
	d := NewDispatcher(db, sender, 60, "support@chefsghana.com")
	d.render = func(Confirmation) (string, error) { return "", errors.New("template: missing field") }
	regID := uuid.New()

	row, err := d.SendRegistrationConfirmation(context.Background(), regID, sampleConfirmation())
	require.Error(t, err)
	require.NotNil(t, row)
	assert.Empty(t, sender.sent)

	var rows []emailModel.EmailNotification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, emailModel.EmailStatusFailed, rows[0].Status)
	assert.Equal(t, emailModel.EmailTypeRegistrationConfirmation, rows[0].EmailType)
	require.NotNil(t, rows[0].RegistrationID)
	assert.Equal(t, regID, *rows[0].RegistrationID)
	require.NotNil(t, rows[0].ErrorMessage)
	assert.Contains(t, *rows[0].ErrorMessage, "render confirmation")
}

func TestResend(t *testing.T) {
	db := testdb.New(t)
	sender := &recordingSender{}
	d := NewDispatcher(db, sender, 60, "")
	regID := uuid.New()

	first, err := d.SendRegistrationConfirmation(context.Background(), regID, sampleConfirmation())
	require.NoError(t, err)

	again, err := d.Resend(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, "[RESEND] "+first.Subject, again.Subject)
	assert.Equal(t, first.Body, again.Body)
	assert.Equal(t, emailModel.EmailTypeResend, again.EmailType)

	// resending a resend does not stack prefixes
	third, err := d.Resend(context.Background(), again.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(third.Subject, "[RESEND]"))

	latest, err := d.ResendLatestForRegistration(context.Background(), regID)
	require.NoError(t, err)
	assert.Equal(t, regID, *latest.RegistrationID)

	var n int64
	require.NoError(t, db.Model(&emailModel.EmailNotification{}).Count(&n).Error)
	assert.EqualValues(t, 4, n)

	_, err = d.Resend(context.Background(), uuid.New())
	ae := helper.AsAppError(err)
	require.NotNil(t, ae)
	assert.Equal(t, 404, ae.Status)

	_, err = d.ResendLatestForRegistration(context.Background(), uuid.New())
	ae = helper.AsAppError(err)
	require.NotNil(t, ae)
	assert.Equal(t, 404, ae.Status)
}

func TestSendPasswordReset(t *testing.T) {
	db := testdb.New(t)
	sender := &recordingSender{}
	d := NewDispatcher(db, sender, 60, "support@chefsghana.com")

	admin := &authModel.AdminUser{Username: "ama", Email: "ama@chefsghana.com"}
	require.NoError(t, d.SendPasswordReset(context.Background(), admin, "https://x.test/admin/reset?token=a&b"))

	require.Len(t, sender.sent, 1)
	assert.Empty(t, sender.sent[0].Bcc)
	assert.Contains(t, sender.sent[0].HTML, "Hello ama")
	assert.Contains(t, sender.sent[0].HTML, "token=a&amp;b")
}

func TestProfessionalDetails(t *testing.T) {
	got := ProfessionalDetails([]byte(`{"years_of_experience":7,"qualifications":[{"institution":"Accra Tech","certificate":"HND","year":"2015"}],"empty":null}`))
	require.Len(t, got, 2)
	assert.Equal(t, Detail{Label: "qualifications", Value: "HND / Accra Tech / 2015"}, got[0])
	assert.Equal(t, Detail{Label: "years of experience", Value: "7"}, got[1])

	assert.Nil(t, ProfessionalDetails(nil))
	assert.Nil(t, ProfessionalDetails([]byte("not json")))
}
