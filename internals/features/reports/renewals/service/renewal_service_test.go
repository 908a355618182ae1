package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"membership_backend/internals/databases/testdb"
	typeModel "membership_backend/internals/features/membership/membership_types/model"
	regModel "membership_backend/internals/features/membership/registrations/model"
	paymentModel "membership_backend/internals/features/payment/payments/model"
	auditModel "membership_backend/internals/features/users/audit/model"
	userModel "membership_backend/internals/features/users/user/model"
	helper "membership_backend/internals/helpers"
)

var now = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	db  *gorm.DB
	mt  *typeModel.MembershipType
	seq int
}

func newFixture(t *testing.T) *fixture {
	db := testdb.New(t)
	mt := &typeModel.MembershipType{Name: "Professional", Slug: "professional", Price: 500, IsActive: true}
	require.NoError(t, db.Create(mt).Error)
	return &fixture{db: db, mt: mt}
}

// add creates a member with one registration expiring daysFromNow days after now.
func (f *fixture) add(t *testing.T, first, status string, daysFromNow int) *regModel.Registration {
	t.Helper()
	f.seq++
	u := &userModel.User{
		FirstName: first, LastName: "Asante", Email: fmt.Sprintf("%s@example.com", first),
		PhoneNumber: "+233240000000", DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender: userModel.GenderMale, Nationality: "Ghanaian", IDType: userModel.IDTypeGhanaCard,
		IDNumber: fmt.Sprintf("GHA-%09d", f.seq), StreetAddress: "3 High Street", City: "Tema", Region: "Greater Accra",
	}
	require.NoError(t, f.db.Create(u).Error)
	p := &paymentModel.Payment{Reference: fmt.Sprintf("ref-%d", f.seq), Status: paymentModel.PaymentStatusSuccess, Amount: 500}
	require.NoError(t, f.db.Create(p).Error)
	r := &regModel.Registration{
		UserID: u.ID, MembershipTypeID: f.mt.ID, PaymentID: p.ID,
		MembershipID:     fmt.Sprintf("CAG-2024-%06d", f.seq),
		PaymentReference: p.Reference, PaymentStatus: p.Status, PaymentAmount: p.Amount,
		MembershipStatus: status,
		MembershipExpiry: helper.DateOnly(now).AddDate(0, 0, daysFromNow),
		TermsAccepted:    true, CodeOfConductAccepted: true, DataPrivacyAccepted: true,
	}
	require.NoError(t, f.db.Create(r).Error)
	return r
}

func page(size int) helper.Paging { return helper.Paging{Page: 1, PageSize: size} }

func TestListDueWithinWindow(t *testing.T) {
	f := newFixture(t)
	f.add(t, "kofi", regModel.MembershipStatusActive, 20)
	f.add(t, "ama", regModel.MembershipStatusActive, 0)
	f.add(t, "yaw", regModel.MembershipStatusActive, 45)
	f.add(t, "esi", regModel.MembershipStatusSuspended, 5)
	f.add(t, "kojo", regModel.MembershipStatusActive, -3)

	rows, total, err := ListRenewals(context.Background(), f.db, ListFilter{Status: StatusDue, WindowDays: 30, Paging: page(20)}, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "ama", rows[0].FirstName)
	assert.Equal(t, 0, rows[0].DaysRemaining)
	assert.Equal(t, "kofi", rows[1].FirstName)
	assert.Equal(t, 20, rows[1].DaysRemaining)
	assert.Equal(t, "Professional", rows[1].MembershipType)

	rows, total, err = ListRenewals(context.Background(), f.db, ListFilter{Status: StatusDue, WindowDays: 60, Q: "YAW", Paging: page(20)}, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "yaw@example.com", rows[0].Email)
}

func TestListOverdue(t *testing.T) {
	f := newFixture(t)
	f.add(t, "kojo", regModel.MembershipStatusActive, -3)
	f.add(t, "abena", regModel.MembershipStatusActive, -40)
	f.add(t, "kofi", regModel.MembershipStatusActive, 2)

	rows, total, err := ListRenewals(context.Background(), f.db, ListFilter{Status: StatusOverdue, Paging: page(1)}, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "abena", rows[0].FirstName)
	assert.Equal(t, -40, rows[0].DaysRemaining)
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t)
	gone := f.add(t, "kojo", regModel.MembershipStatusActive, -1)
	today := f.add(t, "ama", regModel.MembershipStatusActive, 0)
	suspended := f.add(t, "esi", regModel.MembershipStatusSuspended, -10)

	res, err := SweepExpired(context.Background(), f.db, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Expired)

	status := func(r *regModel.Registration) string {
		var got regModel.Registration
		require.NoError(t, f.db.First(&got, "id = ?", r.ID).Error)
		return got.MembershipStatus
	}
	assert.Equal(t, regModel.MembershipStatusExpired, status(gone))
	assert.Equal(t, regModel.MembershipStatusActive, status(today))
	assert.Equal(t, regModel.MembershipStatusSuspended, status(suspended))

	// a second sweep finds nothing but is still recorded
	res, err = SweepExpired(context.Background(), f.db, now)
	require.NoError(t, err)
	assert.Zero(t, res.Expired)

	var audits int64
	require.NoError(t, f.db.Model(&auditModel.AuditLog{}).Where("action = ?", auditModel.ActionExpirySweep).Count(&audits).Error)
	assert.EqualValues(t, 2, audits)
}
