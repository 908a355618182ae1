package service

import (
	"bytes"
	"context"
	"encoding/csv"
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
	userModel "membership_backend/internals/features/users/user/model"
)

func day(d, h int) time.Time { return time.Date(2025, 3, d, h, 0, 0, 0, time.UTC) }

func seedPayment(t *testing.T, db *gorm.DB, ref string, created time.Time, paid *time.Time) *paymentModel.Payment {
	t.Helper()
	p := &paymentModel.Payment{
		Reference: ref, Status: paymentModel.PaymentStatusSuccess, Amount: 150.5,
		PaidAt: paid, CreatedAt: created, UpdatedAt: created,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func readCSV(t *testing.T, b *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(b).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestPaymentsExportFiltersAndOrders(t *testing.T) {
	db := testdb.New(t)
	paid := func(d int) *time.Time { v := day(d, 12); return &v }

	// effective date is paid_at when set, else created_at
	seedPayment(t, db, "ref-early", day(1, 9), nil)
	seedPayment(t, db, "ref-a", day(2, 9), paid(5))
	seedPayment(t, db, "ref-b", day(4, 9), nil)
	seedPayment(t, db, "ref-c", day(3, 9), paid(10))
	seedPayment(t, db, "ref-late", day(9, 9), paid(11))
	seedPayment(t, db, "ref-d", day(6, 23), nil)

	r, ae := ParseRange("2025-03-02", "2025-03-10")
	require.Nil(t, ae)

	var buf bytes.Buffer
	require.NoError(t, WritePaymentsCSV(context.Background(), db, &buf, r, 2))
	rows := readCSV(t, &buf)

	require.Equal(t, PaymentHeader, rows[0])
	var refs []string
	for _, row := range rows[1:] {
		refs = append(refs, row[1])
	}
	assert.Equal(t, []string{"ref-c", "ref-d", "ref-a", "ref-b"}, refs)
	assert.Equal(t, "150.50", rows[1][4])
	assert.Equal(t, "2025-03-10T12:00:00Z", rows[1][7])
}

func TestPaymentsExportIncludesMembershipID(t *testing.T) {
	db := testdb.New(t)
	u := seedUser(t, db, "ama@example.com", day(1, 8))
	mt := &typeModel.MembershipType{Name: "Student", Slug: "student", Price: 50, IsActive: true}
	require.NoError(t, db.Create(mt).Error)
	p := seedPayment(t, db, "ref-1", day(2, 8), nil)
	seedPayment(t, db, "ref-2", day(1, 8), nil)
	require.NoError(t, db.Create(&regModel.Registration{
		UserID: u.ID, MembershipTypeID: mt.ID, PaymentID: p.ID, MembershipID: "CAG-2025-000009",
		PaymentReference: p.Reference, PaymentStatus: p.Status, PaymentAmount: p.Amount,
		MembershipStatus: regModel.MembershipStatusActive, MembershipExpiry: day(2, 0).AddDate(1, 0, 0),
	}).Error)

	var buf bytes.Buffer
	require.NoError(t, WritePaymentsCSV(context.Background(), db, &buf, DateRange{}, 0))
	rows := readCSV(t, &buf)
	require.Len(t, rows, 3)
	assert.Equal(t, "CAG-2025-000009", rows[1][10])
	assert.Equal(t, "", rows[2][10])
}

func seedUser(t *testing.T, db *gorm.DB, email string, created time.Time) *userModel.User {
	t.Helper()
	u := &userModel.User{
		FirstName: "Ama", LastName: "Owusu, Jnr", Email: email, PhoneNumber: "+233241234567",
		DateOfBirth: time.Date(1991, 7, 9, 0, 0, 0, 0, time.UTC), Gender: userModel.GenderFemale,
		Nationality: "Ghanaian", IDType: userModel.IDTypeGhanaCard, IDNumber: "GHA-" + email,
		StreetAddress: `12 "Palm" Avenue`, City: "Accra", Region: "Greater Accra",
		CreatedAt: created, UpdatedAt: created,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestUsersExport(t *testing.T) {
	db := testdb.New(t)
	for i := 1; i <= 5; i++ {
		seedUser(t, db, fmt.Sprintf("m%d@example.com", i), day(i, 10))
	}

	r, ae := ParseRange("2025-03-02", "2025-03-04")
	require.Nil(t, ae)
	var buf bytes.Buffer
	require.NoError(t, WriteUsersCSV(context.Background(), db, &buf, r, 2))
	rows := readCSV(t, &buf)

	require.Equal(t, UserHeader, rows[0])
	require.Len(t, rows, 4)
	assert.Equal(t, "m2@example.com", rows[1][4])
	assert.Equal(t, "m4@example.com", rows[3][4])
	// quoted fields survive the round trip
	assert.Equal(t, "Owusu, Jnr", rows[1][3])
	assert.Equal(t, `12 "Palm" Avenue`, rows[1][12])
	assert.Equal(t, "1991-07-09", rows[1][7])
	assert.Equal(t, "", rows[1][17])
}

func TestParseRange(t *testing.T) {
	_, ae := ParseRange("2025-13-01", "")
	assert.NotNil(t, ae)
	_, ae = ParseRange("2025-03-05", "2025-03-01")
	assert.NotNil(t, ae)

	r, ae := ParseRange("", "2025-03-01")
	require.Nil(t, ae)
	assert.Nil(t, r.Start)
	assert.Equal(t, time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC), *r.End)
}
