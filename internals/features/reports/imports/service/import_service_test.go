package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"membership_backend/internals/databases/testdb"
	paymentModel "membership_backend/internals/features/payment/payments/model"
	userModel "membership_backend/internals/features/users/user/model"
	helper "membership_backend/internals/helpers"
)

const userHeader = "first_name,last_name,email,phone_number,date_of_birth,gender,id_type,id_number," +
	"street_address,city,region,emergency_contact_name,emergency_contact_phone,emergency_contact_relationship\n"

const usersCSV = userHeader +
	"Ama,Mensah,ama@example.com,+233241234567,1990-05-01,Female,ghana_card,GHA-111111111,\"12 Ring Road, East\",Accra,Greater Accra,Kofi Mensah,+233201234567,Brother\n" +
	"Kwame,Boateng,KWAME@example.com,+233249876543,1985-02-11,male,passport,P9876543,4 Oxford Street,Accra,Greater Accra,Efua Boateng,+233207654321,Wife\n" +
	"Yaw,Darko,yaw@example.com,0241234567,1992-09-09,male,passport,P1111111,7 Liberation Rd,Accra,Greater Accra,Akua Darko,+233201111111,Mother\n" +
	"Ama,Mensah,ama@example.com,+233241234567,1990-05-01,female,ghana_card,GHA-111111111,9 Harper Road,Kumasi,Ashanti,Kofi Mensah,+233201234567,Brother\n"

func seedKwame(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&userModel.User{
		FirstName: "Kwame", LastName: "Old", Email: "kwame@example.com", PhoneNumber: "+233240000000",
		DateOfBirth: time.Date(1985, 2, 11, 0, 0, 0, 0, time.UTC), Gender: userModel.GenderMale,
		Nationality: "Ghanaian", IDType: userModel.IDTypePassport, IDNumber: "P9876543",
		StreetAddress: "Old address", City: "Tema", Region: "Greater Accra",
	}).Error)
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&userModel.User{}).Count(&n).Error)
	return n
}

func TestImportUsersDryRunMatchesRealRun(t *testing.T) {
	db := testdb.New(t)
	seedKwame(t, db)
	im := NewImporter(db, 0, 2)

	dry, err := im.ImportUsers(context.Background(), strings.NewReader(usersCSV), true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Equal(t, 4, dry.Processed)
	assert.Equal(t, 1, dry.Created)
	assert.Equal(t, 2, dry.Updated)
	require.Len(t, dry.Errors, 1)
	assert.Equal(t, 4, dry.Errors[0].Row)
	assert.Contains(t, dry.Errors[0].Error, "phone_number")
	assert.EqualValues(t, 1, countUsers(t, db))

	applied, err := im.ImportUsers(context.Background(), strings.NewReader(usersCSV), false)
	require.NoError(t, err)
	assert.False(t, applied.DryRun)
	assert.Equal(t, dry.Processed, applied.Processed)
	assert.Equal(t, dry.Created, applied.Created)
	assert.Equal(t, dry.Updated, applied.Updated)
	assert.Equal(t, dry.Errors, applied.Errors)

	assert.EqualValues(t, 2, countUsers(t, db))
	var ama userModel.User
	require.NoError(t, db.First(&ama, "email = ?", "ama@example.com").Error)
	assert.Equal(t, "Kumasi", ama.City)
	assert.Equal(t, userModel.GenderFemale, ama.Gender)
	assert.Equal(t, "Ghanaian", ama.Nationality)
	assert.JSONEq(t, `{"name":"Kofi Mensah","relationship":"Brother","phone":"+233201234567"}`, string(ama.EmergencyContact))

	var kwame userModel.User
	require.NoError(t, db.First(&kwame, "email = ?", "kwame@example.com").Error)
	assert.Equal(t, "Boateng", kwame.LastName)
}

func TestImportUsersMissingColumns(t *testing.T) {
	db := testdb.New(t)
	_, err := NewImporter(db, 0, 0).ImportUsers(context.Background(),
		strings.NewReader("first_name,last_name,email\nAma,Mensah,ama@example.com\n"), true)
	require.Error(t, err)
	ae := helper.AsAppError(err)
	require.NotNil(t, ae)
	assert.Equal(t, 400, ae.Status)
	assert.Contains(t, ae.Message, "phone_number")
	assert.Contains(t, ae.Message, "emergency_contact_phone")
}

func TestImportRowCap(t *testing.T) {
	db := testdb.New(t)
	csv := "reference,status,amount,currency,customer_email\n" +
		"r1,success,10,GHS,a@example.com\n" +
		"r2,success,10,GHS,b@example.com\n" +
		"r3,success,10,GHS,c@example.com\n"
	res, err := NewImporter(db, 2, 0).ImportPayments(context.Background(), strings.NewReader(csv), false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 2, res.Created)

	var n int64
	require.NoError(t, db.Model(&paymentModel.Payment{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestImportPayments(t *testing.T) {
	db := testdb.New(t)
	require.NoError(t, db.Create(&paymentModel.Payment{
		Reference: "PSK-1", Gateway: paymentModel.GatewayPaystack, Status: paymentModel.PaymentStatusPending, Amount: 500,
	}).Error)

	csv := "Reference,Status,Amount,Currency,Customer_Email,Paid_At,Channel\n" +
		"PSK-1,success,500,GHS,ama@example.com,2025-02-01T09:00:00Z,card\n" +
		"CASH-7,completed,250.75,,Kojo@Example.com,2025-02-03,\n" +
		"CASH-8,paid,100,GHS,x@example.com,,\n" +
		"CASH-9,success,-5,GHS,x@example.com,,\n"

	im := NewImporter(db, 0, 0)
	dry, err := im.ImportPayments(context.Background(), strings.NewReader(csv), true)
	require.NoError(t, err)
	applied, err := im.ImportPayments(context.Background(), strings.NewReader(csv), false)
	require.NoError(t, err)

	for _, res := range []*Result{dry, applied} {
		assert.Equal(t, 4, res.Processed)
		assert.Equal(t, 1, res.Created)
		assert.Equal(t, 1, res.Updated)
		require.Len(t, res.Errors, 2)
		assert.Equal(t, 4, res.Errors[0].Row)
		assert.Equal(t, 5, res.Errors[1].Row)
	}

	var p1 paymentModel.Payment
	require.NoError(t, db.First(&p1, "reference = ?", "PSK-1").Error)
	assert.Equal(t, paymentModel.PaymentStatusSuccess, p1.Status)
	assert.Equal(t, paymentModel.GatewayPaystack, p1.Gateway)
	require.NotNil(t, p1.PaidAt)
	assert.True(t, p1.PaidAt.Equal(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)))

	var cash paymentModel.Payment
	require.NoError(t, db.First(&cash, "reference = ?", "CASH-7").Error)
	assert.Equal(t, paymentModel.GatewayManual, cash.Gateway)
	assert.Equal(t, 250.75, cash.Amount)
	assert.Equal(t, "GHS", cash.Currency)
	assert.Equal(t, "kojo@example.com", *cash.CustomerEmail)
	assert.Nil(t, cash.Channel)
	assert.JSONEq(t, `{"import":true}`, string(cash.Metadata))
}
