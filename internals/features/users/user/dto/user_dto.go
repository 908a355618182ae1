package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	regModel "membership_backend/internals/features/membership/registrations/model"
	uModel "membership_backend/internals/features/users/user/model"
	helper "membership_backend/internals/helpers"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

type EmergencyContactRequest struct {
	Name         string `json:"name" validate:"required,min=2"`
	Relationship string `json:"relationship" validate:"omitempty,min=2"`
	Phone        string `json:"phone" validate:"required,gh_phone"`
}

// CreateUserRequest is the admin-side create (no registration attached).
type CreateUserRequest struct {
	FirstName        string                  `json:"first_name" validate:"required,min=2,max=100"`
	MiddleName       string                  `json:"middle_name" validate:"omitempty,max=100"`
	LastName         string                  `json:"last_name" validate:"required,min=2,max=100"`
	Email            string                  `json:"email" validate:"required,email,max=255"`
	PhoneNumber      string                  `json:"phone_number" validate:"required,gh_phone"`
	AlternativePhone string                  `json:"alternative_phone" validate:"omitempty,gh_phone"`
	DateOfBirth      string                  `json:"date_of_birth" validate:"required,ymd"`
	Gender           string                  `json:"gender" validate:"required,oneof=male female prefer_not_to_say"`
	Nationality      string                  `json:"nationality" validate:"omitempty,min=2,max=100"`
	IDType           string                  `json:"id_type" validate:"required,oneof=ghana_card passport voter_id driver_license"`
	IDNumber         string                  `json:"id_number" validate:"required,min=5,max=50"`
	StreetAddress    string                  `json:"street_address" validate:"required,min=5"`
	City             string                  `json:"city" validate:"required,min=2,max=100"`
	Region           string                  `json:"region" validate:"required,min=2,max=100"`
	DigitalAddress   string                  `json:"digital_address" validate:"omitempty,max=50"`
	EmergencyContact EmergencyContactRequest `json:"emergency_contact"`
	ProfessionalInfo json.RawMessage         `json:"professional_info" validate:"-"`
}

func (r *CreateUserRequest) Normalize() {
	for _, s := range []*string{
		&r.FirstName, &r.MiddleName, &r.LastName, &r.Email, &r.PhoneNumber, &r.AlternativePhone,
		&r.DateOfBirth, &r.Gender, &r.Nationality, &r.IDType, &r.IDNumber,
		&r.StreetAddress, &r.City, &r.Region, &r.DigitalAddress,
	} {
		*s = strings.TrimSpace(*s)
	}
	r.Email = strings.ToLower(r.Email)
	if r.Nationality == "" {
		r.Nationality = uModel.DefaultNationality
	}
}

func (r *CreateUserRequest) ToModel() *uModel.User {
	dob, _ := helper.ParseDate(r.DateOfBirth)
	ec, _ := json.Marshal(uModel.EmergencyContactInfo{
		Name:         strings.TrimSpace(r.EmergencyContact.Name),
		Relationship: strings.TrimSpace(r.EmergencyContact.Relationship),
		Phone:        strings.TrimSpace(r.EmergencyContact.Phone),
	})
	m := &uModel.User{
		FirstName:        r.FirstName,
		MiddleName:       helper.StrPtr(r.MiddleName),
		LastName:         r.LastName,
		Email:            r.Email,
		PhoneNumber:      r.PhoneNumber,
		AlternativePhone: helper.StrPtr(r.AlternativePhone),
		DateOfBirth:      dob,
		Gender:           r.Gender,
		Nationality:      r.Nationality,
		IDType:           r.IDType,
		IDNumber:         r.IDNumber,
		StreetAddress:    r.StreetAddress,
		City:             r.City,
		Region:           r.Region,
		DigitalAddress:   helper.StrPtr(r.DigitalAddress),
		EmergencyContact: datatypes.JSON(ec),
	}
	if len(r.ProfessionalInfo) > 0 && string(r.ProfessionalInfo) != "null" {
		m.ProfessionalInfo = datatypes.JSON(r.ProfessionalInfo)
	}
	return m
}

// UpdateUserRequest is tri-state per field: absent = keep, null = clear (optional fields only), value = set.
type UpdateUserRequest struct {
	FirstName        helper.PatchField[string]                  `json:"first_name"`
	MiddleName       helper.PatchField[string]                  `json:"middle_name"`
	LastName         helper.PatchField[string]                  `json:"last_name"`
	Email            helper.PatchField[string]                  `json:"email"`
	PhoneNumber      helper.PatchField[string]                  `json:"phone_number"`
	AlternativePhone helper.PatchField[string]                  `json:"alternative_phone"`
	DateOfBirth      helper.PatchField[string]                  `json:"date_of_birth"`
	Gender           helper.PatchField[string]                  `json:"gender"`
	Nationality      helper.PatchField[string]                  `json:"nationality"`
	IDType           helper.PatchField[string]                  `json:"id_type"`
	IDNumber         helper.PatchField[string]                  `json:"id_number"`
	StreetAddress    helper.PatchField[string]                  `json:"street_address"`
	City             helper.PatchField[string]                  `json:"city"`
	Region           helper.PatchField[string]                  `json:"region"`
	DigitalAddress   helper.PatchField[string]                  `json:"digital_address"`
	EmergencyContact helper.PatchField[EmergencyContactRequest] `json:"emergency_contact"`
	ProfessionalInfo helper.PatchField[json.RawMessage]         `json:"professional_info"`
}

/* =======================================================
   RESPONSE DTOs
   ======================================================= */

type UserListItem struct {
	ID               uuid.UUID `json:"id"`
	FirstName        string    `json:"first_name"`
	MiddleName       *string   `json:"middle_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	PhoneNumber      string    `json:"phone_number"`
	City             string    `json:"city"`
	Region           string    `json:"region"`
	CreatedAt        time.Time `json:"created_at"`
	MembershipStatus *string   `json:"membership_status"`
	MembershipExpiry *string   `json:"membership_expiry"`
	MembershipID     *string   `json:"membership_id"`
}

type UserRegistration struct {
	ID               uuid.UUID `json:"id"`
	MembershipID     string    `json:"membership_id"`
	MembershipType   string    `json:"membership_type"`
	MembershipStatus string    `json:"membership_status"`
	MembershipExpiry string    `json:"membership_expiry"`
	PaymentReference string    `json:"payment_reference"`
	PaymentStatus    string    `json:"payment_status"`
	PaymentAmount    float64   `json:"payment_amount"`
	CreatedAt        time.Time `json:"created_at"`
}

type UserDetail struct {
	User          *uModel.User       `json:"user"`
	Registrations []UserRegistration `json:"registrations"`
}

/* =======================================================
   CONVERTERS
   ======================================================= */

// ToUserListItem attaches the latest registration, if any.
func ToUserListItem(u *uModel.User, latest *regModel.Registration) UserListItem {
	item := UserListItem{
		ID:          u.ID,
		FirstName:   u.FirstName,
		MiddleName:  u.MiddleName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		City:        u.City,
		Region:      u.Region,
		CreatedAt:   u.CreatedAt,
	}
	if latest != nil {
		status := latest.MembershipStatus
		expiry := helper.FormatDate(latest.MembershipExpiry)
		mid := latest.MembershipID
		item.MembershipStatus = &status
		item.MembershipExpiry = &expiry
		item.MembershipID = &mid
	}
	return item
}

func ToUserRegistration(r *regModel.Registration) UserRegistration {
	out := UserRegistration{
		ID:               r.ID,
		MembershipID:     r.MembershipID,
		MembershipStatus: r.MembershipStatus,
		MembershipExpiry: helper.FormatDate(r.MembershipExpiry),
		PaymentReference: r.PaymentReference,
		PaymentStatus:    r.PaymentStatus,
		PaymentAmount:    r.PaymentAmount,
		CreatedAt:        r.CreatedAt,
	}
	if r.MembershipType != nil {
		out.MembershipType = r.MembershipType.Name
	}
	return out
}
