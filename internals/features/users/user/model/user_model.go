package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===================== Constants ===================== */

const (
	GenderMale           = "male"
	GenderFemale         = "female"
	GenderPreferNotToSay = "prefer_not_to_say"
)

const (
	IDTypeGhanaCard     = "ghana_card"
	IDTypePassport      = "passport"
	IDTypeVoterID       = "voter_id"
	IDTypeDriverLicense = "driver_license"
)

const DefaultNationality = "Ghanaian"

/* ===================== Model ===================== */

// User is a member (applicant). Unique on email.
type User struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FirstName        string    `gorm:"column:first_name;type:varchar(100);not null" json:"first_name"`
	MiddleName       *string   `gorm:"column:middle_name;type:varchar(100)" json:"middle_name,omitempty"`
	LastName         string    `gorm:"column:last_name;type:varchar(100);not null" json:"last_name"`
	Email            string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	PhoneNumber      string    `gorm:"column:phone_number;type:varchar(20);not null" json:"phone_number"`
	AlternativePhone *string   `gorm:"column:alternative_phone;type:varchar(20)" json:"alternative_phone,omitempty"`
	DateOfBirth      time.Time `gorm:"column:date_of_birth;type:date;not null" json:"date_of_birth"`
	Gender           string    `gorm:"column:gender;type:varchar(20);not null" json:"gender"`
	Nationality      string    `gorm:"column:nationality;type:varchar(100);not null" json:"nationality"`
	IDType           string    `gorm:"column:id_type;type:varchar(20);not null" json:"id_type"`
	IDNumber         string    `gorm:"column:id_number;type:varchar(50);not null" json:"id_number"`
	StreetAddress    string    `gorm:"column:street_address;type:text;not null" json:"street_address"`
	City             string    `gorm:"column:city;type:varchar(100);not null" json:"city"`
	Region           string    `gorm:"column:region;type:varchar(100);not null" json:"region"`
	DigitalAddress   *string   `gorm:"column:digital_address;type:varchar(50)" json:"digital_address,omitempty"`

	// tagged by ProfessionalKind (membership slug)
	ProfessionalKind string         `gorm:"column:professional_kind;type:varchar(50)" json:"professional_kind,omitempty"`
	ProfessionalInfo datatypes.JSON `gorm:"column:professional_info;type:jsonb" json:"professional_info"`
	EmergencyContact datatypes.JSON `gorm:"column:emergency_contact;type:jsonb" json:"emergency_contact"`
	ProfilePhotoURL  *string        `gorm:"column:profile_photo_url;type:text" json:"profile_photo_url,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if len(u.ProfessionalInfo) == 0 {
		u.ProfessionalInfo = datatypes.JSON("{}")
	}
	if len(u.EmergencyContact) == 0 {
		u.EmergencyContact = datatypes.JSON("{}")
	}
	return nil
}

func (u *User) FullName() string {
	name := u.FirstName
	if u.MiddleName != nil && *u.MiddleName != "" {
		name += " " + *u.MiddleName
	}
	return name + " " + u.LastName
}

// EmergencyContactInfo is the shape stored in users.emergency_contact.
type EmergencyContactInfo struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}
