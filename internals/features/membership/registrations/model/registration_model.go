package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	typeModel "membership_backend/internals/features/membership/membership_types/model"
	paymentModel "membership_backend/internals/features/payment/payments/model"
	userModel "membership_backend/internals/features/users/user/model"
)

/* ===================== Constants ===================== */

const (
	MembershipStatusActive    = "active"
	MembershipStatusInactive  = "inactive"
	MembershipStatusSuspended = "suspended"
	MembershipStatusExpired   = "expired"
)

func IsValidMembershipStatus(s string) bool {
	switch s {
	case MembershipStatusActive, MembershipStatusInactive, MembershipStatusSuspended, MembershipStatusExpired:
		return true
	}
	return false
}

const DocumentTypeProfilePhoto = "profile_photo"

/* ===================== Registration ===================== */

type Registration struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	MembershipTypeID uuid.UUID `gorm:"column:membership_type_id;type:uuid;not null;index" json:"membership_type_id"`
	PaymentID        uuid.UUID `gorm:"column:payment_id;type:uuid;not null;index" json:"payment_id"`
	MembershipID     string    `gorm:"column:membership_id;type:varchar(40);not null;uniqueIndex" json:"membership_id"`

	// snapshot of the payment at registration time
	PaymentReference string     `gorm:"column:payment_reference;type:varchar(120);not null;index" json:"payment_reference"`
	PaymentStatus    string     `gorm:"column:payment_status;type:varchar(20);not null" json:"payment_status"`
	PaymentAmount    float64    `gorm:"column:payment_amount;type:numeric(12,2);not null" json:"payment_amount"`
	PaymentDate      *time.Time `gorm:"column:payment_date" json:"payment_date,omitempty"`

	MembershipStatus string    `gorm:"column:membership_status;type:varchar(20);not null;index" json:"membership_status"`
	MembershipExpiry time.Time `gorm:"column:membership_expiry;type:date;not null;index" json:"membership_expiry"`

	TermsAccepted         bool `gorm:"column:terms_accepted;not null" json:"terms_accepted"`
	CodeOfConductAccepted bool `gorm:"column:code_of_conduct_accepted;not null" json:"code_of_conduct_accepted"`
	DataPrivacyAccepted   bool `gorm:"column:data_privacy_accepted;not null" json:"data_privacy_accepted"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	User           *userModel.User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MembershipType *typeModel.MembershipType `gorm:"foreignKey:MembershipTypeID" json:"membership_type,omitempty"`
	Payment        *paymentModel.Payment     `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	Document       *RegistrationDocument     `gorm:"foreignKey:RegistrationID" json:"document,omitempty"`
}

func (Registration) TableName() string { return "registrations" }

func (r *Registration) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

/* ===================== Document ===================== */

type RegistrationDocument struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RegistrationID uuid.UUID `gorm:"column:registration_id;type:uuid;not null;uniqueIndex" json:"registration_id"`
	DocumentType   string    `gorm:"column:document_type;type:varchar(50);not null" json:"document_type"`
	FileName       string    `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	FilePath       string    `gorm:"column:file_path;type:text;not null" json:"file_path"`
	FileSize       int64     `gorm:"column:file_size;not null" json:"file_size"`
	MimeType       string    `gorm:"column:mime_type;type:varchar(100);not null" json:"mime_type"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RegistrationDocument) TableName() string { return "registration_documents" }

func (d *RegistrationDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

/* ===================== Membership ID sequence ===================== */

// MembershipSequence holds the last issued number per calendar year.
type MembershipSequence struct {
	Year      int   `gorm:"column:year;primaryKey;autoIncrement:false" json:"year"`
	LastValue int64 `gorm:"column:last_value;not null" json:"last_value"`
}

func (MembershipSequence) TableName() string { return "membership_id_sequences" }
