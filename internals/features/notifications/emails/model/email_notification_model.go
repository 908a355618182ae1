package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EmailStatusPending = "pending"
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
)

const (
	EmailTypeRegistrationConfirmation = "registration_confirmation"
	EmailTypePasswordReset            = "password_reset"
	EmailTypeResend                   = "resend"
)

func IsValidEmailStatus(s string) bool {
	return s == EmailStatusPending || s == EmailStatusSent || s == EmailStatusFailed
}

// EmailNotification is written once per send attempt and never deleted.
type EmailNotification struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RegistrationID *uuid.UUID `gorm:"column:registration_id;type:uuid;index" json:"registration_id,omitempty"`
	RecipientEmail string     `gorm:"column:recipient_email;type:varchar(255);not null;index" json:"recipient_email"`
	EmailType      string     `gorm:"column:email_type;type:varchar(50);not null" json:"email_type"`
	Subject        string     `gorm:"column:subject;type:varchar(255);not null" json:"subject"`
	Body           string     `gorm:"column:body;type:text;not null" json:"body"`
	Status         string     `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	ErrorMessage   *string    `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	SentAt         *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (EmailNotification) TableName() string { return "email_notifications" }

func (e *EmailNotification) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
