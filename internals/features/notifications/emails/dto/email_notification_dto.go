package dto

import (
	"time"

	"github.com/google/uuid"

	emailModel "membership_backend/internals/features/notifications/emails/model"
)

type EmailNotificationItem struct {
	ID             uuid.UUID  `json:"id"`
	RegistrationID *uuid.UUID `json:"registration_id"`
	RecipientEmail string     `json:"recipient_email"`
	EmailType      string     `json:"email_type"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	SentAt         *time.Time `json:"sent_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func ToEmailNotificationItem(m *emailModel.EmailNotification) EmailNotificationItem {
	return EmailNotificationItem{
		ID:             m.ID,
		RegistrationID: m.RegistrationID,
		RecipientEmail: m.RecipientEmail,
		EmailType:      m.EmailType,
		Subject:        m.Subject,
		Status:         m.Status,
		ErrorMessage:   m.ErrorMessage,
		SentAt:         m.SentAt,
		CreatedAt:      m.CreatedAt,
	}
}

func ToEmailNotificationItems(rows []emailModel.EmailNotification) []EmailNotificationItem {
	out := make([]EmailNotificationItem, 0, len(rows))
	for i := range rows {
		out = append(out, ToEmailNotificationItem(&rows[i]))
	}
	return out
}
