package dto

import (
	"time"

	"github.com/google/uuid"

	"membership_backend/internals/features/membership/registrations/model"
	helper "membership_backend/internals/helpers"
)

// ==================== Response DTO ====================

// SubmitResponse is returned by the public form endpoint.
type SubmitResponse struct {
	MembershipID   string    `json:"membership_id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	Replayed       bool      `json:"replayed,omitempty"`
	EmailSent      bool      `json:"email_sent"`
	EmailError     string    `json:"email_error,omitempty"`
}

// RegistrationListItem is one row of the admin list (registration joined with user and type).
type RegistrationListItem struct {
	ID               uuid.UUID `json:"id"`
	MembershipID     string    `json:"membership_id"`
	MembershipStatus string    `json:"membership_status"`
	MembershipExpiry string    `json:"membership_expiry"`
	PaymentStatus    string    `json:"payment_status"`
	PaymentAmount    float64   `json:"payment_amount"`
	CreatedAt        time.Time `json:"created_at"`
	FirstName        string    `json:"first_name"`
	MiddleName       *string   `json:"middle_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	PhoneNumber      string    `json:"phone_number"`
	MembershipType   string    `json:"membership_type"`
	PhotoThumbURL    string    `json:"photo_thumb_url,omitempty"`
}

type RegistrationSummary struct {
	ID               uuid.UUID `json:"id"`
	MembershipID     string    `json:"membership_id"`
	MembershipStatus string    `json:"membership_status"`
	MembershipExpiry string    `json:"membership_expiry"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ==================== Request DTO (admin) ====================

type PatchRegistrationRequest struct {
	MembershipStatus *string `json:"membership_status" validate:"omitempty,oneof=active inactive suspended expired"`
	MembershipExpiry *string `json:"membership_expiry" validate:"omitempty,ymd"`
}

func (r PatchRegistrationRequest) IsEmpty() bool {
	return r.MembershipStatus == nil && r.MembershipExpiry == nil
}

// ==================== Converter ====================

func ToRegistrationSummary(r *model.Registration) RegistrationSummary {
	return RegistrationSummary{
		ID:               r.ID,
		MembershipID:     r.MembershipID,
		MembershipStatus: r.MembershipStatus,
		MembershipExpiry: helper.FormatDate(r.MembershipExpiry),
		UpdatedAt:        r.UpdatedAt,
	}
}

// ToRegistrationListItem expects User and MembershipType preloaded; Document is optional.
func ToRegistrationListItem(r *model.Registration) RegistrationListItem {
	item := RegistrationListItem{
		ID:               r.ID,
		MembershipID:     r.MembershipID,
		MembershipStatus: r.MembershipStatus,
		MembershipExpiry: helper.FormatDate(r.MembershipExpiry),
		PaymentStatus:    r.PaymentStatus,
		PaymentAmount:    r.PaymentAmount,
		CreatedAt:        r.CreatedAt,
	}
	if r.User != nil {
		item.FirstName = r.User.FirstName
		item.MiddleName = r.User.MiddleName
		item.LastName = r.User.LastName
		item.Email = r.User.Email
		item.PhoneNumber = r.User.PhoneNumber
	}
	if r.MembershipType != nil {
		item.MembershipType = r.MembershipType.Name
	}
	if r.Document != nil {
		item.PhotoThumbURL = helper.ThumbnailPath(r.Document.FilePath)
	}
	return item
}

func ToRegistrationListItems(rows []model.Registration) []RegistrationListItem {
	out := make([]RegistrationListItem, 0, len(rows))
	for i := range rows {
		out = append(out, ToRegistrationListItem(&rows[i]))
	}
	return out
}
