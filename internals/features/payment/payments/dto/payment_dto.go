package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	regModel "membership_backend/internals/features/membership/registrations/model"
	"membership_backend/internals/features/payment/payments/model"
)

type PaymentDTO struct {
	ID            uuid.UUID       `json:"id"`
	Reference     string          `json:"reference"`
	Gateway       string          `json:"gateway"`
	Status        string          `json:"status"`
	Amount        float64         `json:"amount"`
	Currency      string          `json:"currency"`
	Channel       *string         `json:"channel"`
	PaidAt        *time.Time      `json:"paid_at"`
	CustomerEmail *string         `json:"customer_email"`
	Metadata      json.RawMessage `json:"metadata"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func ToPaymentDTO(p *model.Payment) PaymentDTO {
	meta := json.RawMessage(p.Metadata)
	if len(meta) == 0 {
		meta = json.RawMessage("{}")
	}
	return PaymentDTO{
		ID:            p.ID,
		Reference:     p.Reference,
		Gateway:       p.Gateway,
		Status:        p.Status,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Channel:       p.Channel,
		PaidAt:        p.PaidAt,
		CustomerEmail: p.CustomerEmail,
		Metadata:      meta,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func ToPaymentDTOs(rows []model.Payment) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ToPaymentDTO(&rows[i]))
	}
	return out
}

// PaymentRegistration is the registration a payment paid for, if any.
type PaymentRegistration struct {
	ID               uuid.UUID `json:"id"`
	MembershipID     string    `json:"membership_id"`
	MembershipStatus string    `json:"membership_status"`
	MembershipType   string    `json:"membership_type"`
	MemberName       string    `json:"member_name"`
	MemberEmail      string    `json:"member_email"`
	PaymentStatus    string    `json:"payment_status"`
}

type PaymentDetail struct {
	Payment      PaymentDTO           `json:"payment"`
	Registration *PaymentRegistration `json:"registration"`
}

func ToPaymentRegistration(r *regModel.Registration) *PaymentRegistration {
	if r == nil {
		return nil
	}
	out := &PaymentRegistration{
		ID:               r.ID,
		MembershipID:     r.MembershipID,
		MembershipStatus: r.MembershipStatus,
		PaymentStatus:    r.PaymentStatus,
	}
	if r.MembershipType != nil {
		out.MembershipType = r.MembershipType.Name
	}
	if r.User != nil {
		out.MemberName = strings.TrimSpace(r.User.FullName())
		out.MemberEmail = r.User.Email
	}
	return out
}

/* ===================== Paystack webhook ===================== */

// PaystackEvent is the subset of a Paystack event body this service reads.
type PaystackEvent struct {
	Event string       `json:"event"`
	Data  PaystackData `json:"data"`
}

type PaystackData struct {
	Reference string           `json:"reference"`
	Status    string           `json:"status"`
	Amount    int64            `json:"amount"` // pesewas
	Currency  string           `json:"currency"`
	Channel   string           `json:"channel"`
	PaidAt    string           `json:"paid_at"`
	PaidAtAlt string           `json:"paidAt"`
	Customer  PaystackCustomer `json:"customer"`
	Metadata  json.RawMessage  `json:"metadata"`
}

type PaystackCustomer struct {
	Email string `json:"email"`
}

// PaidAtValue prefers paid_at and falls back to paidAt.
func (d PaystackData) PaidAtValue() string {
	if s := strings.TrimSpace(d.PaidAt); s != "" {
		return s
	}
	return strings.TrimSpace(d.PaidAtAlt)
}
