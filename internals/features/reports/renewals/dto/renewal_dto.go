package dto

import (
	"time"

	"github.com/google/uuid"
)

type RenewalItem struct {
	ID               uuid.UUID `json:"id"`
	MembershipID     string    `json:"membership_id"`
	MembershipStatus string    `json:"membership_status"`
	MembershipExpiry string    `json:"membership_expiry"`
	DaysRemaining    int       `json:"days_remaining"`
	PaymentStatus    string    `json:"payment_status"`
	PaymentAmount    float64   `json:"payment_amount"`
	MembershipType   string    `json:"membership_type"`
	FirstName        string    `json:"first_name"`
	MiddleName       *string   `json:"middle_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	PhoneNumber      string    `json:"phone_number"`
	CreatedAt        time.Time `json:"created_at"`
}

type SweepResult struct {
	Expired int64     `json:"expired"`
	AsOf    time.Time `json:"as_of"`
}
