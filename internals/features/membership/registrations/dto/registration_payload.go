package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ==================== Request DTO (public form) ====================

// RegistrationPayload is the JSON carried in the multipart field "payload".
type RegistrationPayload struct {
	MembershipTypeID string `json:"membershipTypeId" validate:"required"`
	MembershipSlug   string `json:"membershipSlug"`

	Personal         PersonalInfo     `json:"personal"`
	Contact          ContactInfo      `json:"contact"`
	Identification   Identification   `json:"identification"`
	Professional     json.RawMessage  `json:"professional" validate:"-"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	Terms            Terms            `json:"terms"`
	Payment          PaymentInfo      `json:"payment"`
}

type PersonalInfo struct {
	FirstName   string `json:"firstName" validate:"required,min=2,max=100"`
	MiddleName  string `json:"middleName" validate:"omitempty,max=100"`
	LastName    string `json:"lastName" validate:"required,min=2,max=100"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,ymd"`
	Gender      string `json:"gender" validate:"required,oneof=male female prefer_not_to_say"`
	Nationality string `json:"nationality" validate:"required,min=2,max=100"`
}

type ContactInfo struct {
	Email            string `json:"email" validate:"required,email,max=255"`
	Phone            string `json:"phone" validate:"required,gh_phone"`
	AlternativePhone string `json:"alternativePhone" validate:"omitempty,gh_phone"`
	StreetAddress    string `json:"streetAddress" validate:"required,min=5"`
	City             string `json:"city" validate:"required,min=2,max=100"`
	Region           string `json:"region" validate:"required,min=2,max=100"`
	DigitalAddress   string `json:"digitalAddress" validate:"omitempty,max=50"`
}

type Identification struct {
	IDType   string `json:"idType" validate:"required,oneof=ghana_card passport voter_id driver_license"`
	IDNumber string `json:"idNumber" validate:"required,min=5,max=50"`
}

type EmergencyContact struct {
	Name         string `json:"name" validate:"required,min=2"`
	Relationship string `json:"relationship" validate:"required,min=2"`
	Phone        string `json:"phone" validate:"required,gh_phone"`
}

type Terms struct {
	TermsAccepted         bool `json:"termsAccepted" validate:"eq=true"`
	CodeOfConductAccepted bool `json:"codeOfConductAccepted" validate:"eq=true"`
	DataPrivacyAccepted   bool `json:"dataPrivacyAccepted" validate:"eq=true"`
}

type PaymentInfo struct {
	Reference        string          `json:"reference" validate:"required,max=120"`
	Amount           float64         `json:"amount" validate:"gt=0"`
	Gateway          string          `json:"gateway" validate:"omitempty,max=50"`
	Status           string          `json:"status" validate:"omitempty,oneof=pending success failed abandoned reversed completed"`
	Currency         string          `json:"currency" validate:"omitempty,max=10"`
	Channel          string          `json:"channel" validate:"omitempty,max=50"`
	PaidAt           string          `json:"paidAt"`
	Metadata         json.RawMessage `json:"metadata" validate:"-"`
	MembershipExpiry string          `json:"membershipExpiry" validate:"omitempty,ymd"`
}

// ParsePayload decodes the form payload. Blank or non-object input yields nil.
func ParsePayload(raw string) *RegistrationPayload {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] != '{' {
		return nil
	}
	var p RegistrationPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	return &p
}

// HasRequiredDetails is the fast presence check done before field validation.
func (p *RegistrationPayload) HasRequiredDetails() bool {
	return strings.TrimSpace(p.MembershipTypeID) != "" &&
		strings.TrimSpace(p.Payment.Reference) != "" &&
		p.Payment.Amount > 0
}

// Normalize trims text fields, lowercases the email and fills payment defaults.
func (p *RegistrationPayload) Normalize() {
	trim := func(ss ...*string) {
		for _, s := range ss {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(&p.MembershipTypeID, &p.MembershipSlug,
		&p.Personal.FirstName, &p.Personal.MiddleName, &p.Personal.LastName,
		&p.Personal.DateOfBirth, &p.Personal.Gender, &p.Personal.Nationality,
		&p.Contact.Email, &p.Contact.Phone, &p.Contact.AlternativePhone,
		&p.Contact.StreetAddress, &p.Contact.City, &p.Contact.Region, &p.Contact.DigitalAddress,
		&p.Identification.IDType, &p.Identification.IDNumber,
		&p.EmergencyContact.Name, &p.EmergencyContact.Relationship, &p.EmergencyContact.Phone,
		&p.Payment.Reference, &p.Payment.Gateway, &p.Payment.Status, &p.Payment.Currency,
		&p.Payment.Channel, &p.Payment.PaidAt, &p.Payment.MembershipExpiry)

	p.Contact.Email = strings.ToLower(p.Contact.Email)
	p.MembershipSlug = strings.ToLower(p.MembershipSlug)
	if p.Payment.Gateway == "" {
		p.Payment.Gateway = "paystack"
	}
	if p.Payment.Status == "" {
		p.Payment.Status = "success"
	}
	if p.Payment.Currency == "" {
		p.Payment.Currency = "GHS"
	}
	p.Payment.Currency = strings.ToUpper(p.Payment.Currency)
}

// MetadataJSON merges membership_slug with the client metadata object; client keys win.
func (p *RegistrationPayload) MetadataJSON(slug string) []byte {
	merged := map[string]any{"membership_slug": slug}
	if len(bytes.TrimSpace(p.Payment.Metadata)) > 0 {
		var extra map[string]any
		if err := json.Unmarshal(p.Payment.Metadata, &extra); err == nil {
			for k, v := range extra {
				merged[k] = v
			}
		}
	}
	out, _ := json.Marshal(merged)
	return out
}

// ProfessionalJSON returns the stored form of the professional blob, "{}" when absent.
func (p *RegistrationPayload) ProfessionalJSON() []byte {
	b := bytes.TrimSpace(p.Professional)
	if len(b) == 0 || string(b) == "null" {
		return []byte("{}")
	}
	return b
}

// ==================== Flexible scalar ====================

// FlexString accepts a JSON string or number; the form sends numeric inputs either way.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// validator sees the underlying string
func (f FlexString) String() string { return string(f) }
