package dto

import (
	"bytes"
	"encoding/json"

	helper "membership_backend/internals/helpers"
)

// ==================== Professional info variants ====================
// Keyed by the membership type slug. Keys are snake_case as stored in users.professional_info.

const (
	KindProfessional = "professional"
	KindCorporate    = "corporate"
	KindAssociate    = "associate"
	KindVendor       = "vendor"
	KindStudent      = "student"
)

type Qualification struct {
	Institution string     `json:"institution" validate:"required,min=2"`
	Certificate string     `json:"certificate" validate:"required,min=2"`
	Year        FlexString `json:"year" validate:"required,len=4,numeric"`
}

type ProfessionalMemberInfo struct {
	CurrentPosition        string          `json:"current_position" validate:"required,min=2"`
	CurrentEmployer        string          `json:"current_employer" validate:"required,min=2"`
	YearsOfExperience      FlexString      `json:"years_of_experience" validate:"required,min=1"`
	CulinarySpecialization []string        `json:"culinary_specialization" validate:"required,min=1"`
	Qualifications         []Qualification `json:"qualifications" validate:"required,min=1,dive"`
	Certifications         []string        `json:"certifications,omitempty"`
}

type CorporateMemberInfo struct {
	BusinessName          string     `json:"business_name" validate:"required,min=2"`
	BusinessType          string     `json:"business_type" validate:"required,min=2"`
	RegistrationNumber    string     `json:"registration_number" validate:"required,min=2"`
	NumberOfEmployees     FlexString `json:"number_of_employees" validate:"required,min=1"`
	YearsInOperation      FlexString `json:"years_in_operation" validate:"required,min=1"`
	BusinessAddress       string     `json:"business_address" validate:"required,min=5"`
	ContactPersonName     string     `json:"contact_person_name" validate:"required,min=2"`
	ContactPersonPosition string     `json:"contact_person_position" validate:"required,min=2"`
	BusinessWebsite       string     `json:"business_website,omitempty" validate:"omitempty,url"`
	BusinessLogo          string     `json:"business_logo,omitempty"`
}

type AssociateMemberInfo struct {
	Occupation       string   `json:"occupation" validate:"required,min=2"`
	AreasOfInterest  []string `json:"areas_of_interest" validate:"required,min=1"`
	ReasonForJoining string   `json:"reason_for_joining" validate:"required,min=20"`
}

type VendorMemberInfo struct {
	CompanyName        string     `json:"company_name" validate:"required,min=2"`
	ProductsServices   string     `json:"products_services" validate:"required,min=10"`
	RegistrationNumber string     `json:"registration_number" validate:"required,min=2"`
	YearsInBusiness    FlexString `json:"years_in_business" validate:"required,min=1"`
	PrimaryContact     string     `json:"primary_contact" validate:"required,min=2"`
	BusinessWebsite    string     `json:"business_website,omitempty" validate:"omitempty,url"`
}

type StudentMemberInfo struct {
	InstitutionName    string     `json:"institution_name" validate:"required,min=2"`
	Program            string     `json:"program" validate:"required,min=2"`
	ExpectedGraduation FlexString `json:"expected_graduation" validate:"required,min=1"`
	StudentIDNumber    string     `json:"student_id_number" validate:"required,min=2"`
	StudentIDCard      string     `json:"student_id_card,omitempty"`
}

// variantFor returns an empty value of the variant for slug, or nil for custom tiers.
func variantFor(slug string) any {
	switch slug {
	case KindProfessional:
		return &ProfessionalMemberInfo{}
	case KindCorporate:
		return &CorporateMemberInfo{}
	case KindAssociate:
		return &AssociateMemberInfo{}
	case KindVendor:
		return &VendorMemberInfo{}
	case KindStudent:
		return &StudentMemberInfo{}
	}
	return nil
}

// ValidateProfessional checks raw against the variant of slug. Unknown slugs pass unchecked.
func ValidateProfessional(slug string, raw []byte) *helper.AppError {
	v := variantFor(slug)
	if v == nil {
		return nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return helper.ValidationError("Professional information is required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return helper.ValidationError("Invalid professional information")
	}
	if ae := helper.ValidateStruct(v); ae != nil {
		return prefixFields(ae, "professional.")
	}
	return nil
}

func prefixFields(ae *helper.AppError, prefix string) *helper.AppError {
	if len(ae.Fields) == 0 {
		return ae
	}
	fields := make(map[string][]string, len(ae.Fields))
	for k, v := range ae.Fields {
		fields[prefix+k] = v
	}
	return helper.ValidationFieldsError(ae.Message, fields)
}
