package dto

import (
	"time"

	"github.com/google/uuid"

	"membership_backend/internals/features/membership/membership_types/model"
	helper "membership_backend/internals/helpers"
)

// ====================
// Response DTO
// ====================

type MembershipTypeDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Benefits    []string  `json:"benefits"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ====================
// Request DTO
// ====================

type CreateMembershipTypeRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=120"`
	Slug        string   `json:"slug" validate:"omitempty,max=120"`
	Description *string  `json:"description"`
	Price       float64  `json:"price" validate:"gte=0"`
	Benefits    []string `json:"benefits" validate:"omitempty,dive,min=1"`
	IsActive    *bool    `json:"is_active"`
}

type UpdateMembershipTypeRequest struct {
	Name        helper.PatchField[string]   `json:"name"`
	Slug        helper.PatchField[string]   `json:"slug"`
	Description helper.PatchField[string]   `json:"description"`
	Price       helper.PatchField[float64]  `json:"price"`
	Benefits    helper.PatchField[[]string] `json:"benefits"`
	IsActive    helper.PatchField[bool]     `json:"is_active"`
}

// ====================
// Converter
// ====================

func ToMembershipTypeDTO(m *model.MembershipType) MembershipTypeDTO {
	return MembershipTypeDTO{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Price:       m.Price,
		Benefits:    m.BenefitList(),
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToMembershipTypeDTOs(rows []model.MembershipType) []MembershipTypeDTO {
	out := make([]MembershipTypeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ToMembershipTypeDTO(&rows[i]))
	}
	return out
}
