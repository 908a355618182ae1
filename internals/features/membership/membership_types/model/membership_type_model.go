package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===================== Model ===================== */

type MembershipType struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"column:name;type:varchar(120);not null" json:"name"`
	Slug        string         `gorm:"column:slug;type:varchar(120);not null;uniqueIndex" json:"slug"`
	Description *string        `gorm:"column:description;type:text" json:"description,omitempty"`
	Price       float64        `gorm:"column:price;type:numeric(12,2);not null;default:0" json:"price"`
	Benefits    datatypes.JSON `gorm:"column:benefits;type:jsonb" json:"benefits"`
	IsActive    bool           `gorm:"column:is_active;not null" json:"is_active"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (MembershipType) TableName() string { return "membership_types" }

func (m *MembershipType) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if len(m.Benefits) == 0 {
		m.Benefits = datatypes.JSON("[]")
	}
	return nil
}

// BenefitList decodes the benefits column; malformed JSON yields an empty list.
func (m *MembershipType) BenefitList() []string {
	out := []string{}
	if len(m.Benefits) == 0 {
		return out
	}
	_ = json.Unmarshal(m.Benefits, &out)
	return out
}
