package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionAdminLogin         = "ADMIN_LOGIN"
	ActionAdminPasswordReset = "ADMIN_PASSWORD_RESET"
	ActionCreate             = "CREATE"
	ActionUpdate             = "UPDATE"
	ActionDelete             = "DELETE"
	ActionImport             = "IMPORT"
	ActionResendEmail        = "RESEND_EMAIL"
	ActionExpirySweep        = "EXPIRY_SWEEP"
)

// AuditLog is append-only.
type AuditLog struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AdminUserID *uuid.UUID     `gorm:"column:admin_user_id;type:uuid;index" json:"admin_user_id,omitempty"`
	Action      string         `gorm:"column:action;type:varchar(50);not null;index" json:"action"`
	EntityType  string         `gorm:"column:entity_type;type:varchar(50);not null" json:"entity_type"`
	EntityID    *string        `gorm:"column:entity_id;type:varchar(64)" json:"entity_id,omitempty"`
	OldValues   datatypes.JSON `gorm:"column:old_values;type:jsonb" json:"old_values,omitempty"`
	NewValues   datatypes.JSON `gorm:"column:new_values;type:jsonb" json:"new_values,omitempty"`
	IPAddress   *string        `gorm:"column:ip_address;type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent   *string        `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
