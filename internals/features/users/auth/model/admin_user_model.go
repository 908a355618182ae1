package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleViewer     = "viewer"
)

func IsValidRole(r string) bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleViewer
}

type AdminUser struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Username     string     `gorm:"column:username;type:varchar(100);not null;uniqueIndex" json:"username"`
	Email        string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;type:text;not null" json:"-"`
	FullName     *string    `gorm:"column:full_name;type:varchar(150)" json:"full_name,omitempty"`
	Role         string     `gorm:"column:role;type:varchar(30);not null" json:"role"`
	IsActive     bool       `gorm:"column:is_active;not null" json:"is_active"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AdminUser) TableName() string { return "admin_users" }

func (a *AdminUser) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
