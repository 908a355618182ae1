package model

import (
	"time"
)

// TokenBlacklist holds revoked session tokens (sha256 hex) until they would expire anyway.
type TokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenHash string    `gorm:"column:token_hash;type:varchar(64);not null;uniqueIndex" json:"token_hash"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
