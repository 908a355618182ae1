package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authModel "membership_backend/internals/features/users/auth/model"
)

/* ====================== ADMIN USER ====================== */

// FindAdminByIdentifier matches email or username, case-insensitive.
func FindAdminByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*authModel.AdminUser, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))
	var a authModel.AdminUser
	if err := db.WithContext(ctx).
		Where("LOWER(email) = ? OR LOWER(username) = ?", ident, ident).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func FindAdminByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*authModel.AdminUser, error) {
	var a authModel.AdminUser
	if err := db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func FindAdminByEmail(ctx context.Context, db *gorm.DB, email string) (*authModel.AdminUser, error) {
	var a authModel.AdminUser
	if err := db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func CreateAdmin(ctx context.Context, db *gorm.DB, a *authModel.AdminUser) error {
	return db.WithContext(ctx).Create(a).Error
}

func UpdateAdminPassword(ctx context.Context, db *gorm.DB, id uuid.UUID, hash string) error {
	return db.WithContext(ctx).Model(&authModel.AdminUser{}).
		Where("id = ?", id).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now().UTC()}).Error
}

func TouchLastLogin(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) error {
	return db.WithContext(ctx).Model(&authModel.AdminUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func ListAdmins(ctx context.Context, db *gorm.DB) ([]authModel.AdminUser, error) {
	var rows []authModel.AdminUser
	err := db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

// IsUsernameTaken ignores excludeID so an admin can keep their own name.
func IsUsernameTaken(ctx context.Context, db *gorm.DB, username string, excludeID *uuid.UUID) (bool, error) {
	if username == "" {
		return false, errors.New("username cannot be empty")
	}
	q := db.WithContext(ctx).Model(&authModel.AdminUser{}).Where("LOWER(username) = ?", strings.ToLower(username))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

/* ====================== BLACKLIST TOKEN ====================== */

func BlacklistToken(ctx context.Context, db *gorm.DB, tokenHash string, expiresAt time.Time) error {
	var existing int64
	if err := db.WithContext(ctx).Model(&authModel.TokenBlacklist{}).
		Where("token_hash = ?", tokenHash).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&authModel.TokenBlacklist{
		TokenHash: tokenHash,
		ExpiresAt: expiresAt.UTC(),
	}).Error
}

func IsTokenBlacklisted(ctx context.Context, db *gorm.DB, tokenHash string) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&authModel.TokenBlacklist{}).
		Where("token_hash = ?", tokenHash).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func CleanupExpiredBlacklist(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at <= ?", now.UTC()).Delete(&authModel.TokenBlacklist{})
	return res.RowsAffected, res.Error
}
