package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	authHelper "membership_backend/internals/features/users/auth/helper"
	authModel "membership_backend/internals/features/users/auth/model"
	authRepo "membership_backend/internals/features/users/auth/repository"
	helper "membership_backend/internals/helpers"
)

type AdminSeed struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// SeedAdminsFromJSON inserts the admins listed in filePath. Existing emails are skipped.
// Returns the number of admins created.
func SeedAdminsFromJSON(ctx context.Context, db *gorm.DB, filePath string) (int, error) {
	log.Println("📥 Reading admin seed file:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, err
	}
	var inputs []AdminSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		return 0, err
	}

	created := 0
	for _, data := range inputs {
		email := strings.ToLower(strings.TrimSpace(data.Email))
		if email == "" || len(data.Password) < authHelper.MinPasswordLength {
			log.Printf("⚠️ Admin seed '%s' skipped: email and a password of %d+ characters are required", data.Email, authHelper.MinPasswordLength)
			continue
		}
		role := data.Role
		if role == "" {
			role = authModel.RoleAdmin
		}
		if !authModel.IsValidRole(role) {
			log.Printf("⚠️ Admin seed '%s' skipped: unknown role %q", email, role)
			continue
		}

		_, err := authRepo.FindAdminByEmail(ctx, db, email)
		if err == nil {
			log.Printf("ℹ️ Admin '%s' already exists, skipped.", email)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		hash, err := authHelper.HashPassword(data.Password)
		if err != nil {
			log.Printf("❌ Failed to hash password for '%s': %v", email, err)
			continue
		}
		username := strings.TrimSpace(data.Username)
		if username == "" {
			username = authHelper.UsernameFromEmail(email)
		}
		admin := &authModel.AdminUser{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			FullName:     helper.StrPtr(data.FullName),
			Role:         role,
			IsActive:     true,
		}
		if err := authRepo.CreateAdmin(ctx, db, admin); err != nil {
			log.Printf("❌ Failed to insert admin '%s': %v", email, err)
			continue
		}
		log.Printf("✅ Seeded admin '%s' (%s)", email, role)
		created++
	}
	return created, nil
}
