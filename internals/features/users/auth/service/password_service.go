package service

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"

	"gorm.io/gorm"

	authHelper "membership_backend/internals/features/users/auth/helper"
	authRepo "membership_backend/internals/features/users/auth/repository"
	helper "membership_backend/internals/helpers"
)

// ========================== FORGOT PASSWORD ==========================

// ForgotPassword mails a reset link to an active admin. Callers always answer
// ok so the endpoint never reveals which addresses exist.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return
	}
	admin, err := authRepo.FindAdminByEmail(ctx, s.DB, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[ERROR] forgot password lookup: %v", err)
		}
		return
	}
	if !admin.IsActive {
		return
	}

	token, _, err := s.Tokens.IssueReset(admin)
	if err != nil {
		log.Printf("[ERROR] forgot password sign: %v", err)
		return
	}
	if s.Mailer == nil {
		log.Printf("[WARN] no mailer configured, reset link for %s not sent", admin.Email)
		return
	}
	if err := s.Mailer.SendPasswordReset(ctx, admin, s.ResetLink(token)); err != nil {
		log.Printf("[ERROR] forgot password mail to %s: %v", admin.Email, err)
	}
}

func (s *AuthService) ResetLink(token string) string {
	origin := strings.TrimRight(s.AppURL, "/")
	return origin + s.AdminBasePath + "/reset?token=" + url.QueryEscape(token)
}

// ========================== RESET PASSWORD ==========================

type ResetInput struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword returns the admin id whose password changed.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetInput) (string, error) {
	if in.Token == "" || in.Password == "" {
		return "", helper.ValidationError("Invalid request")
	}
	if len(in.Password) < authHelper.MinPasswordLength {
		return "", helper.ValidationError("Password too short")
	}

	claims, err := s.Tokens.Parse(in.Token, PurposeReset)
	if err != nil {
		return "", helper.ValidationError("Invalid or expired token")
	}
	id, _ := claims.AdminID()

	admin, err := authRepo.FindAdminByID(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", helper.ValidationError("Invalid token")
		}
		return "", helper.PersistenceError("Failed to reset password", err)
	}
	if !admin.IsActive {
		return "", helper.ValidationError("Invalid token")
	}

	hash, err := authHelper.HashPassword(in.Password)
	if err != nil {
		return "", helper.PersistenceError("Failed to reset password", err)
	}
	if err := authRepo.UpdateAdminPassword(ctx, s.DB, admin.ID, hash); err != nil {
		return "", helper.PersistenceError("Failed to reset password", err)
	}
	return admin.ID.String(), nil
}
