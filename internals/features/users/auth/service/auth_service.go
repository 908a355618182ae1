package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"membership_backend/internals/configs"
	authHelper "membership_backend/internals/features/users/auth/helper"
	authModel "membership_backend/internals/features/users/auth/model"
	authRepo "membership_backend/internals/features/users/auth/repository"
	helper "membership_backend/internals/helpers"
)

/* ==========================
   Types
========================== */

// ResetMailer delivers the password-reset link of an admin.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, admin *authModel.AdminUser, link string) error
}

type AuthService struct {
	DB     *gorm.DB
	Tokens *TokenService
	Mailer ResetMailer

	AppURL        string
	AdminBasePath string
}

func NewAuthService(db *gorm.DB, tokens *TokenService, mailer ResetMailer, cfg *configs.Config) *AuthService {
	return &AuthService{
		DB:            db,
		Tokens:        tokens,
		Mailer:        mailer,
		AppURL:        cfg.AppURL,
		AdminBasePath: cfg.AdminBasePath,
	}
}

type LoginInput struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func (in LoginInput) identifier() string {
	for _, s := range []string{in.Identifier, in.Email, in.Username} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

type LoginResult struct {
	Admin     *authModel.AdminUser
	Token     string
	ExpiresAt time.Time
}

// AdminProfile is the public shape of an admin account.
type AdminProfile struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Username string  `json:"username"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role"`
}

func ProfileOf(a *authModel.AdminUser) AdminProfile {
	return AdminProfile{
		ID:       a.ID.String(),
		Email:    a.Email,
		Username: a.Username,
		FullName: a.FullName,
		Role:     a.Role,
	}
}

/* ==========================
   Login / Logout
========================== */

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	ident := in.identifier()
	if ident == "" || in.Password == "" {
		return nil, helper.ValidationError("Email/username and password are required")
	}

	admin, err := authRepo.FindAdminByIdentifier(ctx, s.DB, ident)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.UnauthorizedError("Invalid credentials")
		}
		return nil, helper.PersistenceError("Login failed", err)
	}
	if err := authHelper.CheckPasswordHash(admin.PasswordHash, in.Password); err != nil {
		return nil, helper.UnauthorizedError("Invalid credentials")
	}
	if !admin.IsActive {
		return nil, helper.ForbiddenError("Account disabled")
	}

	token, exp, err := s.Tokens.IssueSession(admin)
	if err != nil {
		return nil, helper.PersistenceError("Login failed", err)
	}

	now := time.Now().UTC()
	if err := authRepo.TouchLastLogin(ctx, s.DB, admin.ID, now); err != nil {
		log.Printf("[WARN] last_login_at not updated for %s: %v", admin.ID, err)
	} else {
		admin.LastLoginAt = &now
	}

	return &LoginResult{Admin: admin, Token: token, ExpiresAt: exp}, nil
}

// Logout revokes the presented session token until its natural expiry.
// Unparseable tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	claims, err := s.Tokens.Parse(rawToken, PurposeSession)
	if err != nil {
		return nil
	}
	if err := authRepo.BlacklistToken(ctx, s.DB, TokenHash(rawToken), claims.ExpiresAt.Time); err != nil {
		return helper.PersistenceError("Logout failed", err)
	}
	return nil
}

/* ==========================
   Seed
========================== */

// SeedAdmin creates the bootstrap super_admin when no admin owns email yet.
func SeedAdmin(ctx context.Context, db *gorm.DB, email, password, fullName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	_, err := authRepo.FindAdminByEmail(ctx, db, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := authHelper.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &authModel.AdminUser{
		Username:     authHelper.UsernameFromEmail(email),
		Email:        email,
		PasswordHash: hash,
		FullName:     helper.StrPtr(fullName),
		Role:         authModel.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := authRepo.CreateAdmin(ctx, db, admin); err != nil {
		return err
	}
	log.Printf("✅ Seeded admin %s (%s)", admin.Username, admin.Role)
	return nil
}
