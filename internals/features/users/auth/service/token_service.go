package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	authModel "membership_backend/internals/features/users/auth/model"
)

const (
	PurposeSession = "session"
	PurposeReset   = "reset"

	resetTTL = 15 * time.Minute
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by admin session and password-reset tokens.
type Claims struct {
	ID      string `json:"id"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (c *Claims) AdminID() (uuid.UUID, error) {
	return uuid.Parse(c.ID)
}

type TokenService struct {
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret string, sessionTTL time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), sessionTTL: sessionTTL, now: time.Now}
}

func (s *TokenService) SessionTTL() time.Duration { return s.sessionTTL }

func (s *TokenService) IssueSession(a *authModel.AdminUser) (string, time.Time, error) {
	return s.issue(a, PurposeSession, s.sessionTTL)
}

func (s *TokenService) IssueReset(a *authModel.AdminUser) (string, time.Time, error) {
	return s.issue(a, PurposeReset, resetTTL)
}

func (s *TokenService) issue(a *authModel.AdminUser, purpose string, ttl time.Duration) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		ID:      a.ID.String(),
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	if purpose == PurposeSession {
		claims.Email = a.Email
		claims.Role = a.Role
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tok, exp, nil
}

// Parse verifies an HS256 token, its expiry and its purpose.
func (s *TokenService) Parse(raw, purpose string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.Parser{
		ValidMethods: []string{jwt.SigningMethodHS256.Alg()},
	}
	tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	if _, err := claims.AdminID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenHash is the blacklist key of a raw token.
func TokenHash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
