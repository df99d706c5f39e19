package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/auth"
	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
)

// AdminStore is the data-access interface AuthService depends on.
type AdminStore interface {
	CreateAdmin(ctx context.Context, email, passwordHash string, isAdmin bool) (*models.UserAdmin, error)
	GetAdminByEmail(ctx context.Context, email string) (*models.UserAdmin, error)
	GetAdmin(ctx context.Context, id int64) (*models.UserAdmin, error)
	EnsureAdmin(ctx context.Context, email, passwordHash string) (bool, error)
}

// TokenIssuer signs and verifies token pairs.
type TokenIssuer interface {
	IssuePair(adminID int64) (access, refresh string, err error)
	Parse(token string, want auth.TokenType) (int64, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(hash, password string) (bool, error)
}

// Compile-time checks: *AuthService backs the auth handlers and both guards.
var (
	_ domain.AuthService    = (*AuthService)(nil)
	_ domain.TokenValidator = (*AuthService)(nil)
	_ domain.AdminChecker   = (*AuthService)(nil)
)

// AuthService signs operators in and exchanges refresh tokens.
type AuthService struct {
	store     AdminStore
	tokens    TokenIssuer
	passwords PasswordHasher
	log       *logrus.Logger

	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewAuthService creates an AuthService.
func NewAuthService(store AdminStore, tokens TokenIssuer, passwords PasswordHasher, log *logrus.Logger) *AuthService {
	s := &AuthService{store: store, tokens: tokens, passwords: passwords, log: log}

	if h, err := passwords.Hash("gigadmin-timing-equalizer"); err == nil {
		s.dummyHash = h
	}

	return s
}

func (s *AuthService) respond(a *models.UserAdmin) (*models.AuthResponse, error) {
	access, refresh, err := s.tokens.IssuePair(a.ID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{UserAdmin: a, AccessToken: access, RefreshToken: refresh}, nil
}

// Login checks credentials and returns the account with a fresh token pair.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.store.GetAdminByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrNotFound) {
		if s.dummyHash != "" {
			s.passwords.Check(s.dummyHash, req.Password) //nolint:errcheck // timing only.
		}

		return nil, models.ErrInvalidCredentials
	}

	if err != nil {
		return nil, err
	}

	ok, err := s.passwords.Check(a.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, models.ErrInvalidCredentials
	}

	return s.respond(a)
}

// Register creates a non-admin operator account and signs it in.
func (s *AuthService) Register(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	a, err := s.store.CreateAdmin(ctx, req.Email, hash, false)
	if err != nil {
		return nil, err
	}

	s.log.WithField("admin_id", a.ID).Info("operator account registered")

	return s.respond(a)
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshTokenRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := s.tokens.Parse(req.RefreshToken, auth.RefreshToken)
	if err != nil {
		return nil, err
	}

	a, err := s.store.GetAdmin(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidToken
	}

	if err != nil {
		return nil, err
	}

	return s.respond(a)
}

// ValidateAccessToken returns the admin id an access token was issued for.
func (s *AuthService) ValidateAccessToken(_ context.Context, token string) (int64, error) {
	return s.tokens.Parse(token, auth.AccessToken)
}

// IsAdmin reads the current admin flag. A vanished account is unauthorized.
func (s *AuthService) IsAdmin(ctx context.Context, adminID int64) (bool, error) {
	a, err := s.store.GetAdmin(ctx, adminID)
	if errors.Is(err, models.ErrNotFound) {
		return false, models.ErrUnauthorized
	}

	if err != nil {
		return false, err
	}

	return a.IsAdmin, nil
}

// EnsureBootstrapAdmin makes sure email exists with the admin flag set.
// An existing account keeps its password.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	req := models.AuthRequest{Email: email, Password: password}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return err
	}

	created, err := s.store.EnsureAdmin(ctx, req.Email, hash)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"email": req.Email, "created": created}).Info("bootstrap admin ensured")

	return nil
}
