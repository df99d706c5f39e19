// Package auth issues and verifies admin JWTs and hashes operator passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gigboard/gigadmin/internal/models"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

// Token types carried in the "typ" claim.
const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Default token lifetimes.
const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 15 * 24 * time.Hour
)

// Claims is the JWT payload. The admin id travels as "_id".
type Claims struct {
	AdminID int64     `json:"_id"`
	Type    TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. Non-positive TTLs fall back to the defaults.
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}

	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (ti *TokenIssuer) sign(adminID int64, typ TokenType, ttl time.Duration) (string, error) {
	now := ti.now()
	claims := &Claims{
		AdminID: adminID,
		Type:    typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("signing %s token: %w", typ, err)
	}

	return signed, nil
}

// IssuePair returns a fresh access and refresh token for adminID.
func (ti *TokenIssuer) IssuePair(adminID int64) (access, refresh string, err error) {
	access, err = ti.sign(adminID, AccessToken, ti.accessTTL)
	if err != nil {
		return "", "", err
	}

	refresh, err = ti.sign(adminID, RefreshToken, ti.refreshTTL)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

// Parse verifies signature, expiry and token type and returns the admin id.
// Every failure is reported as models.ErrInvalidToken.
func (ti *TokenIssuer) Parse(token string, want TokenType) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return 0, models.ErrInvalidToken
	}

	if claims.Type != want {
		return 0, fmt.Errorf("%w: %w", models.ErrInvalidToken, errWrongTokenType)
	}

	if claims.AdminID <= 0 {
		return 0, models.ErrInvalidToken
	}

	return claims.AdminID, nil
}

var errWrongTokenType = errors.New("wrong token type")
