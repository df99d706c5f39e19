package models

import (
	"math"
	"net/mail"
	"strings"
	"time"
)

// UserRole is the marketplace role of a user.
type UserRole string

// Marketplace roles.
const (
	RoleCreator   UserRole = "creator"
	RolePerformer UserRole = "performer"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleCreator || r == RolePerformer
}

// User is a marketplace account managed by admins.
type User struct {
	ID         int64     `json:"id"`
	TelegramID string    `json:"telegramId"`
	Username   *string   `json:"username"`
	IsBaned    bool      `json:"isBaned"`
	IsVerified bool      `json:"isVerified"`
	RefCode    string    `json:"refCode"`
	Role       UserRole  `json:"role"`
	Balance    float64   `json:"balance"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

const (
	maxUserTags   = 50
	maxTagLength  = 100
	maxShortField = 255
)

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	TelegramID string    `json:"telegramId"`
	Username   *string   `json:"username,omitempty"`
	IsBaned    *bool     `json:"isBaned,omitempty"`
	IsVerified *bool     `json:"isVerified,omitempty"`
	RefCode    string    `json:"refCode"`
	Role       *UserRole `json:"role,omitempty"`
	Balance    *float64  `json:"balance,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
}

// Validate checks required fields and applies defaults.
func (r *CreateUserRequest) Validate() error {
	r.TelegramID = strings.TrimSpace(r.TelegramID)
	if r.TelegramID == "" {
		return ErrMissingField("telegramId")
	}

	if len(r.TelegramID) > 64 {
		return ErrFieldTooLong("telegramId", 64)
	}

	r.RefCode = strings.TrimSpace(r.RefCode)
	if r.RefCode == "" {
		return ErrMissingField("refCode")
	}

	if len(r.RefCode) > 64 {
		return ErrFieldTooLong("refCode", 64)
	}

	if r.Username != nil && len(*r.Username) > maxShortField {
		return ErrFieldTooLong("username", maxShortField)
	}

	if r.Role == nil {
		role := RoleCreator
		r.Role = &role
	} else if !r.Role.Valid() {
		return NewValidationError("role", "must be one of creator, performer")
	}

	if r.Balance != nil {
		if err := validateBalance(*r.Balance); err != nil {
			return err
		}
	}

	return validateTags(r.Tags)
}

// UpdateUserRequest is a partial update of a user. A nil field is left unchanged;
// a non-nil empty Tags slice clears the tag collection.
type UpdateUserRequest struct {
	TelegramID *string   `json:"telegramId,omitempty"`
	Username   *string   `json:"username,omitempty"`
	IsBaned    *bool     `json:"isBaned,omitempty"`
	IsVerified *bool     `json:"isVerified,omitempty"`
	RefCode    *string   `json:"refCode,omitempty"`
	Role       *UserRole `json:"role,omitempty"`
	Balance    *float64  `json:"balance,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
}

// Validate checks UpdateUserRequest fields.
func (r *UpdateUserRequest) Validate() error {
	if r.TelegramID != nil && strings.TrimSpace(*r.TelegramID) == "" {
		return NewValidationError("telegramId", "cannot be empty")
	}

	if r.RefCode != nil && strings.TrimSpace(*r.RefCode) == "" {
		return NewValidationError("refCode", "cannot be empty")
	}

	if r.Username != nil && len(*r.Username) > maxShortField {
		return ErrFieldTooLong("username", maxShortField)
	}

	if r.Role != nil && !r.Role.Valid() {
		return NewValidationError("role", "must be one of creator, performer")
	}

	if r.Balance != nil {
		if err := validateBalance(*r.Balance); err != nil {
			return err
		}
	}

	return validateTags(r.Tags)
}

// UpdateUserRoleRequest is the payload for a role transition.
type UpdateUserRoleRequest struct {
	Role UserRole `json:"role"`
}

// Validate checks the requested role.
func (r *UpdateUserRoleRequest) Validate() error {
	if r.Role == "" {
		return ErrMissingField("role")
	}

	if !r.Role.Valid() {
		return NewValidationError("role", "must be one of creator, performer")
	}

	return nil
}

// UserFilter selects users by a case-insensitive search over username and tags.
type UserFilter struct {
	Search string
	ListQuery
}

func validateBalance(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NewValidationError("balance", "must be a finite number")
	}

	if v < 0 {
		return NewValidationError("balance", "must not be negative")
	}

	return nil
}

func validateTags(tags []string) error {
	if len(tags) > maxUserTags {
		return NewValidationError("tags", "too many tags")
	}

	for _, t := range tags {
		if strings.TrimSpace(t) == "" {
			return NewValidationError("tags", "must not contain empty values")
		}

		if len(t) > maxTagLength {
			return ErrFieldTooLong("tag", maxTagLength)
		}
	}

	return nil
}

// UserAdmin is an operator account that can sign in to the admin API.
type UserAdmin struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UpdateUserAdminRequest toggles the administrator flag of a UserAdmin.
type UpdateUserAdminRequest struct {
	IsAdmin *bool `json:"isAdmin"`
}

// Validate requires the flag to be present.
func (r *UpdateUserAdminRequest) Validate() error {
	if r.IsAdmin == nil {
		return ErrMissingField("isAdmin")
	}

	return nil
}

// AuthRequest is the login and register payload.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the email shape and minimum password length.
func (r *AuthRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return ErrMissingField("email")
	}

	if len(r.Email) > maxShortField {
		return ErrFieldTooLong("email", maxShortField)
	}

	if _, err := mail.ParseAddress(r.Email); err != nil {
		return NewValidationError("email", "is not a valid address")
	}

	if len(r.Password) < 6 {
		return NewValidationError("password", "cannot be less than 6 characters")
	}

	// bcrypt ignores input past 72 bytes.
	if len(r.Password) > 72 {
		return ErrFieldTooLong("password", 72)
	}

	return nil
}

// RefreshTokenRequest exchanges a refresh token for a new pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate requires a token.
func (r *RefreshTokenRequest) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return ErrMissingField("refreshToken")
	}

	return nil
}

// AuthResponse is returned by login, register and refresh.
type AuthResponse struct {
	UserAdmin    *UserAdmin `json:"userAdmin"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}
