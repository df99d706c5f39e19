package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gigboard/gigadmin/internal/models"
)

// AdminStore provides data access for user_admins, the operator accounts.
type AdminStore struct {
	Base
}

// NewAdminStore creates an AdminStore.
func NewAdminStore(base Base) *AdminStore {
	return &AdminStore{Base: base}
}

// CreateAdmin inserts an operator account. A taken email yields ErrDuplicateKey.
func (s *AdminStore) CreateAdmin(ctx context.Context, email, passwordHash string, isAdmin bool) (*models.UserAdmin, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `
		INSERT INTO user_admins (email, password, is_admin)
		VALUES ($1, $2, $3)
		RETURNING `+userAdminColumns,
		email, passwordHash, isAdmin,
	)

	a, err := scanUserAdmin(row.Scan)
	if err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrUserAdminNotFound), "creating admin")
	}

	return a, nil
}

// GetAdminByEmail looks an operator up by login email.
func (s *AdminStore) GetAdminByEmail(ctx context.Context, email string) (*models.UserAdmin, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, "SELECT "+userAdminColumns+" FROM user_admins WHERE email = $1", email)

	a, err := scanUserAdmin(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserAdminNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting admin by email: %w", err)
	}

	return a, nil
}

// GetAdmin looks an operator up by id.
func (s *AdminStore) GetAdmin(ctx context.Context, id int64) (*models.UserAdmin, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, "SELECT "+userAdminColumns+" FROM user_admins WHERE id = $1", id)

	a, err := scanUserAdmin(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserAdminNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting admin: %w", err)
	}

	return a, nil
}

// SetAdminFlag sets is_admin and returns the updated account.
func (s *AdminStore) SetAdminFlag(ctx context.Context, id int64, isAdmin bool) (*models.UserAdmin, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `
		UPDATE user_admins SET is_admin = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userAdminColumns,
		id, isAdmin,
	)

	a, err := scanUserAdmin(row.Scan)
	if err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrUserAdminNotFound), "updating admin flag")
	}

	return a, nil
}

// EnsureAdmin creates the account with is_admin set when the email is free.
// An existing account is promoted but its password is left alone.
// Returns true when a row was created.
func (s *AdminStore) EnsureAdmin(ctx context.Context, email, passwordHash string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var inserted bool

	err := s.Pool.QueryRow(ctx, `
		INSERT INTO user_admins (email, password, is_admin)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (email) DO UPDATE SET is_admin = TRUE, updated_at = NOW()
		RETURNING (xmax = 0)`,
		email, passwordHash,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("ensuring bootstrap admin: %w", err)
	}

	return inserted, nil
}
