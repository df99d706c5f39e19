package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gigboard/gigadmin/internal/models"
)

// UserStore provides data access for users and their meta tags.
type UserStore struct {
	Base
}

// NewUserStore creates a UserStore.
func NewUserStore(base Base) *UserStore {
	return &UserStore{Base: base}
}

var userSortColumns = sortColumns{
	"id":         "u.id",
	"telegramId": "u.telegram_id",
	"username":   "u.username",
	"isBaned":    "u.is_baned",
	"isVerified": "u.is_verified",
	"refCode":    "u.ref_code",
	"role":       "u.role",
	"balance":    "u.balance",
	"createdAt":  "u.created_at",
	"updatedAt":  "u.updated_at",
}

// ListUsers returns a page of users. Search matches the username or any tag,
// case-insensitively.
func (s *UserStore) ListUsers(ctx context.Context, f models.UserFilter) (*models.Page[models.User], error) {
	f.Normalize()

	order, err := orderBy(f.Sort(), userSortColumns, "u.id")
	if err != nil {
		return nil, err
	}

	w := &sqlArgs{}
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := likePattern(term)
		w.where(`(u.username ILIKE ? OR EXISTS (
			SELECT 1 FROM user_meta_tags t WHERE t.user_id = u.id AND t.tag ILIKE ?))`, pattern, pattern)
	}

	return listPage(ctx, &s.Base, "users u", userColumns, w, order, f.ListQuery,
		func(rows pgx.Rows) ([]models.User, error) {
			return collect(rows, scanUser, "user")
		},
	)
}

// GetUser returns a user with its tags.
func (s *UserStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return getUser(ctx, s.Pool.QueryRow, id)
}

func getUser(ctx context.Context, queryRow func(context.Context, string, ...any) pgx.Row, id int64) (*models.User, error) {
	u, err := scanUser(queryRow(ctx, "SELECT "+userColumns+" FROM users u WHERE u.id = $1", id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, nil
}

// replaceTags swaps the whole tag collection of a user.
func replaceTags(ctx context.Context, tx pgx.Tx, userID int64, tags []string) error {
	if _, err := tx.Exec(ctx, "DELETE FROM user_meta_tags WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("clearing user tags: %w", err)
	}

	if len(tags) == 0 {
		return nil
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO user_meta_tags (user_id, tag)
		SELECT $1, tag FROM unnest($2::text[]) AS tag
		ON CONFLICT (user_id, tag) DO NOTHING`,
		userID, tags,
	)
	if err != nil {
		return fmt.Errorf("inserting user tags: %w", err)
	}

	return nil
}

// CreateUser inserts a user and its tags in one transaction.
func (s *UserStore) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var (
		isBaned, isVerified bool
		balance             float64
		role                = models.RoleCreator
	)

	if req.IsBaned != nil {
		isBaned = *req.IsBaned
	}

	if req.IsVerified != nil {
		isVerified = *req.IsVerified
	}

	if req.Balance != nil {
		balance = *req.Balance
	}

	if req.Role != nil {
		role = *req.Role
	}

	var id int64

	err = tx.QueryRow(ctx, `
		INSERT INTO users (telegram_id, username, is_baned, is_verified, ref_code, role, balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		req.TelegramID, req.Username, isBaned, isVerified, req.RefCode, string(role), balance,
	).Scan(&id)
	if err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrUserNotFound), "creating user")
	}

	if err := replaceTags(ctx, tx, id, req.Tags); err != nil {
		return nil, err
	}

	u, err := getUser(ctx, tx.QueryRow, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing user create: %w", err)
	}

	return u, nil
}

// UpdateUser applies a partial update. Non-nil Tags replaces the tag collection.
func (s *UserStore) UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error) {
	set := &sqlArgs{}

	if req.TelegramID != nil {
		set.set("telegram_id", strings.TrimSpace(*req.TelegramID))
	}

	if req.Username != nil {
		set.set("username", *req.Username)
	}

	if req.IsBaned != nil {
		set.set("is_baned", *req.IsBaned)
	}

	if req.IsVerified != nil {
		set.set("is_verified", *req.IsVerified)
	}

	if req.RefCode != nil {
		set.set("ref_code", strings.TrimSpace(*req.RefCode))
	}

	if req.Role != nil {
		set.set("role", string(*req.Role))
	}

	if req.Balance != nil {
		set.set("balance", *req.Balance)
	}

	return s.update(ctx, id, set, req.Tags)
}

// SetBanned sets the ban flag.
func (s *UserStore) SetBanned(ctx context.Context, id int64, banned bool) (*models.User, error) {
	set := &sqlArgs{}
	set.set("is_baned", banned)

	return s.update(ctx, id, set, nil)
}

// SetRole sets the marketplace role.
func (s *UserStore) SetRole(ctx context.Context, id int64, role models.UserRole) (*models.User, error) {
	set := &sqlArgs{}
	set.set("role", string(role))

	return s.update(ctx, id, set, nil)
}

func (s *UserStore) update(ctx context.Context, id int64, set *sqlArgs, tags []string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	set.conds = append(set.conds, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = %s RETURNING id", set.setClause(), set.arg(id))

	var got int64
	if err := tx.QueryRow(ctx, query, set.args...).Scan(&got); err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrUserNotFound), "updating user")
	}

	if tags != nil {
		if err := replaceTags(ctx, tx, id, tags); err != nil {
			return nil, err
		}
	}

	u, err := getUser(ctx, tx.QueryRow, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing user update: %w", err)
	}

	return u, nil
}

// DeleteUser removes a user. Tags, progress records and applications cascade;
// authored projects and transactions block the delete.
func (s *UserStore) DeleteUser(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var got int64

	err := s.Pool.QueryRow(ctx, "DELETE FROM users WHERE id = $1 RETURNING id", id).Scan(&got)
	if err != nil {
		return wrapUnclassified(classifyDelete(err, models.ErrUserNotFound), "deleting user")
	}

	return nil
}

// UserExists reports whether a user row exists.
func (s *UserStore) UserExists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var ok bool
	if err := s.Pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking user: %w", err)
	}

	return ok, nil
}
