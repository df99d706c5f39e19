package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
	"github.com/gigboard/gigadmin/internal/observer"
)

// UserStore is the data-access interface UserService depends on.
type UserStore interface {
	ListUsers(ctx context.Context, f models.UserFilter) (*models.Page[models.User], error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error)
	SetBanned(ctx context.Context, id int64, banned bool) (*models.User, error)
	SetRole(ctx context.Context, id int64, role models.UserRole) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// AdminFlagStore reads and toggles the admin flag of operator accounts.
type AdminFlagStore interface {
	GetAdmin(ctx context.Context, id int64) (*models.UserAdmin, error)
	SetAdminFlag(ctx context.Context, id int64, isAdmin bool) (*models.UserAdmin, error)
}

// Compile-time check: *UserService must satisfy domain.UserService.
var _ domain.UserService = (*UserService)(nil)

// UserService manages marketplace users and the operator admin flag.
type UserService struct {
	*observer.Subject
	store  UserStore
	admins AdminFlagStore
}

// NewUserService creates a UserService.
func NewUserService(store UserStore, admins AdminFlagStore, log *logrus.Logger, observers ...observer.Observer) *UserService {
	return &UserService{Subject: observer.NewSubject(log, observers...), store: store, admins: admins}
}

// ListUsers returns a filtered page of users (pass-through).
func (s *UserService) ListUsers(ctx context.Context, f models.UserFilter) (*models.Page[models.User], error) {
	return s.store.ListUsers(ctx, f)
}

// GetUser returns one user with tags (pass-through).
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

// CreateUser creates a user.
func (s *UserService) CreateUser(ctx context.Context, adminID int64, req models.CreateUserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.store.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionCreateUser, EntityType: models.EntityUser,
		EntityID: u.ID, AdminID: adminID, New: u,
	})

	return u, nil
}

// UpdateUser applies a partial update.
func (s *UserService) UpdateUser(
	ctx context.Context, adminID, id int64, req models.UpdateUserRequest,
) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.transition(ctx, adminID, id, models.ActionUpdateUser, func() (*models.User, error) {
		return s.store.UpdateUser(ctx, id, req)
	})
}

// BanUser sets the ban flag.
func (s *UserService) BanUser(ctx context.Context, adminID, id int64) (*models.User, error) {
	return s.transition(ctx, adminID, id, models.ActionBanUser, func() (*models.User, error) {
		return s.store.SetBanned(ctx, id, true)
	})
}

// UnbanUser clears the ban flag.
func (s *UserService) UnbanUser(ctx context.Context, adminID, id int64) (*models.User, error) {
	return s.transition(ctx, adminID, id, models.ActionUnbanUser, func() (*models.User, error) {
		return s.store.SetBanned(ctx, id, false)
	})
}

// UpdateUserRole switches a user between creator and performer.
func (s *UserService) UpdateUserRole(
	ctx context.Context, adminID, id int64, req models.UpdateUserRoleRequest,
) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.transition(ctx, adminID, id, models.ActionUpdateUserRole, func() (*models.User, error) {
		return s.store.SetRole(ctx, id, req.Role)
	})
}

// transition pre-reads the user, runs mutate and publishes action on success.
func (s *UserService) transition(
	ctx context.Context, adminID, id int64, action models.Action, mutate func() (*models.User, error),
) (*models.User, error) {
	old, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u, err := mutate()
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: action, EntityType: models.EntityUser,
		EntityID: id, AdminID: adminID, Old: old, New: u,
	})

	return u, nil
}

// DeleteUser removes a user and returns its last known state.
func (s *UserService) DeleteUser(ctx context.Context, adminID, id int64) (*models.User, error) {
	old, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionDeleteUser, EntityType: models.EntityUser,
		EntityID: id, AdminID: adminID, Old: old,
	})

	return old, nil
}

// UpdateUserAdmin grants or revokes the admin flag of an operator account.
func (s *UserService) UpdateUserAdmin(
	ctx context.Context, adminID, id int64, req models.UpdateUserAdminRequest,
) (*models.UserAdmin, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	old, err := s.admins.GetAdmin(ctx, id)
	if err != nil {
		return nil, err
	}

	a, err := s.admins.SetAdminFlag(ctx, id, *req.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionUpdateUserAdmin, EntityType: models.EntityUserAdmin,
		EntityID: id, AdminID: adminID, Old: old, New: a,
	})

	return a, nil
}
