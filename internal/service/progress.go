package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
	"github.com/gigboard/gigadmin/internal/observer"
)

// ProgressStore is the data-access interface ProgressProjectService depends on.
type ProgressStore interface {
	ListProgress(ctx context.Context, f models.ProgressFilter) (*models.Page[models.ProgressProject], error)
	GetProgress(ctx context.Context, id int64) (*models.ProgressProject, error)
	CreateProgress(ctx context.Context, req models.CreateProgressProjectRequest) (*models.ProgressProject, error)
	UpdateProgress(ctx context.Context, id int64, req models.UpdateProgressProjectRequest) (*models.ProgressProject, error)
	DeleteProgress(ctx context.Context, id int64) error
}

// ProjectLookup reports whether a project exists.
type ProjectLookup interface {
	ProjectExists(ctx context.Context, id int64) (bool, error)
}

// UserLookup reports whether a user exists.
type UserLookup interface {
	UserExists(ctx context.Context, id int64) (bool, error)
}

// Compile-time check: *ProgressProjectService must satisfy domain.ProgressProjectService.
var _ domain.ProgressProjectService = (*ProgressProjectService)(nil)

// ProgressProjectService manages user progress on projects.
type ProgressProjectService struct {
	*observer.Subject
	store    ProgressStore
	projects ProjectLookup
	users    UserLookup
}

// NewProgressProjectService creates a ProgressProjectService.
func NewProgressProjectService(
	store ProgressStore, projects ProjectLookup, users UserLookup,
	log *logrus.Logger, observers ...observer.Observer,
) *ProgressProjectService {
	return &ProgressProjectService{
		Subject:  observer.NewSubject(log, observers...),
		store:    store,
		projects: projects,
		users:    users,
	}
}

// ListProgress returns a filtered page of progress records (pass-through).
func (s *ProgressProjectService) ListProgress(
	ctx context.Context, f models.ProgressFilter,
) (*models.Page[models.ProgressProject], error) {
	return s.store.ListProgress(ctx, f)
}

// GetProgress returns one progress record (pass-through).
func (s *ProgressProjectService) GetProgress(ctx context.Context, id int64) (*models.ProgressProject, error) {
	return s.store.GetProgress(ctx, id)
}

// checkRefs returns a not-found error for the first id that does not resolve.
func (s *ProgressProjectService) checkRefs(ctx context.Context, projectID, userID *int64) error {
	if projectID != nil {
		ok, err := s.projects.ProjectExists(ctx, *projectID)
		if err != nil {
			return fmt.Errorf("checking project: %w", err)
		}

		if !ok {
			return models.ErrProjectNotFound
		}
	}

	if userID != nil {
		ok, err := s.users.UserExists(ctx, *userID)
		if err != nil {
			return fmt.Errorf("checking user: %w", err)
		}

		if !ok {
			return models.ErrUserNotFound
		}
	}

	return nil
}

// CreateProgress records that a user started a project.
func (s *ProgressProjectService) CreateProgress(
	ctx context.Context, adminID int64, req models.CreateProgressProjectRequest,
) (*models.ProgressProject, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkRefs(ctx, &req.ProjectID, &req.UserID); err != nil {
		return nil, err
	}

	p, err := s.store.CreateProgress(ctx, req)
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionCreateProgressProject, EntityType: models.EntityProgressProject,
		EntityID: p.ID, AdminID: adminID, New: p,
	})

	return p, nil
}

// UpdateProgress changes a progress record.
func (s *ProgressProjectService) UpdateProgress(
	ctx context.Context, adminID, id int64, req models.UpdateProgressProjectRequest,
) (*models.ProgressProject, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	old, err := s.store.GetProgress(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkRefs(ctx, req.ProjectID, req.UserID); err != nil {
		return nil, err
	}

	p, err := s.store.UpdateProgress(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionUpdateProgressProject, EntityType: models.EntityProgressProject,
		EntityID: id, AdminID: adminID, Old: old, New: p,
	})

	return p, nil
}

// DeleteProgress removes a progress record and returns its last known state.
func (s *ProgressProjectService) DeleteProgress(ctx context.Context, adminID, id int64) (*models.ProgressProject, error) {
	old, err := s.store.GetProgress(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteProgress(ctx, id); err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionDeleteProgressProject, EntityType: models.EntityProgressProject,
		EntityID: id, AdminID: adminID, Old: old,
	})

	return old, nil
}
