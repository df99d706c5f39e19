// Package service provides business logic between API handlers and data stores.
//
// Every mutating service embeds an *observer.Subject. A mutation validates its
// input, pre-reads the current state where one exists, writes through the
// store, and only then publishes the completed action to its observers.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
	"github.com/gigboard/gigadmin/internal/observer"
)

// ProjectStore is the data-access interface ProjectService depends on.
type ProjectStore interface {
	ListProjects(ctx context.Context, f models.ProjectFilter) (*models.Page[models.Project], error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error)
	UpdateProject(ctx context.Context, id int64, req models.UpdateProjectRequest) (*models.Project, error)
	SetProjectStatus(ctx context.Context, id int64, status models.ProjectStatus) (*models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

// Compile-time check: *ProjectService must satisfy domain.ProjectService.
var _ domain.ProjectService = (*ProjectService)(nil)

// ProjectService manages projects and their subtasks.
type ProjectService struct {
	*observer.Subject
	store ProjectStore
}

// NewProjectService creates a ProjectService with observers attached in order.
func NewProjectService(store ProjectStore, log *logrus.Logger, observers ...observer.Observer) *ProjectService {
	return &ProjectService{Subject: observer.NewSubject(log, observers...), store: store}
}

// ListProjects returns a filtered page of projects (pass-through).
func (s *ProjectService) ListProjects(ctx context.Context, f models.ProjectFilter) (*models.Page[models.Project], error) {
	return s.store.ListProjects(ctx, f)
}

// GetProject returns a project with its subtasks (pass-through).
func (s *ProjectService) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	return s.store.GetProject(ctx, id)
}

// CreateProject creates a draft project with its subtasks.
func (s *ProjectService) CreateProject(
	ctx context.Context, adminID int64, req models.CreateProjectRequest,
) (*models.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.CreateProject(ctx, req)
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionCreateProject, EntityType: models.EntityProject,
		EntityID: p.ID, AdminID: adminID, New: p,
	})

	return p, nil
}

// UpdateProject applies field, subtask and unlink changes.
func (s *ProjectService) UpdateProject(
	ctx context.Context, adminID, id int64, req models.UpdateProjectRequest,
) (*models.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	old, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.store.UpdateProject(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionUpdateProject, EntityType: models.EntityProject,
		EntityID: id, AdminID: adminID, Old: old, New: p,
	})

	return p, nil
}

// UpdateProjectStatus moves a project to another status.
func (s *ProjectService) UpdateProjectStatus(
	ctx context.Context, adminID, id int64, req models.UpdateProjectStatusRequest,
) (*models.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	old, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.store.SetProjectStatus(ctx, id, req.Status)
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionUpdateProjectStatus, EntityType: models.EntityProject,
		EntityID: id, AdminID: adminID, Old: old, New: p,
	})

	return p, nil
}

// DeleteProject removes a project and returns its last known state.
func (s *ProjectService) DeleteProject(ctx context.Context, adminID, id int64) (*models.Project, error) {
	old, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteProject(ctx, id); err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionDeleteProject, EntityType: models.EntityProject,
		EntityID: id, AdminID: adminID, Old: old,
	})

	return old, nil
}
