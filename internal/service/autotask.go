package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/models"
	"github.com/gigboard/gigadmin/internal/observer"
)

// AutoTaskStore is the data-access interface AutoTaskService depends on.
type AutoTaskStore interface {
	ListAutoTasks(ctx context.Context, f models.AutoTaskFilter) (*models.Page[models.AutoTask], error)
	ListApplications(ctx context.Context, f models.AutoTaskApplicationFilter) (*models.Page[models.AutoTaskApplication], error)
	GetAutoTask(ctx context.Context, id int64) (*models.AutoTask, error)
	CreateAutoTask(ctx context.Context, req models.CreateAutoTaskRequest) (*models.AutoTask, error)
	UpdateAutoTask(ctx context.Context, id int64, req models.UpdateAutoTaskRequest) (*models.AutoTask, error)
	DeleteAutoTask(ctx context.Context, id int64) error
}

// Compile-time check: *AutoTaskService must satisfy domain.AutoTaskService.
var _ domain.AutoTaskService = (*AutoTaskService)(nil)

// AutoTaskService manages auto tasks.
type AutoTaskService struct {
	*observer.Subject
	store AutoTaskStore
}

// NewAutoTaskService creates an AutoTaskService.
func NewAutoTaskService(store AutoTaskStore, log *logrus.Logger, observers ...observer.Observer) *AutoTaskService {
	return &AutoTaskService{Subject: observer.NewSubject(log, observers...), store: store}
}

// ListAutoTasks returns a filtered page of auto tasks (pass-through).
func (s *AutoTaskService) ListAutoTasks(ctx context.Context, f models.AutoTaskFilter) (*models.Page[models.AutoTask], error) {
	return s.store.ListAutoTasks(ctx, f)
}

// ListApplications returns a filtered page of applications (pass-through).
func (s *AutoTaskService) ListApplications(
	ctx context.Context, f models.AutoTaskApplicationFilter,
) (*models.Page[models.AutoTaskApplication], error) {
	return s.store.ListApplications(ctx, f)
}

// GetAutoTask returns one auto task (pass-through).
func (s *AutoTaskService) GetAutoTask(ctx context.Context, id int64) (*models.AutoTask, error) {
	return s.store.GetAutoTask(ctx, id)
}

// CreateAutoTask creates an auto task.
func (s *AutoTaskService) CreateAutoTask(
	ctx context.Context, adminID int64, req models.CreateAutoTaskRequest,
) (*models.AutoTask, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.store.CreateAutoTask(ctx, req)
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionCreateAutoTask, EntityType: models.EntityAutoTask,
		EntityID: a.ID, AdminID: adminID, New: a,
	})

	return a, nil
}

// UpdateAutoTask changes an auto task.
func (s *AutoTaskService) UpdateAutoTask(
	ctx context.Context, adminID, id int64, req models.UpdateAutoTaskRequest,
) (*models.AutoTask, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	old, err := s.store.GetAutoTask(ctx, id)
	if err != nil {
		return nil, err
	}

	a, err := s.store.UpdateAutoTask(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionUpdateAutoTask, EntityType: models.EntityAutoTask,
		EntityID: id, AdminID: adminID, Old: old, New: a,
	})

	return a, nil
}

// DeleteAutoTask removes an auto task and returns its last known state.
func (s *AutoTaskService) DeleteAutoTask(ctx context.Context, adminID, id int64) (*models.AutoTask, error) {
	old, err := s.store.GetAutoTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteAutoTask(ctx, id); err != nil {
		return nil, err
	}

	s.Publish(ctx, observer.Event{
		Action: models.ActionDeleteAutoTask, EntityType: models.EntityAutoTask,
		EntityID: id, AdminID: adminID, Old: old,
	})

	return old, nil
}
