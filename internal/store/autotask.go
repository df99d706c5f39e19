package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gigboard/gigadmin/internal/models"
)

// AutoTaskStore provides data access for auto_tasks and their applications.
type AutoTaskStore struct {
	Base
}

// NewAutoTaskStore creates an AutoTaskStore.
func NewAutoTaskStore(base Base) *AutoTaskStore {
	return &AutoTaskStore{Base: base}
}

var autoTaskSortColumns = sortColumns{
	"id":           "id",
	"title":        "title",
	"description":  "description",
	"reward":       "reward",
	"url":          "url",
	"isIntegrated": "is_integrated",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

var applicationSortColumns = sortColumns{
	"id":           "id",
	"userId":       "user_id",
	"taskId":       "task_id",
	"isIntegrated": "is_integrated",
	"createdAt":    "created_at",
}

// ListAutoTasks returns a page of auto tasks.
func (s *AutoTaskStore) ListAutoTasks(ctx context.Context, f models.AutoTaskFilter) (*models.Page[models.AutoTask], error) {
	f.Normalize()

	order, err := orderBy(f.Sort(), autoTaskSortColumns, "id")
	if err != nil {
		return nil, err
	}

	w := &sqlArgs{}

	if f.Title != "" {
		w.where("title ILIKE ?", likePattern(f.Title))
	}

	if f.Description != "" {
		w.where("description ILIKE ?", likePattern(f.Description))
	}

	if f.RewardFrom != nil {
		w.where("reward >= ?", *f.RewardFrom)
	}

	if f.RewardTo != nil {
		w.where("reward <= ?", *f.RewardTo)
	}

	if f.URL != "" {
		w.where("url ILIKE ?", likePattern(f.URL))
	}

	if f.IsIntegrated != nil {
		w.where("is_integrated = ?", *f.IsIntegrated)
	}

	return listPage(ctx, &s.Base, "auto_tasks", autoTaskColumns, w, order, f.ListQuery,
		func(rows pgx.Rows) ([]models.AutoTask, error) {
			return collect(rows, scanAutoTask, "auto task")
		},
	)
}

// ListApplications returns a page of auto task applications.
func (s *AutoTaskStore) ListApplications(
	ctx context.Context, f models.AutoTaskApplicationFilter,
) (*models.Page[models.AutoTaskApplication], error) {
	f.Normalize()

	order, err := orderBy(f.Sort(), applicationSortColumns, "id")
	if err != nil {
		return nil, err
	}

	w := &sqlArgs{}

	if f.UserID != nil {
		w.where("user_id = ?", *f.UserID)
	}

	if f.TaskID != nil {
		w.where("task_id = ?", *f.TaskID)
	}

	return listPage(ctx, &s.Base, "auto_task_applications", applicationColumns, w, order, f.ListQuery,
		func(rows pgx.Rows) ([]models.AutoTaskApplication, error) {
			return collect(rows, scanApplication, "auto task application")
		},
	)
}

// GetAutoTask returns one auto task.
func (s *AutoTaskStore) GetAutoTask(ctx context.Context, id int64) (*models.AutoTask, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	a, err := scanAutoTask(s.Pool.QueryRow(ctx,
		"SELECT "+autoTaskColumns+" FROM auto_tasks WHERE id = $1", id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrAutoTaskNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting auto task: %w", err)
	}

	return a, nil
}

// CreateAutoTask inserts an auto task. A reused url yields ErrDuplicateKey.
func (s *AutoTaskStore) CreateAutoTask(ctx context.Context, req models.CreateAutoTaskRequest) (*models.AutoTask, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var reward float64
	if req.Reward != nil {
		reward = *req.Reward
	}

	integrated := false
	if req.IsIntegrated != nil {
		integrated = *req.IsIntegrated
	}

	a, err := scanAutoTask(s.Pool.QueryRow(ctx, `
		INSERT INTO auto_tasks (title, description, reward, url, is_integrated)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+autoTaskColumns,
		req.Title, req.Description, reward, req.URL, integrated,
	).Scan)
	if err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrAutoTaskNotFound), "creating auto task")
	}

	return a, nil
}

// UpdateAutoTask applies a partial update.
func (s *AutoTaskStore) UpdateAutoTask(ctx context.Context, id int64, req models.UpdateAutoTaskRequest) (*models.AutoTask, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := &sqlArgs{}

	if req.Title != nil {
		set.set("title", *req.Title)
	}

	if req.Description != nil {
		set.set("description", *req.Description)
	}

	if req.Reward != nil {
		set.set("reward", *req.Reward)
	}

	if req.URL != nil {
		set.set("url", *req.URL)
	}

	if req.IsIntegrated != nil {
		set.set("is_integrated", *req.IsIntegrated)
	}

	set.conds = append(set.conds, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE auto_tasks SET %s WHERE id = %s RETURNING %s",
		set.setClause(), set.arg(id), autoTaskColumns)

	a, err := scanAutoTask(s.Pool.QueryRow(ctx, query, set.args...).Scan)
	if err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrAutoTaskNotFound), "updating auto task")
	}

	return a, nil
}

// DeleteAutoTask removes an auto task; its applications cascade.
func (s *AutoTaskStore) DeleteAutoTask(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var got int64

	err := s.Pool.QueryRow(ctx, "DELETE FROM auto_tasks WHERE id = $1 RETURNING id", id).Scan(&got)
	if err != nil {
		return wrapUnclassified(classifyDelete(err, models.ErrAutoTaskNotFound), "deleting auto task")
	}

	return nil
}
