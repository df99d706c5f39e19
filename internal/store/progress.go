package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gigboard/gigadmin/internal/models"
)

// ProgressStore provides data access for progress_projects.
type ProgressStore struct {
	Base
}

// NewProgressStore creates a ProgressStore.
func NewProgressStore(base Base) *ProgressStore {
	return &ProgressStore{Base: base}
}

var progressSortColumns = sortColumns{
	"id":        "id",
	"userId":    "user_id",
	"projectId": "project_id",
	"status":    "status",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// loadEvents attaches each record's events, oldest first.
func loadEvents(ctx context.Context, q queryer, records []*models.ProgressProject) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]int64, len(records))
	byID := make(map[int64]*models.ProgressProject, len(records))

	for i, r := range records {
		ids[i] = r.ID
		byID[r.ID] = r
	}

	rows, err := q.Query(ctx, `
		SELECT e.progress_project_id, `+progressEventColumns+`
		FROM progress_events e
		WHERE e.progress_project_id = ANY($1)
		ORDER BY e.id`, ids)
	if err != nil {
		return fmt.Errorf("querying progress events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var progressID int64

		e, err := scanProgressEvent(func(dest ...any) error {
			return rows.Scan(append([]any{&progressID}, dest...)...)
		})
		if err != nil {
			return fmt.Errorf("scanning progress event: %w", err)
		}

		if r, ok := byID[progressID]; ok {
			r.Events = append(r.Events, *e)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating progress events: %w", err)
	}

	return nil
}

// withEvents loads the events of a single record.
func (s *ProgressStore) withEvents(ctx context.Context, p *models.ProgressProject) (*models.ProgressProject, error) {
	if err := loadEvents(ctx, s.Pool, []*models.ProgressProject{p}); err != nil {
		return nil, err
	}

	return p, nil
}

// ListProgress returns a page of progress records with their events.
func (s *ProgressStore) ListProgress(ctx context.Context, f models.ProgressFilter) (*models.Page[models.ProgressProject], error) {
	f.Normalize()

	order, err := orderBy(f.Sort(), progressSortColumns, "id")
	if err != nil {
		return nil, err
	}

	w := &sqlArgs{}

	if f.UserID != nil {
		w.where("user_id = ?", *f.UserID)
	}

	if f.ProjectID != nil {
		w.where("project_id = ?", *f.ProjectID)
	}

	if f.Status != "" {
		w.where("status = ?", string(f.Status))
	}

	page, err := listPage(ctx, &s.Base, "progress_projects", progressColumns, w, order, f.ListQuery,
		func(rows pgx.Rows) ([]models.ProgressProject, error) {
			return collect(rows, scanProgress, "progress project")
		},
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ptrs := make([]*models.ProgressProject, len(page.Data))
	for i := range page.Data {
		ptrs[i] = &page.Data[i]
	}

	if err := loadEvents(ctx, s.Pool, ptrs); err != nil {
		return nil, err
	}

	return page, nil
}

// GetProgress returns one progress record with its events.
func (s *ProgressStore) GetProgress(ctx context.Context, id int64) (*models.ProgressProject, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p, err := scanProgress(s.Pool.QueryRow(ctx,
		"SELECT "+progressColumns+" FROM progress_projects WHERE id = $1", id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrProgressNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting progress project: %w", err)
	}

	return s.withEvents(ctx, p)
}

// CreateProgress inserts a progress record. A dangling user or project id
// yields ErrReferenceNotFound.
func (s *ProgressStore) CreateProgress(ctx context.Context, req models.CreateProgressProjectRequest) (*models.ProgressProject, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	status := models.ProgressPending
	if req.Status != nil {
		status = *req.Status
	}

	p, err := scanProgress(s.Pool.QueryRow(ctx, `
		INSERT INTO progress_projects (user_id, project_id, status)
		VALUES ($1, $2, $3)
		RETURNING `+progressColumns,
		req.UserID, req.ProjectID, string(status),
	).Scan)
	if err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrProgressNotFound), "creating progress project")
	}

	return p, nil
}

// UpdateProgress applies a partial update.
func (s *ProgressStore) UpdateProgress(ctx context.Context, id int64, req models.UpdateProgressProjectRequest) (*models.ProgressProject, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := &sqlArgs{}

	if req.UserID != nil {
		set.set("user_id", *req.UserID)
	}

	if req.ProjectID != nil {
		set.set("project_id", *req.ProjectID)
	}

	if req.Status != nil {
		set.set("status", string(*req.Status))
	}

	set.conds = append(set.conds, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE progress_projects SET %s WHERE id = %s RETURNING %s",
		set.setClause(), set.arg(id), progressColumns)

	p, err := scanProgress(s.Pool.QueryRow(ctx, query, set.args...).Scan)
	if err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrProgressNotFound), "updating progress project")
	}

	return s.withEvents(ctx, p)
}

// DeleteProgress removes a progress record and, by cascade, its events.
func (s *ProgressStore) DeleteProgress(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var got int64

	err := s.Pool.QueryRow(ctx, "DELETE FROM progress_projects WHERE id = $1 RETURNING id", id).Scan(&got)
	if err != nil {
		return wrapUnclassified(classifyDelete(err, models.ErrProgressNotFound), "deleting progress project")
	}

	return nil
}
