package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/models"
)

// ProjectStore provides data access for projects, tasks and their links.
type ProjectStore struct {
	Base
}

// NewProjectStore creates a ProjectStore.
func NewProjectStore(base Base) *ProjectStore {
	return &ProjectStore{Base: base}
}

var projectSortColumns = sortColumns{
	"id":          "p.id",
	"authorId":    "p.author_id",
	"title":       "p.title",
	"description": "p.description",
	"category":    "p.category",
	"status":      "p.status",
	"createdAt":   "p.created_at",
	"updatedAt":   "p.updated_at",
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// loadTasks attaches linked tasks to each project, ordered by task id.
func loadTasks(ctx context.Context, q queryer, projects []*models.Project) error {
	if len(projects) == 0 {
		return nil
	}

	ids := make([]int64, len(projects))
	byID := make(map[int64]*models.Project, len(projects))

	for i, p := range projects {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	rows, err := q.Query(ctx, `
		SELECT pt.project_id, `+taskColumns+`
		FROM project_tasks pt
		JOIN tasks t ON t.id = pt.task_id
		WHERE pt.project_id = ANY($1)
		ORDER BY t.id`, ids)
	if err != nil {
		return fmt.Errorf("querying project tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID int64

		t, err := scanTask(func(dest ...any) error {
			return rows.Scan(append([]any{&projectID}, dest...)...)
		})
		if err != nil {
			return fmt.Errorf("scanning project task: %w", err)
		}

		if p, ok := byID[projectID]; ok {
			p.Tasks = append(p.Tasks, *t)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating project tasks: %w", err)
	}

	return nil
}

func getProject(ctx context.Context, q queryer, id int64) (*models.Project, error) {
	p, err := scanProject(q.QueryRow(ctx, "SELECT "+projectColumns+" FROM projects p WHERE p.id = $1", id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrProjectNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}

	if err := loadTasks(ctx, q, []*models.Project{p}); err != nil {
		return nil, err
	}

	return p, nil
}

// GetProject returns a project with its linked tasks.
func (s *ProjectStore) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return getProject(ctx, s.Pool, id)
}

// ListProjects returns a page of projects with their tasks.
func (s *ProjectStore) ListProjects(ctx context.Context, f models.ProjectFilter) (*models.Page[models.Project], error) {
	f.Normalize()

	order, err := orderBy(f.Sort(), projectSortColumns, "p.id")
	if err != nil {
		return nil, err
	}

	w := &sqlArgs{}

	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := likePattern(term)
		w.where("(p.title ILIKE ? OR p.description ILIKE ?)", pattern, pattern)
	}

	if f.AuthorID != nil {
		w.where("p.author_id = ?", *f.AuthorID)
	}

	if f.Title != "" {
		w.where("p.title ILIKE ?", likePattern(f.Title))
	}

	if f.Description != "" {
		w.where("p.description ILIKE ?", likePattern(f.Description))
	}

	if len(f.Tags) > 0 {
		w.where("p.tags && ?::text[]", f.Tags)
	}

	if f.Category != "" {
		w.where("LOWER(p.category) = LOWER(?)", f.Category)
	}

	if f.Status != "" {
		w.where("p.status = ?", string(f.Status))
	}

	page, err := listPage(ctx, &s.Base, "projects p", projectColumns, w, order, f.ListQuery,
		func(rows pgx.Rows) ([]models.Project, error) {
			return collect(rows, scanProject, "project")
		},
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ptrs := make([]*models.Project, len(page.Data))
	for i := range page.Data {
		ptrs[i] = &page.Data[i]
	}

	if err := loadTasks(ctx, s.Pool, ptrs); err != nil {
		return nil, err
	}

	return page, nil
}

func insertLinkedTask(ctx context.Context, tx pgx.Tx, projectID int64, in models.SubtaskInput) error {
	var taskID int64

	err := tx.QueryRow(ctx, `
		INSERT INTO tasks (title, description, price)
		VALUES ($1, $2, $3)
		RETURNING id`,
		strings.TrimSpace(in.Title), in.Description, in.Price,
	).Scan(&taskID)
	if err != nil {
		return wrapUnclassified(classifyWrite(err, models.ErrTaskNotFound), "creating task")
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO project_tasks (project_id, task_id) VALUES ($1, $2)", projectID, taskID,
	); err != nil {
		return wrapUnclassified(classifyWrite(err, models.ErrTaskNotFound), "linking task")
	}

	return nil
}

// CreateProject inserts a draft project with its subtasks and links, all or nothing.
func (s *ProjectStore) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	files := req.Files
	if files == nil {
		files = []string{}
	}

	var id int64

	err = tx.QueryRow(ctx, `
		INSERT INTO projects (author_id, title, description, banner_url, files, tags, category, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		req.AuthorID, req.Title, req.Description, req.BannerURL, files, req.Tags, req.Category,
		string(models.ProjectDraft),
	).Scan(&id)
	if err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrProjectNotFound), "creating project")
	}

	for _, st := range req.Subtasks {
		if err := insertLinkedTask(ctx, tx, id, st); err != nil {
			return nil, err
		}
	}

	p, err := getProject(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing project create: %w", err)
	}

	return p, nil
}

// UpdateProject applies a partial update in one transaction. Subtasks with an
// id must already be linked to the project; subtasks without one are created
// and linked. DeletedTasks unlinks tasks; an absent link is logged and skipped.
func (s *ProjectStore) UpdateProject(ctx context.Context, id int64, req models.UpdateProjectRequest) (*models.Project, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	set := &sqlArgs{}

	if req.Title != nil {
		set.set("title", strings.TrimSpace(*req.Title))
	}

	if req.Description != nil {
		set.set("description", *req.Description)
	}

	if req.BannerURL != nil {
		set.set("banner_url", *req.BannerURL)
	}

	if req.Files != nil {
		set.set("files", req.Files)
	}

	if req.Tags != nil {
		set.set("tags", req.Tags)
	}

	if req.Category != nil {
		set.set("category", strings.TrimSpace(*req.Category))
	}

	set.conds = append(set.conds, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = %s RETURNING id", set.setClause(), set.arg(id))

	var got int64
	if err := tx.QueryRow(ctx, query, set.args...).Scan(&got); err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrProjectNotFound), "updating project")
	}

	for _, st := range req.Subtasks {
		if st.ID == nil {
			if err := insertLinkedTask(ctx, tx, id, st); err != nil {
				return nil, err
			}

			continue
		}

		tag, err := tx.Exec(ctx, `
			UPDATE tasks t SET title = $3, description = $4, price = $5, updated_at = NOW()
			FROM project_tasks pt
			WHERE pt.task_id = t.id AND pt.project_id = $1 AND t.id = $2`,
			id, *st.ID, strings.TrimSpace(st.Title), st.Description, st.Price,
		)
		if err != nil {
			return nil, wrapUnclassified(classifyWrite(err, models.ErrTaskNotFound), "updating task")
		}

		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("task %d on project %d: %w", *st.ID, id, models.ErrTaskNotFound)
		}
	}

	for _, taskID := range req.DeletedTasks {
		tag, err := tx.Exec(ctx,
			"DELETE FROM project_tasks WHERE project_id = $1 AND task_id = $2", id, taskID)
		if err != nil {
			return nil, fmt.Errorf("unlinking task: %w", err)
		}

		if tag.RowsAffected() == 0 {
			s.Log.WithFields(logrus.Fields{
				"project_id": id,
				"task_id":    taskID,
			}).Warn("task link not found, skipping")
		}
	}

	p, err := getProject(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing project update: %w", err)
	}

	return p, nil
}

// SetProjectStatus changes only the status of a project.
func (s *ProjectStore) SetProjectStatus(ctx context.Context, id int64, status models.ProjectStatus) (*models.Project, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var got int64

	err = tx.QueryRow(ctx,
		"UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING id",
		id, string(status),
	).Scan(&got)
	if err != nil {
		return nil, wrapUnclassified(classifyWrite(err, models.ErrProjectNotFound), "updating project status")
	}

	p, err := getProject(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing project status: %w", err)
	}

	return p, nil
}

// DeleteProject removes a project. Links and progress records cascade;
// transactions referencing it block the delete.
func (s *ProjectStore) DeleteProject(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var got int64

	err := s.Pool.QueryRow(ctx, "DELETE FROM projects WHERE id = $1 RETURNING id", id).Scan(&got)
	if err != nil {
		return wrapUnclassified(classifyDelete(err, models.ErrProjectNotFound), "deleting project")
	}

	return nil
}

// ProjectExists reports whether a project row exists.
func (s *ProjectStore) ProjectExists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var ok bool
	if err := s.Pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)", id).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking project: %w", err)
	}

	return ok, nil
}
