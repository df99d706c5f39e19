package store

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gigboard/gigadmin/internal/models"
)

// userColumns selects a user with its tag collection folded into one array.
const userColumns = `u.id, u.telegram_id, u.username, u.is_baned, u.is_verified,
	u.ref_code, u.role, u.balance::float8,
	COALESCE((SELECT array_agg(t.tag ORDER BY t.tag) FROM user_meta_tags t WHERE t.user_id = u.id), '{}'),
	u.created_at, u.updated_at`

const userAdminColumns = `id, email, password, is_admin, created_at, updated_at`

const projectColumns = `p.id, p.author_id, p.title, p.description, p.banner_url,
	p.files, p.tags, p.category, p.status, p.created_at, p.updated_at`

const taskColumns = `t.id, t.title, t.description, t.price::float8, t.created_at, t.updated_at`

const progressColumns = `id, user_id, project_id, status, created_at, updated_at`

const progressEventColumns = `e.id, e.project_id, e.user_id, e.role, e.event_type,
	e.description, e.details, e.message, e.created_at`

const autoTaskColumns = `id, title, description, reward::float8, url, is_integrated, created_at, updated_at`

const applicationColumns = `id, user_id, task_id, is_integrated, created_at`

const transactionColumns = `id, project_id, task_id, from_user_id, to_user_id,
	amount::float8, type, created_at, updated_at`

const auditColumns = `id, action, entity_type, entity_id, old_data, new_data, admin_id, created_at`

func scanUser(scan func(dest ...any) error) (*models.User, error) {
	var u models.User

	err := scan(
		&u.ID, &u.TelegramID, &u.Username, &u.IsBaned, &u.IsVerified,
		&u.RefCode, &u.Role, &u.Balance, &u.Tags,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func scanUserAdmin(scan func(dest ...any) error) (*models.UserAdmin, error) {
	var a models.UserAdmin

	if err := scan(&a.ID, &a.Email, &a.PasswordHash, &a.IsAdmin, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}

	return &a, nil
}

func scanProject(scan func(dest ...any) error) (*models.Project, error) {
	var p models.Project

	err := scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Description, &p.BannerURL,
		&p.Files, &p.Tags, &p.Category, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Tasks = []models.Task{}

	return &p, nil
}

func scanTask(scan func(dest ...any) error) (*models.Task, error) {
	var t models.Task

	if err := scan(&t.ID, &t.Title, &t.Description, &t.Price, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	return &t, nil
}

func scanProgress(scan func(dest ...any) error) (*models.ProgressProject, error) {
	var p models.ProgressProject

	if err := scan(&p.ID, &p.UserID, &p.ProjectID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	p.Events = []models.ProgressEvent{}

	return &p, nil
}

func scanProgressEvent(scan func(dest ...any) error) (*models.ProgressEvent, error) {
	var e models.ProgressEvent
	var details []byte

	err := scan(&e.ID, &e.ProjectID, &e.UserID, &e.Role, &e.EventType,
		&e.Description, &details, &e.Message, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	e.Details = details

	return &e, nil
}

func scanAutoTask(scan func(dest ...any) error) (*models.AutoTask, error) {
	var a models.AutoTask

	err := scan(&a.ID, &a.Title, &a.Description, &a.Reward, &a.URL, &a.IsIntegrated, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func scanApplication(scan func(dest ...any) error) (*models.AutoTaskApplication, error) {
	var a models.AutoTaskApplication

	if err := scan(&a.ID, &a.UserID, &a.TaskID, &a.IsIntegrated, &a.CreatedAt); err != nil {
		return nil, err
	}

	return &a, nil
}

func scanTransaction(scan func(dest ...any) error) (*models.Transaction, error) {
	var t models.Transaction

	err := scan(
		&t.ID, &t.ProjectID, &t.TaskID, &t.FromUserID, &t.ToUserID,
		&t.Amount, &t.Type, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func scanAudit(scan func(dest ...any) error) (*models.AuditRecord, error) {
	var r models.AuditRecord
	var oldData, newData []byte

	err := scan(&r.ID, &r.Action, &r.EntityType, &r.EntityID, &oldData, &newData, &r.AdminID, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	r.OldData = oldData
	r.NewData = newData

	return &r, nil
}

// collect drains rows through scan and returns a non-nil slice.
func collect[T any](rows pgx.Rows, scan func(func(dest ...any) error) (*T, error), what string) ([]T, error) {
	defer rows.Close()

	out := []T{}

	for rows.Next() {
		v, err := scan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", what, err)
		}

		out = append(out, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", what, err)
	}

	return out, nil
}
