package models

import (
	"math"
	"strings"
	"time"
)

// ProjectStatus is the publication state of a project.
type ProjectStatus string

// Project statuses. New projects start as drafts.
const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectModeration ProjectStatus = "moderation"
	ProjectActive     ProjectStatus = "active"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectClosed     ProjectStatus = "closed"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectDraft, ProjectModeration, ProjectActive, ProjectCompleted, ProjectClosed:
		return true
	}

	return false
}

// Task is a priced subtask linked to one or more projects.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Project is a marketplace project with its linked subtasks.
type Project struct {
	ID          int64         `json:"id"`
	AuthorID    int64         `json:"authorId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	BannerURL   *string       `json:"bannerUrl"`
	Files       []string      `json:"files"`
	Tags        []string      `json:"tags"`
	Category    string        `json:"category"`
	Status      ProjectStatus `json:"status"`
	Tasks       []Task        `json:"tasks"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// SubtaskInput creates a subtask, or updates a linked one when ID is set.
type SubtaskInput struct {
	ID          *int64  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Validate checks a single subtask payload.
func (s *SubtaskInput) Validate() error {
	if s.ID != nil && *s.ID <= 0 {
		return NewValidationError("subtasks.id", "must be a positive integer")
	}

	if strings.TrimSpace(s.Title) == "" {
		return ErrMissingField("subtasks.title")
	}

	if len(s.Title) > maxShortField {
		return ErrFieldTooLong("subtasks.title", maxShortField)
	}

	if strings.TrimSpace(s.Description) == "" {
		return ErrMissingField("subtasks.description")
	}

	if math.IsNaN(s.Price) || math.IsInf(s.Price, 0) || s.Price < 0 {
		return NewValidationError("subtasks.price", "must be a non-negative number")
	}

	return nil
}

// CreateProjectRequest creates a project together with its subtasks.
type CreateProjectRequest struct {
	AuthorID    int64          `json:"authorId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	BannerURL   *string        `json:"bannerUrl,omitempty"`
	Files       []string       `json:"files,omitempty"`
	Tags        []string       `json:"tags"`
	Category    string         `json:"category"`
	Subtasks    []SubtaskInput `json:"subtasks"`
}

// Validate checks required fields on CreateProjectRequest.
func (r *CreateProjectRequest) Validate() error {
	if r.AuthorID <= 0 {
		return ErrMissingField("authorId")
	}

	if err := validateProjectText(&r.Title, &r.Description, &r.Category); err != nil {
		return err
	}

	if len(r.Tags) == 0 {
		return NewValidationError("tags", "must contain at least 1 element")
	}

	if err := validateTags(r.Tags); err != nil {
		return err
	}

	if len(r.Subtasks) == 0 {
		return NewValidationError("subtasks", "must contain at least 1 element")
	}

	for i := range r.Subtasks {
		if r.Subtasks[i].ID != nil {
			return NewValidationError("subtasks.id", "must not be set on create")
		}

		if err := r.Subtasks[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// UpdateProjectRequest changes project fields and its subtasks. Subtasks with an
// ID are updated in place, the rest are created and linked. DeletedTasks lists
// task ids whose link to the project is removed.
type UpdateProjectRequest struct {
	Title        *string        `json:"title,omitempty"`
	Description  *string        `json:"description,omitempty"`
	BannerURL    *string        `json:"bannerUrl,omitempty"`
	Files        []string       `json:"files,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Category     *string        `json:"category,omitempty"`
	Subtasks     []SubtaskInput `json:"subtasks,omitempty"`
	DeletedTasks []int64        `json:"deletedTasks,omitempty"`
}

// Validate checks UpdateProjectRequest fields.
func (r *UpdateProjectRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return NewValidationError("title", "cannot be empty")
	}

	if r.Title != nil && len(*r.Title) > maxShortField {
		return ErrFieldTooLong("title", maxShortField)
	}

	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		return NewValidationError("description", "cannot be empty")
	}

	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		return NewValidationError("category", "cannot be empty")
	}

	if r.Tags != nil && len(r.Tags) == 0 {
		return NewValidationError("tags", "must contain at least 1 element")
	}

	if err := validateTags(r.Tags); err != nil {
		return err
	}

	for i := range r.Subtasks {
		if err := r.Subtasks[i].Validate(); err != nil {
			return err
		}
	}

	for _, id := range r.DeletedTasks {
		if id <= 0 {
			return NewValidationError("deletedTasks", "must contain positive ids")
		}
	}

	return nil
}

// UpdateProjectStatusRequest is the payload for a status transition.
type UpdateProjectStatusRequest struct {
	Status ProjectStatus `json:"status"`
}

// Validate checks the requested status.
func (r *UpdateProjectStatusRequest) Validate() error {
	if r.Status == "" {
		return ErrMissingField("status")
	}

	if !r.Status.Valid() {
		return NewValidationError("status", "is not a known project status")
	}

	return nil
}

// ProjectFilter narrows the project list. Search matches title or description.
type ProjectFilter struct {
	Search      string
	AuthorID    *int64
	Title       string
	Description string
	Tags        []string
	Category    string
	Status      ProjectStatus
	ListQuery
}

func validateProjectText(title, description, category *string) error {
	*title = strings.TrimSpace(*title)
	if *title == "" {
		return ErrMissingField("title")
	}

	if len(*title) > maxShortField {
		return ErrFieldTooLong("title", maxShortField)
	}

	if strings.TrimSpace(*description) == "" {
		return ErrMissingField("description")
	}

	*category = strings.TrimSpace(*category)
	if *category == "" {
		return ErrMissingField("category")
	}

	if len(*category) > maxShortField {
		return ErrFieldTooLong("category", maxShortField)
	}

	return nil
}
