package models

import (
	"encoding/json"
	"time"
)

// ProgressStatus tracks a user's progress on a project.
type ProgressStatus string

// Progress statuses. New records start as pending.
const (
	ProgressPending    ProgressStatus = "pending"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressRejected   ProgressStatus = "rejected"
)

// Valid reports whether s is a known progress status.
func (s ProgressStatus) Valid() bool {
	switch s {
	case ProgressPending, ProgressInProgress, ProgressCompleted, ProgressRejected:
		return true
	}

	return false
}

// ProgressProject links a user to a project they are working on. Events is
// the record's history, oldest first; it is always loaded and never nil.
type ProgressProject struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	ProjectID int64           `json:"projectId"`
	Status    ProgressStatus  `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Events    []ProgressEvent `json:"events"`
}

// ProgressEventType classifies an entry in a progress record's history.
type ProgressEventType string

// Event types written by the marketplace.
const (
	EventUserMessage    ProgressEventType = "USER_MESSAGE"
	EventProjectUpdated ProgressEventType = "PROJECT_UPDATED"
)

// ProgressEvent is one message or change notice attached to a progress
// record. The marketplace writes these; the admin API only reads them.
type ProgressEvent struct {
	ID          int64             `json:"id"`
	ProjectID   int64             `json:"projectId"`
	UserID      int64             `json:"userId"`
	Role        UserRole          `json:"role"`
	EventType   ProgressEventType `json:"eventType"`
	Description *string           `json:"description,omitempty"`
	Details     json.RawMessage   `json:"details,omitempty"`
	Message     *string           `json:"message,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// CreateProgressProjectRequest is the payload for creating a progress record.
type CreateProgressProjectRequest struct {
	UserID    int64           `json:"userId"`
	ProjectID int64           `json:"projectId"`
	Status    *ProgressStatus `json:"status,omitempty"`
}

// Validate checks ids and defaults the status to pending.
func (r *CreateProgressProjectRequest) Validate() error {
	if r.UserID <= 0 {
		return ErrMissingField("userId")
	}

	if r.ProjectID <= 0 {
		return ErrMissingField("projectId")
	}

	if r.Status == nil {
		st := ProgressPending
		r.Status = &st
	} else if !r.Status.Valid() {
		return NewValidationError("status", "is not a known progress status")
	}

	return nil
}

// UpdateProgressProjectRequest is a partial update of a progress record.
type UpdateProgressProjectRequest struct {
	UserID    *int64          `json:"userId,omitempty"`
	ProjectID *int64          `json:"projectId,omitempty"`
	Status    *ProgressStatus `json:"status,omitempty"`
}

// Validate checks UpdateProgressProjectRequest fields.
func (r *UpdateProgressProjectRequest) Validate() error {
	if r.UserID != nil && *r.UserID <= 0 {
		return NewValidationError("userId", "must be a positive integer")
	}

	if r.ProjectID != nil && *r.ProjectID <= 0 {
		return NewValidationError("projectId", "must be a positive integer")
	}

	if r.Status != nil && !r.Status.Valid() {
		return NewValidationError("status", "is not a known progress status")
	}

	return nil
}

// ProgressFilter narrows the progress list.
type ProgressFilter struct {
	UserID    *int64
	ProjectID *int64
	Status    ProgressStatus
	ListQuery
}
