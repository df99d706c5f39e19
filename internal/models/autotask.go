package models

import (
	"math"
	"net/url"
	"strings"
	"time"
)

// AutoTask is an automatically verified task with a fixed reward.
type AutoTask struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Reward       float64   `json:"reward"`
	URL          *string   `json:"url"`
	IsIntegrated bool      `json:"isIntegrated"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AutoTaskApplication records a user applying for an auto task.
type AutoTaskApplication struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	TaskID       int64     `json:"taskId"`
	IsIntegrated bool      `json:"isIntegrated"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateAutoTaskRequest is the payload for creating an auto task.
type CreateAutoTaskRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Reward       *float64 `json:"reward"`
	URL          *string  `json:"url,omitempty"`
	IsIntegrated *bool    `json:"isIntegrated,omitempty"`
}

// Validate requires title, description and reward.
func (r *CreateAutoTaskRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return ErrMissingField("title")
	}

	if len(r.Title) > maxShortField {
		return ErrFieldTooLong("title", maxShortField)
	}

	if strings.TrimSpace(r.Description) == "" {
		return ErrMissingField("description")
	}

	if r.Reward == nil {
		return ErrMissingField("reward")
	}

	if err := validateReward(*r.Reward); err != nil {
		return err
	}

	return validateTaskURL(r.URL)
}

// UpdateAutoTaskRequest is a partial update of an auto task.
type UpdateAutoTaskRequest struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Reward       *float64 `json:"reward,omitempty"`
	URL          *string  `json:"url,omitempty"`
	IsIntegrated *bool    `json:"isIntegrated,omitempty"`
}

// Validate checks UpdateAutoTaskRequest fields.
func (r *UpdateAutoTaskRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return NewValidationError("title", "cannot be empty")
	}

	if r.Title != nil && len(*r.Title) > maxShortField {
		return ErrFieldTooLong("title", maxShortField)
	}

	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		return NewValidationError("description", "cannot be empty")
	}

	if r.Reward != nil {
		if err := validateReward(*r.Reward); err != nil {
			return err
		}
	}

	return validateTaskURL(r.URL)
}

// AutoTaskFilter narrows the auto task list.
type AutoTaskFilter struct {
	Title        string
	Description  string
	RewardFrom   *float64
	RewardTo     *float64
	URL          string
	IsIntegrated *bool
	ListQuery
}

// AutoTaskApplicationFilter narrows the application list.
type AutoTaskApplicationFilter struct {
	UserID *int64
	TaskID *int64
	ListQuery
}

func validateReward(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return NewValidationError("reward", "must be a non-negative number")
	}

	return nil
}

func validateTaskURL(raw *string) error {
	if raw == nil {
		return nil
	}

	if len(*raw) > 2048 {
		return ErrFieldTooLong("url", 2048)
	}

	u, err := url.ParseRequestURI(*raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewValidationError("url", "must be an http(s) URL")
	}

	return nil
}
