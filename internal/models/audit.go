package models

import (
	"encoding/json"
	"time"
)

// Action tags an admin action. The set is open: new actions need no schema change.
type Action string

// Known admin actions.
const (
	ActionCreateProject       Action = "CREATE_PROJECT"
	ActionUpdateProject       Action = "UPDATE_PROJECT"
	ActionDeleteProject       Action = "DELETE_PROJECT"
	ActionUpdateProjectStatus Action = "UPDATE_PROJECT_STATUS"

	ActionCreateProgressProject Action = "CREATE_PROGRESS_PROJECT"
	ActionUpdateProgressProject Action = "UPDATE_PROGRESS_PROJECT"
	ActionDeleteProgressProject Action = "DELETE_PROGRESS_PROJECT"

	ActionCreateAutoTask Action = "CREATE_AUTO_TASK"
	ActionUpdateAutoTask Action = "UPDATE_AUTO_TASK"
	ActionDeleteAutoTask Action = "DELETE_AUTO_TASK"

	ActionCreateTransaction Action = "CREATE_TRANSACTION"
	ActionUpdateTransaction Action = "UPDATE_TRANSACTION"
	ActionDeleteTransaction Action = "DELETE_TRANSACTION"

	ActionCreateUser      Action = "CREATE_USER"
	ActionUpdateUser      Action = "UPDATE_USER"
	ActionDeleteUser      Action = "DELETE_USER"
	ActionBanUser         Action = "BAN_USER"
	ActionUnbanUser       Action = "UNBAN_USER"
	ActionUpdateUserRole  Action = "UPDATE_USER_ROLE"
	ActionUpdateUserAdmin Action = "UPDATE_USER_ADMIN"
)

// EntityType names the kind of entity an audit record refers to.
type EntityType string

// Audited entity types.
const (
	EntityProject         EntityType = "Project"
	EntityProgressProject EntityType = "ProgressProject"
	EntityAutoTask        EntityType = "AutoTask"
	EntityTransaction     EntityType = "Transaction"
	EntityUser            EntityType = "User"
	EntityUserAdmin       EntityType = "UserAdmin"
)

// AuditDetails is the payload handed to observers for one completed mutation.
// OldData is nil for creations and NewData is nil for deletions.
type AuditDetails struct {
	Action     Action          `json:"action"`
	EntityType EntityType      `json:"entityType"`
	EntityID   int64           `json:"entityId"`
	OldData    json.RawMessage `json:"oldData"`
	NewData    json.RawMessage `json:"newData"`
	AdminID    int64           `json:"adminId"`
}

// AuditRecord is one persisted, immutable admin action log row.
type AuditRecord struct {
	ID         int64           `json:"id"`
	Action     Action          `json:"action"`
	EntityType EntityType      `json:"entityType"`
	EntityID   int64           `json:"entityId"`
	OldData    json.RawMessage `json:"oldData"`
	NewData    json.RawMessage `json:"newData"`
	AdminID    int64           `json:"adminId"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// AuditQueryOpts holds filters for the paginated audit log query.
type AuditQueryOpts struct {
	EntityType EntityType
	EntityID   *int64
	Action     Action
	AdminID    *int64
	Since      *time.Time
	Page       int
	Limit      int
}
