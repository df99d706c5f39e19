// Package domain defines the canonical service interfaces shared by the API
// and middleware layers. Consumers should depend on these interfaces rather
// than re-declaring equivalent ones.
//
// Every mutating method takes the acting admin id explicitly; it comes from the
// verified access token and is what the audit trail records.
package domain

import (
	"context"

	"github.com/gigboard/gigadmin/internal/models"
)

// ProjectService defines project operations.
type ProjectService interface {
	ListProjects(ctx context.Context, f models.ProjectFilter) (*models.Page[models.Project], error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	CreateProject(ctx context.Context, adminID int64, req models.CreateProjectRequest) (*models.Project, error)
	UpdateProject(ctx context.Context, adminID, id int64, req models.UpdateProjectRequest) (*models.Project, error)
	UpdateProjectStatus(ctx context.Context, adminID, id int64, req models.UpdateProjectStatusRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, adminID, id int64) (*models.Project, error)
}

// ProgressProjectService defines progress record operations.
type ProgressProjectService interface {
	ListProgress(ctx context.Context, f models.ProgressFilter) (*models.Page[models.ProgressProject], error)
	GetProgress(ctx context.Context, id int64) (*models.ProgressProject, error)
	CreateProgress(ctx context.Context, adminID int64, req models.CreateProgressProjectRequest) (*models.ProgressProject, error)
	UpdateProgress(ctx context.Context, adminID, id int64, req models.UpdateProgressProjectRequest) (*models.ProgressProject, error)
	DeleteProgress(ctx context.Context, adminID, id int64) (*models.ProgressProject, error)
}

// AutoTaskService defines auto task operations.
type AutoTaskService interface {
	ListAutoTasks(ctx context.Context, f models.AutoTaskFilter) (*models.Page[models.AutoTask], error)
	ListApplications(ctx context.Context, f models.AutoTaskApplicationFilter) (*models.Page[models.AutoTaskApplication], error)
	GetAutoTask(ctx context.Context, id int64) (*models.AutoTask, error)
	CreateAutoTask(ctx context.Context, adminID int64, req models.CreateAutoTaskRequest) (*models.AutoTask, error)
	UpdateAutoTask(ctx context.Context, adminID, id int64, req models.UpdateAutoTaskRequest) (*models.AutoTask, error)
	DeleteAutoTask(ctx context.Context, adminID, id int64) (*models.AutoTask, error)
}

// TransactionService defines ledger operations.
type TransactionService interface {
	ListTransactions(ctx context.Context, f models.TransactionFilter) (*models.Page[models.Transaction], error)
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, adminID int64, req models.CreateTransactionRequest) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, adminID, id int64, req models.UpdateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, adminID, id int64) (*models.Transaction, error)
}

// UserService defines user account operations, including the UserAdmin flag.
type UserService interface {
	ListUsers(ctx context.Context, f models.UserFilter) (*models.Page[models.User], error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, adminID int64, req models.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, adminID, id int64, req models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, adminID, id int64) (*models.User, error)
	BanUser(ctx context.Context, adminID, id int64) (*models.User, error)
	UnbanUser(ctx context.Context, adminID, id int64) (*models.User, error)
	UpdateUserRole(ctx context.Context, adminID, id int64, req models.UpdateUserRoleRequest) (*models.User, error)
	UpdateUserAdmin(ctx context.Context, adminID, id int64, req models.UpdateUserAdminRequest) (*models.UserAdmin, error)
}

// AuditService defines the read side of the admin action log.
type AuditService interface {
	ListAll(ctx context.Context) ([]models.AuditRecord, error)
	Query(ctx context.Context, opts models.AuditQueryOpts) (*models.Page[models.AuditRecord], error)
}

// AuthService defines operator sign-in and token exchange.
type AuthService interface {
	Login(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, req models.RefreshTokenRequest) (*models.AuthResponse, error)
}

// TokenValidator resolves an access token to the admin id it was issued for.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (int64, error)
}

// AdminChecker reports whether an authenticated operator holds the admin flag.
type AdminChecker interface {
	IsAdmin(ctx context.Context, adminID int64) (bool, error)
}
