package api_test

import (
	"context"
	"time"

	"github.com/gigboard/gigadmin/internal/models"
)

// mockUserService implements domain.UserService for testing.
type mockUserService struct {
	listFn      func(ctx context.Context, f models.UserFilter) (*models.Page[models.User], error)
	getFn       func(ctx context.Context, id int64) (*models.User, error)
	createFn    func(ctx context.Context, adminID int64, req models.CreateUserRequest) (*models.User, error)
	updateFn    func(ctx context.Context, adminID, id int64, req models.UpdateUserRequest) (*models.User, error)
	deleteFn    func(ctx context.Context, adminID, id int64) (*models.User, error)
	banFn       func(ctx context.Context, adminID, id int64) (*models.User, error)
	roleFn      func(ctx context.Context, adminID, id int64, req models.UpdateUserRoleRequest) (*models.User, error)
	userAdminFn func(ctx context.Context, adminID, id int64, req models.UpdateUserAdminRequest) (*models.UserAdmin, error)
}

func (m *mockUserService) ListUsers(ctx context.Context, f models.UserFilter) (*models.Page[models.User], error) {
	return m.listFn(ctx, f)
}

func (m *mockUserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return m.getFn(ctx, id)
}

func (m *mockUserService) CreateUser(ctx context.Context, adminID int64, req models.CreateUserRequest) (*models.User, error) {
	return m.createFn(ctx, adminID, req)
}

func (m *mockUserService) UpdateUser(ctx context.Context, adminID, id int64, req models.UpdateUserRequest) (*models.User, error) {
	return m.updateFn(ctx, adminID, id, req)
}

func (m *mockUserService) DeleteUser(ctx context.Context, adminID, id int64) (*models.User, error) {
	return m.deleteFn(ctx, adminID, id)
}

func (m *mockUserService) BanUser(ctx context.Context, adminID, id int64) (*models.User, error) {
	return m.banFn(ctx, adminID, id)
}

func (m *mockUserService) UnbanUser(ctx context.Context, adminID, id int64) (*models.User, error) {
	return m.banFn(ctx, adminID, id)
}

func (m *mockUserService) UpdateUserRole(ctx context.Context, adminID, id int64, req models.UpdateUserRoleRequest) (*models.User, error) {
	return m.roleFn(ctx, adminID, id, req)
}

func (m *mockUserService) UpdateUserAdmin(ctx context.Context, adminID, id int64, req models.UpdateUserAdminRequest) (*models.UserAdmin, error) {
	return m.userAdminFn(ctx, adminID, id, req)
}

// mockProjectService implements domain.ProjectService for testing.
type mockProjectService struct {
	listFn   func(ctx context.Context, f models.ProjectFilter) (*models.Page[models.Project], error)
	getFn    func(ctx context.Context, id int64) (*models.Project, error)
	createFn func(ctx context.Context, adminID int64, req models.CreateProjectRequest) (*models.Project, error)
	updateFn func(ctx context.Context, adminID, id int64, req models.UpdateProjectRequest) (*models.Project, error)
	statusFn func(ctx context.Context, adminID, id int64, req models.UpdateProjectStatusRequest) (*models.Project, error)
	deleteFn func(ctx context.Context, adminID, id int64) (*models.Project, error)
}

func (m *mockProjectService) ListProjects(ctx context.Context, f models.ProjectFilter) (*models.Page[models.Project], error) {
	return m.listFn(ctx, f)
}

func (m *mockProjectService) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	return m.getFn(ctx, id)
}

func (m *mockProjectService) CreateProject(ctx context.Context, adminID int64, req models.CreateProjectRequest) (*models.Project, error) {
	return m.createFn(ctx, adminID, req)
}

func (m *mockProjectService) UpdateProject(ctx context.Context, adminID, id int64, req models.UpdateProjectRequest) (*models.Project, error) {
	return m.updateFn(ctx, adminID, id, req)
}

func (m *mockProjectService) UpdateProjectStatus(ctx context.Context, adminID, id int64, req models.UpdateProjectStatusRequest) (*models.Project, error) {
	return m.statusFn(ctx, adminID, id, req)
}

func (m *mockProjectService) DeleteProject(ctx context.Context, adminID, id int64) (*models.Project, error) {
	return m.deleteFn(ctx, adminID, id)
}

// mockTransactionService implements domain.TransactionService for testing.
type mockTransactionService struct {
	listFn   func(ctx context.Context, f models.TransactionFilter) (*models.Page[models.Transaction], error)
	createFn func(ctx context.Context, adminID int64, req models.CreateTransactionRequest) (*models.Transaction, error)
}

func (m *mockTransactionService) ListTransactions(ctx context.Context, f models.TransactionFilter) (*models.Page[models.Transaction], error) {
	return m.listFn(ctx, f)
}

func (m *mockTransactionService) GetTransaction(context.Context, int64) (*models.Transaction, error) {
	return nil, models.ErrTransactionNotFound
}

func (m *mockTransactionService) CreateTransaction(ctx context.Context, adminID int64, req models.CreateTransactionRequest) (*models.Transaction, error) {
	return m.createFn(ctx, adminID, req)
}

func (m *mockTransactionService) UpdateTransaction(context.Context, int64, int64, models.UpdateTransactionRequest) (*models.Transaction, error) {
	return nil, models.ErrTransactionNotFound
}

func (m *mockTransactionService) DeleteTransaction(context.Context, int64, int64) (*models.Transaction, error) {
	return nil, models.ErrTransactionNotFound
}

// mockAutoTaskService implements domain.AutoTaskService for testing.
type mockAutoTaskService struct {
	appsFn   func(ctx context.Context, f models.AutoTaskApplicationFilter) (*models.Page[models.AutoTaskApplication], error)
	updateFn func(ctx context.Context, adminID, id int64, req models.UpdateAutoTaskRequest) (*models.AutoTask, error)
}

func (m *mockAutoTaskService) ListAutoTasks(context.Context, models.AutoTaskFilter) (*models.Page[models.AutoTask], error) {
	return &models.Page[models.AutoTask]{Data: []models.AutoTask{}, Page: 1, Limit: 10}, nil
}

func (m *mockAutoTaskService) ListApplications(ctx context.Context, f models.AutoTaskApplicationFilter) (*models.Page[models.AutoTaskApplication], error) {
	return m.appsFn(ctx, f)
}

func (m *mockAutoTaskService) GetAutoTask(context.Context, int64) (*models.AutoTask, error) {
	return nil, models.ErrAutoTaskNotFound
}

func (m *mockAutoTaskService) CreateAutoTask(context.Context, int64, models.CreateAutoTaskRequest) (*models.AutoTask, error) {
	return nil, models.NewValidationError("title", "is required")
}

func (m *mockAutoTaskService) UpdateAutoTask(ctx context.Context, adminID, id int64, req models.UpdateAutoTaskRequest) (*models.AutoTask, error) {
	return m.updateFn(ctx, adminID, id, req)
}

func (m *mockAutoTaskService) DeleteAutoTask(context.Context, int64, int64) (*models.AutoTask, error) {
	return nil, models.ErrAutoTaskNotFound
}

// mockAuditService implements domain.AuditService for testing.
type mockAuditService struct {
	listAllFn func(ctx context.Context) ([]models.AuditRecord, error)
	queryFn   func(ctx context.Context, opts models.AuditQueryOpts) (*models.Page[models.AuditRecord], error)
}

func (m *mockAuditService) ListAll(ctx context.Context) ([]models.AuditRecord, error) {
	return m.listAllFn(ctx)
}

func (m *mockAuditService) Query(ctx context.Context, opts models.AuditQueryOpts) (*models.Page[models.AuditRecord], error) {
	return m.queryFn(ctx, opts)
}

// mockAuth implements api.Authenticator for testing. Tokens map to admin ids;
// admins lists which ids hold the admin flag.
type mockAuth struct {
	tokens  map[string]int64
	admins  map[int64]bool
	loginFn func(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)
}

func (m *mockAuth) Login(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	return m.loginFn(ctx, req)
}

func (m *mockAuth) Register(_ context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	return &models.AuthResponse{UserAdmin: &models.UserAdmin{ID: 9, Email: req.Email}, AccessToken: "a", RefreshToken: "r"}, nil
}

func (m *mockAuth) Refresh(_ context.Context, req models.RefreshTokenRequest) (*models.AuthResponse, error) {
	if req.RefreshToken != "good-refresh" {
		return nil, models.ErrInvalidToken
	}

	return &models.AuthResponse{UserAdmin: &models.UserAdmin{ID: 1}, AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (m *mockAuth) ValidateAccessToken(_ context.Context, token string) (int64, error) {
	if id, ok := m.tokens[token]; ok {
		return id, nil
	}

	return 0, models.ErrInvalidToken
}

func (m *mockAuth) IsAdmin(_ context.Context, adminID int64) (bool, error) {
	return m.admins[adminID], nil
}

// mockGuard records calls to the login guard.
type mockGuard struct {
	locked   time.Duration
	failures []string
	resets   []string
}

func (g *mockGuard) LockedFor(string) time.Duration { return g.locked }
func (g *mockGuard) RecordFailure(email string)     { g.failures = append(g.failures, email) }
func (g *mockGuard) Reset(email string)             { g.resets = append(g.resets, email) }

// mockPinger implements api.Pinger.
type mockPinger struct{ err error }

func (p *mockPinger) HealthCheck(context.Context) error { return p.err }
