package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/auth"
	"github.com/gigboard/gigadmin/internal/models"
)

var errDBDown = errors.New("db down")

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

// callLog records method names in call order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) record(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
}

func (c *callLog) called(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.calls {
		if n == name {
			return true
		}
	}

	return false
}

// notification is one Update call seen by recordingObserver.
type notification struct {
	action  models.Action
	details models.AuditDetails
}

// recordingObserver captures every notification; err is returned from Update.
type recordingObserver struct {
	mu   sync.Mutex
	got  []notification
	err  error
	name string
}

func (o *recordingObserver) Update(_ context.Context, action models.Action, details models.AuditDetails) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, notification{action: action, details: details})

	return o.err
}

func (o *recordingObserver) Name() string {
	if o.name == "" {
		return "recording"
	}

	return o.name
}

func (o *recordingObserver) notifications() []notification {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]notification, len(o.got))
	copy(out, o.got)

	return out
}

// mockUserStore records calls and returns configured responses.
type mockUserStore struct {
	callLog

	getUser    func(ctx context.Context, id int64) (*models.User, error)
	createUser func(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	updateUser func(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error)
	setBanned  func(ctx context.Context, id int64, banned bool) (*models.User, error)
	setRole    func(ctx context.Context, id int64, role models.UserRole) (*models.User, error)
	deleteUser func(ctx context.Context, id int64) error
}

func (m *mockUserStore) ListUsers(context.Context, models.UserFilter) (*models.Page[models.User], error) {
	m.record("ListUsers")
	return &models.Page[models.User]{Data: []models.User{}}, nil
}

func (m *mockUserStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	m.record("GetUser")
	return m.getUser(ctx, id)
}

func (m *mockUserStore) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	m.record("CreateUser")
	return m.createUser(ctx, req)
}

func (m *mockUserStore) UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error) {
	m.record("UpdateUser")
	return m.updateUser(ctx, id, req)
}

func (m *mockUserStore) SetBanned(ctx context.Context, id int64, banned bool) (*models.User, error) {
	m.record("SetBanned")
	return m.setBanned(ctx, id, banned)
}

func (m *mockUserStore) SetRole(ctx context.Context, id int64, role models.UserRole) (*models.User, error) {
	m.record("SetRole")
	return m.setRole(ctx, id, role)
}

func (m *mockUserStore) DeleteUser(ctx context.Context, id int64) error {
	m.record("DeleteUser")
	return m.deleteUser(ctx, id)
}

// mockAdminStore backs both AuthService and the UserAdmin flag.
type mockAdminStore struct {
	callLog

	createAdmin     func(ctx context.Context, email, hash string, isAdmin bool) (*models.UserAdmin, error)
	getAdminByEmail func(ctx context.Context, email string) (*models.UserAdmin, error)
	getAdmin        func(ctx context.Context, id int64) (*models.UserAdmin, error)
	setAdminFlag    func(ctx context.Context, id int64, isAdmin bool) (*models.UserAdmin, error)
	ensureAdmin     func(ctx context.Context, email, hash string) (bool, error)
}

func (m *mockAdminStore) CreateAdmin(ctx context.Context, email, hash string, isAdmin bool) (*models.UserAdmin, error) {
	m.record("CreateAdmin")
	return m.createAdmin(ctx, email, hash, isAdmin)
}

func (m *mockAdminStore) GetAdminByEmail(ctx context.Context, email string) (*models.UserAdmin, error) {
	m.record("GetAdminByEmail")
	return m.getAdminByEmail(ctx, email)
}

func (m *mockAdminStore) GetAdmin(ctx context.Context, id int64) (*models.UserAdmin, error) {
	m.record("GetAdmin")
	return m.getAdmin(ctx, id)
}

func (m *mockAdminStore) SetAdminFlag(ctx context.Context, id int64, isAdmin bool) (*models.UserAdmin, error) {
	m.record("SetAdminFlag")
	return m.setAdminFlag(ctx, id, isAdmin)
}

func (m *mockAdminStore) EnsureAdmin(ctx context.Context, email, hash string) (bool, error) {
	m.record("EnsureAdmin")
	return m.ensureAdmin(ctx, email, hash)
}

// mockProjectStore records calls and returns configured responses.
type mockProjectStore struct {
	callLog

	getProject       func(ctx context.Context, id int64) (*models.Project, error)
	createProject    func(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error)
	updateProject    func(ctx context.Context, id int64, req models.UpdateProjectRequest) (*models.Project, error)
	setProjectStatus func(ctx context.Context, id int64, status models.ProjectStatus) (*models.Project, error)
	deleteProject    func(ctx context.Context, id int64) error
}

func (m *mockProjectStore) ListProjects(context.Context, models.ProjectFilter) (*models.Page[models.Project], error) {
	m.record("ListProjects")
	return &models.Page[models.Project]{Data: []models.Project{}}, nil
}

func (m *mockProjectStore) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	m.record("GetProject")
	return m.getProject(ctx, id)
}

func (m *mockProjectStore) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error) {
	m.record("CreateProject")
	return m.createProject(ctx, req)
}

func (m *mockProjectStore) UpdateProject(ctx context.Context, id int64, req models.UpdateProjectRequest) (*models.Project, error) {
	m.record("UpdateProject")
	return m.updateProject(ctx, id, req)
}

func (m *mockProjectStore) SetProjectStatus(ctx context.Context, id int64, status models.ProjectStatus) (*models.Project, error) {
	m.record("SetProjectStatus")
	return m.setProjectStatus(ctx, id, status)
}

func (m *mockProjectStore) DeleteProject(ctx context.Context, id int64) error {
	m.record("DeleteProject")
	return m.deleteProject(ctx, id)
}

// mockProgressStore records calls and returns configured responses.
type mockProgressStore struct {
	callLog

	getProgress    func(ctx context.Context, id int64) (*models.ProgressProject, error)
	createProgress func(ctx context.Context, req models.CreateProgressProjectRequest) (*models.ProgressProject, error)
	updateProgress func(ctx context.Context, id int64, req models.UpdateProgressProjectRequest) (*models.ProgressProject, error)
	deleteProgress func(ctx context.Context, id int64) error
}

func (m *mockProgressStore) ListProgress(context.Context, models.ProgressFilter) (*models.Page[models.ProgressProject], error) {
	m.record("ListProgress")
	return &models.Page[models.ProgressProject]{Data: []models.ProgressProject{}}, nil
}

func (m *mockProgressStore) GetProgress(ctx context.Context, id int64) (*models.ProgressProject, error) {
	m.record("GetProgress")
	return m.getProgress(ctx, id)
}

func (m *mockProgressStore) CreateProgress(
	ctx context.Context, req models.CreateProgressProjectRequest,
) (*models.ProgressProject, error) {
	m.record("CreateProgress")
	return m.createProgress(ctx, req)
}

func (m *mockProgressStore) UpdateProgress(
	ctx context.Context, id int64, req models.UpdateProgressProjectRequest,
) (*models.ProgressProject, error) {
	m.record("UpdateProgress")
	return m.updateProgress(ctx, id, req)
}

func (m *mockProgressStore) DeleteProgress(ctx context.Context, id int64) error {
	m.record("DeleteProgress")
	return m.deleteProgress(ctx, id)
}

// mockLookup answers existence checks from fixed id sets.
type mockLookup struct {
	projects map[int64]bool
	users    map[int64]bool
	err      error
}

func (m *mockLookup) ProjectExists(_ context.Context, id int64) (bool, error) {
	return m.projects[id], m.err
}

func (m *mockLookup) UserExists(_ context.Context, id int64) (bool, error) {
	return m.users[id], m.err
}

// mockTransactionStore records calls and returns configured responses.
type mockTransactionStore struct {
	callLog

	getTransaction    func(ctx context.Context, id int64) (*models.Transaction, error)
	createTransaction func(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error)
	updateTransaction func(ctx context.Context, id int64, req models.UpdateTransactionRequest) (*models.Transaction, error)
	deleteTransaction func(ctx context.Context, id int64) error
}

func (m *mockTransactionStore) ListTransactions(
	context.Context, models.TransactionFilter,
) (*models.Page[models.Transaction], error) {
	m.record("ListTransactions")
	return &models.Page[models.Transaction]{Data: []models.Transaction{}}, nil
}

func (m *mockTransactionStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	m.record("GetTransaction")
	return m.getTransaction(ctx, id)
}

func (m *mockTransactionStore) CreateTransaction(
	ctx context.Context, req models.CreateTransactionRequest,
) (*models.Transaction, error) {
	m.record("CreateTransaction")
	return m.createTransaction(ctx, req)
}

func (m *mockTransactionStore) UpdateTransaction(
	ctx context.Context, id int64, req models.UpdateTransactionRequest,
) (*models.Transaction, error) {
	m.record("UpdateTransaction")
	return m.updateTransaction(ctx, id, req)
}

func (m *mockTransactionStore) DeleteTransaction(ctx context.Context, id int64) error {
	m.record("DeleteTransaction")
	return m.deleteTransaction(ctx, id)
}

// mockAutoTaskStore records calls and returns configured responses.
type mockAutoTaskStore struct {
	callLog

	getAutoTask    func(ctx context.Context, id int64) (*models.AutoTask, error)
	createAutoTask func(ctx context.Context, req models.CreateAutoTaskRequest) (*models.AutoTask, error)
	updateAutoTask func(ctx context.Context, id int64, req models.UpdateAutoTaskRequest) (*models.AutoTask, error)
	deleteAutoTask func(ctx context.Context, id int64) error
}

func (m *mockAutoTaskStore) ListAutoTasks(context.Context, models.AutoTaskFilter) (*models.Page[models.AutoTask], error) {
	m.record("ListAutoTasks")
	return &models.Page[models.AutoTask]{Data: []models.AutoTask{}}, nil
}

func (m *mockAutoTaskStore) ListApplications(
	context.Context, models.AutoTaskApplicationFilter,
) (*models.Page[models.AutoTaskApplication], error) {
	m.record("ListApplications")
	return &models.Page[models.AutoTaskApplication]{Data: []models.AutoTaskApplication{}}, nil
}

func (m *mockAutoTaskStore) GetAutoTask(ctx context.Context, id int64) (*models.AutoTask, error) {
	m.record("GetAutoTask")
	return m.getAutoTask(ctx, id)
}

func (m *mockAutoTaskStore) CreateAutoTask(ctx context.Context, req models.CreateAutoTaskRequest) (*models.AutoTask, error) {
	m.record("CreateAutoTask")
	return m.createAutoTask(ctx, req)
}

func (m *mockAutoTaskStore) UpdateAutoTask(
	ctx context.Context, id int64, req models.UpdateAutoTaskRequest,
) (*models.AutoTask, error) {
	m.record("UpdateAutoTask")
	return m.updateAutoTask(ctx, id, req)
}

func (m *mockAutoTaskStore) DeleteAutoTask(ctx context.Context, id int64) error {
	m.record("DeleteAutoTask")
	return m.deleteAutoTask(ctx, id)
}

// mockAuditStore records every persisted action.
type mockAuditStore struct {
	mu       sync.Mutex
	recorded []models.AuditDetails
	err      error
}

func (m *mockAuditStore) RecordAudit(_ context.Context, d models.AuditDetails) (*models.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	m.recorded = append(m.recorded, d)

	return &models.AuditRecord{ID: int64(len(m.recorded)), Action: d.Action, EntityID: d.EntityID}, nil
}

func (m *mockAuditStore) ListAll(context.Context) ([]models.AuditRecord, error) {
	return []models.AuditRecord{}, nil
}

func (m *mockAuditStore) Query(context.Context, models.AuditQueryOpts) (*models.Page[models.AuditRecord], error) {
	return &models.Page[models.AuditRecord]{Data: []models.AuditRecord{}}, nil
}

// mockTokens issues a fixed pair and delegates parsing.
type mockTokens struct {
	parse func(token string, want auth.TokenType) (int64, error)
}

func (m *mockTokens) IssuePair(adminID int64) (string, string, error) {
	return "access", "refresh", nil
}

func (m *mockTokens) Parse(token string, want auth.TokenType) (int64, error) {
	return m.parse(token, want)
}

// plainHasher stores passwords with a fixed prefix so tests avoid bcrypt cost.
type plainHasher struct {
	checks int
}

func (h *plainHasher) Hash(pw string) (string, error) { return "h:" + pw, nil }

func (h *plainHasher) Check(hash, pw string) (bool, error) {
	h.checks++
	return hash == "h:"+pw, nil
}
