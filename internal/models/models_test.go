package models_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gigboard/gigadmin/internal/models"
)

func ptr[T any](v T) *T { return &v }

func assertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func assertErrorContains(t *testing.T, err error, want string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}

	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected error containing %q, got %q", want, err.Error())
	}

	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected errors.Is(err, ErrValidation) for %q", err.Error())
	}
}

func validProject() models.CreateProjectRequest {
	return models.CreateProjectRequest{
		AuthorID:    1,
		Title:       "Landing page",
		Description: "Build a landing page",
		Tags:        []string{"web"},
		Category:    "design",
		Subtasks: []models.SubtaskInput{
			{Title: "Mockup", Description: "Figma mockup", Price: 100},
			{Title: "Markup", Description: "HTML/CSS", Price: 250},
		},
	}
}

func TestCreateProjectRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *models.CreateProjectRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(*models.CreateProjectRequest) {}},
		{name: "missing author", mutate: func(r *models.CreateProjectRequest) { r.AuthorID = 0 }, wantErr: "authorId is required"},
		{name: "missing title", mutate: func(r *models.CreateProjectRequest) { r.Title = "  " }, wantErr: "title is required"},
		{name: "missing description", mutate: func(r *models.CreateProjectRequest) { r.Description = "" }, wantErr: "description is required"},
		{name: "missing category", mutate: func(r *models.CreateProjectRequest) { r.Category = "" }, wantErr: "category is required"},
		{name: "no tags", mutate: func(r *models.CreateProjectRequest) { r.Tags = nil }, wantErr: "tags must contain at least 1"},
		{name: "no subtasks", mutate: func(r *models.CreateProjectRequest) { r.Subtasks = nil }, wantErr: "subtasks must contain at least 1"},
		{name: "subtask with id", mutate: func(r *models.CreateProjectRequest) { r.Subtasks[0].ID = ptr(int64(3)) }, wantErr: "must not be set on create"},
		{name: "negative price", mutate: func(r *models.CreateProjectRequest) { r.Subtasks[1].Price = -1 }, wantErr: "subtasks.price"},
		{name: "title too long", mutate: func(r *models.CreateProjectRequest) { r.Title = strings.Repeat("x", 256) }, wantErr: "exceeds maximum length"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validProject()
			tc.mutate(&req)

			err := req.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)
				return
			}
			assertNoError(t, err)
		})
	}
}

func TestCreateTransactionRequest_Validate(t *testing.T) {
	base := func() models.CreateTransactionRequest {
		return models.CreateTransactionRequest{ProjectID: 1, TaskID: 2, FromUserID: 3, ToUserID: 4, Amount: 500}
	}

	tests := []struct {
		name    string
		amount  float64
		wantErr string
	}{
		{name: "valid", amount: 500},
		{name: "upper bound inclusive", amount: models.MaxTransactionAmount},
		{name: "zero", amount: 0, wantErr: "amount must be greater than 0"},
		{name: "negative", amount: -5, wantErr: "amount must be greater than 0"},
		{name: "over bound", amount: 2000000, wantErr: "at most 1000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			req.Amount = tc.amount

			err := req.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)
				return
			}
			assertNoError(t, err)

			if req.Type == nil || *req.Type != models.TransactionPayment {
				t.Errorf("expected default type PAYMENT, got %v", req.Type)
			}
		})
	}

	t.Run("missing to user", func(t *testing.T) {
		req := base()
		req.ToUserID = 0
		assertErrorContains(t, req.Validate(), "toUserId is required")
	})

	t.Run("unknown type", func(t *testing.T) {
		req := base()
		req.Type = ptr(models.TransactionType("GIFT"))
		assertErrorContains(t, req.Validate(), "type is not a known")
	})
}

func TestCreateAutoTaskRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateAutoTaskRequest
		wantErr string
	}{
		{name: "valid", req: models.CreateAutoTaskRequest{Title: "Join", Description: "Join the channel", Reward: ptr(10.0)}},
		{name: "valid with url", req: models.CreateAutoTaskRequest{Title: "Join", Description: "d", Reward: ptr(1.0), URL: ptr("https://t.me/x")}},
		{name: "missing title", req: models.CreateAutoTaskRequest{Description: "d", Reward: ptr(1.0)}, wantErr: "title is required"},
		{name: "missing description", req: models.CreateAutoTaskRequest{Title: "t", Reward: ptr(1.0)}, wantErr: "description is required"},
		{name: "missing reward", req: models.CreateAutoTaskRequest{Title: "t", Description: "d"}, wantErr: "reward is required"},
		{name: "bad url", req: models.CreateAutoTaskRequest{Title: "t", Description: "d", Reward: ptr(1.0), URL: ptr("ftp://x")}, wantErr: "url must be an http(s) URL"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)
				return
			}
			assertNoError(t, err)
		})
	}
}

func TestCreateUserRequest_Defaults(t *testing.T) {
	req := models.CreateUserRequest{TelegramID: "123", RefCode: "ABC"}
	assertNoError(t, req.Validate())

	if req.Role == nil || *req.Role != models.RoleCreator {
		t.Errorf("expected default role creator, got %v", req.Role)
	}

	bad := models.CreateUserRequest{RefCode: "ABC"}
	assertErrorContains(t, bad.Validate(), "telegramId is required")

	badRole := models.CreateUserRequest{TelegramID: "1", RefCode: "A", Role: ptr(models.UserRole("root"))}
	assertErrorContains(t, badRole.Validate(), "role must be one of")
}

func TestAuthRequest_Validate(t *testing.T) {
	ok := models.AuthRequest{Email: " Admin@Example.com ", Password: "secret1"}
	assertNoError(t, ok.Validate())

	if ok.Email != "admin@example.com" {
		t.Errorf("expected normalized email, got %q", ok.Email)
	}

	short := models.AuthRequest{Email: "a@b.c", Password: "12345"}
	assertErrorContains(t, short.Validate(), "cannot be less than 6")

	bad := models.AuthRequest{Email: "not-an-email", Password: "123456"}
	assertErrorContains(t, bad.Validate(), "email is not a valid address")
}

func TestListQuery_Sort(t *testing.T) {
	q := models.ListQuery{
		SortBy:    []string{"title", "createdAt", "id"},
		SortOrder: []string{"DESC"},
	}

	got := q.Sort()
	want := []models.SortField{
		{Field: "title", Direction: models.SortDesc},
		{Field: "createdAt", Direction: models.SortAsc},
		{Field: "id", Direction: models.SortAsc},
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d sort fields, got %d", len(want), len(got))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sort[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestListQuery_Normalize(t *testing.T) {
	q := models.ListQuery{}
	q.Normalize()

	if q.Page != 1 || q.Limit != 10 {
		t.Errorf("expected defaults page=1 limit=10, got page=%d limit=%d", q.Page, q.Limit)
	}

	q = models.ListQuery{Page: 3, Limit: 5000}
	q.Normalize()

	if q.Limit != models.MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", models.MaxLimit, q.Limit)
	}

	if q.Offset() != 2*models.MaxLimit {
		t.Errorf("expected offset %d, got %d", 2*models.MaxLimit, q.Offset())
	}
}

func TestListQuery_OffsetNeverNegative(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
	}{
		{"max int page", math.MaxInt, 10},
		{"max int page and limit", math.MaxInt, math.MaxInt},
		{"just past max page", models.MaxPage + 1, models.MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := models.ListQuery{Page: tt.page, Limit: tt.limit}
			q.Normalize()

			if q.Page != models.MaxPage {
				t.Errorf("page = %d, want clamped to %d", q.Page, models.MaxPage)
			}

			if off := q.Offset(); off < 0 || off != (models.MaxPage-1)*q.Limit {
				t.Errorf("Offset() = %d for page=%d limit=%d", off, tt.page, tt.limit)
			}
		})
	}
}

func TestValidationError_Is(t *testing.T) {
	err := models.ErrMissingField("title")

	if !errors.Is(err, models.ErrValidation) {
		t.Fatal("expected ValidationError to match ErrValidation")
	}

	if errors.Is(err, models.ErrNotFound) {
		t.Fatal("ValidationError must not match ErrNotFound")
	}

	if !errors.Is(models.ErrProjectNotFound, models.ErrNotFound) {
		t.Fatal("expected ErrProjectNotFound to wrap ErrNotFound")
	}

	if !errors.Is(models.ErrStillReferenced, models.ErrDuplicateKey) {
		t.Fatal("expected ErrStillReferenced to classify as conflict")
	}
}
