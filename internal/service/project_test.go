package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gigboard/gigadmin/internal/models"
)

func validProjectRequest() models.CreateProjectRequest {
	return models.CreateProjectRequest{
		AuthorID:    3,
		Title:       "Landing page",
		Description: "Build a landing page",
		Tags:        []string{"web"},
		Category:    "design",
		Subtasks:    []models.SubtaskInput{{Title: "Mockup", Description: "Figma mockup", Price: 10}},
	}
}

func TestProjectService_CreateProject(t *testing.T) {
	t.Parallel()

	store := &mockProjectStore{
		createProject: func(_ context.Context, req models.CreateProjectRequest) (*models.Project, error) {
			return &models.Project{ID: 41, AuthorID: req.AuthorID, Title: req.Title, Status: models.ProjectDraft}, nil
		},
	}
	obs := &recordingObserver{}
	svc := NewProjectService(store, testLogger(), obs)

	p, err := svc.CreateProject(context.Background(), 9, validProjectRequest())
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if p.ID != 41 {
		t.Errorf("ID = %d, want 41", p.ID)
	}

	got := obs.notifications()
	if len(got) != 1 {
		t.Fatalf("notifications = %d, want 1", len(got))
	}

	n := got[0]
	if n.action != models.ActionCreateProject || n.details.AdminID != 9 || n.details.OldData != nil {
		t.Errorf("notification = %+v", n)
	}

	var snap struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(n.details.NewData, &snap); err != nil || snap.ID != 41 {
		t.Errorf("newData.id = %d, %v; want 41", snap.ID, err)
	}
}

func TestProjectService_CreateProjectErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*models.CreateProjectRequest)
		storeErr  error
		wantErr   error
		wantStore bool
	}{
		{
			name:    "no subtasks",
			mutate:  func(r *models.CreateProjectRequest) { r.Subtasks = nil },
			wantErr: models.ErrValidation,
		},
		{
			name:    "no tags",
			mutate:  func(r *models.CreateProjectRequest) { r.Tags = nil },
			wantErr: models.ErrValidation,
		},
		{
			name:      "unknown author",
			storeErr:  models.ErrReferenceNotFound,
			wantErr:   models.ErrNotFound,
			wantStore: true,
		},
		{
			name:      "store failure",
			storeErr:  errDBDown,
			wantErr:   errDBDown,
			wantStore: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := &mockProjectStore{
				createProject: func(context.Context, models.CreateProjectRequest) (*models.Project, error) {
					return nil, tc.storeErr
				},
			}
			obs := &recordingObserver{}
			svc := NewProjectService(store, testLogger(), obs)

			req := validProjectRequest()
			if tc.mutate != nil {
				tc.mutate(&req)
			}

			_, err := svc.CreateProject(context.Background(), 1, req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}

			if store.called("CreateProject") != tc.wantStore {
				t.Errorf("store called = %v, want %v", !tc.wantStore, tc.wantStore)
			}

			if len(obs.notifications()) != 0 {
				t.Error("observer notified for a failed mutation")
			}
		})
	}
}

func TestProjectService_UpdateProjectStatus(t *testing.T) {
	t.Parallel()

	store := &mockProjectStore{
		getProject: func(_ context.Context, id int64) (*models.Project, error) {
			return &models.Project{ID: id, Status: models.ProjectDraft}, nil
		},
		setProjectStatus: func(_ context.Context, id int64, st models.ProjectStatus) (*models.Project, error) {
			return &models.Project{ID: id, Status: st}, nil
		},
	}
	obs := &recordingObserver{}
	svc := NewProjectService(store, testLogger(), obs)

	if _, err := svc.UpdateProjectStatus(context.Background(), 1, 5, models.UpdateProjectStatusRequest{Status: "bogus"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("bogus status err = %v, want ErrValidation", err)
	}

	p, err := svc.UpdateProjectStatus(context.Background(), 1, 5, models.UpdateProjectStatusRequest{Status: models.ProjectActive})
	if err != nil || p.Status != models.ProjectActive {
		t.Fatalf("UpdateProjectStatus = %+v, %v", p, err)
	}

	n := obs.notifications()
	if len(n) != 1 || n[0].action != models.ActionUpdateProjectStatus || n[0].details.OldData == nil {
		t.Errorf("notifications = %+v", n)
	}
}

func TestProjectService_UpdateProjectMissingTask(t *testing.T) {
	t.Parallel()

	store := &mockProjectStore{
		getProject: func(_ context.Context, id int64) (*models.Project, error) {
			return &models.Project{ID: id}, nil
		},
		updateProject: func(context.Context, int64, models.UpdateProjectRequest) (*models.Project, error) {
			return nil, models.ErrTaskNotFound
		},
	}
	obs := &recordingObserver{}
	svc := NewProjectService(store, testLogger(), obs)

	taskID := int64(77)

	_, err := svc.UpdateProject(context.Background(), 1, 5, models.UpdateProjectRequest{
		Subtasks: []models.SubtaskInput{{ID: &taskID, Title: "x", Description: "y"}},
	})
	if !errors.Is(err, models.ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}

	if len(obs.notifications()) != 0 {
		t.Error("observer notified for a failed update")
	}
}

func TestProjectService_DeleteProject(t *testing.T) {
	t.Parallel()

	store := &mockProjectStore{
		getProject: func(_ context.Context, id int64) (*models.Project, error) {
			return &models.Project{ID: id, Title: "Gone"}, nil
		},
		deleteProject: func(context.Context, int64) error { return nil },
	}
	obs := &recordingObserver{}
	svc := NewProjectService(store, testLogger(), obs)

	p, err := svc.DeleteProject(context.Background(), 2, 12)
	if err != nil || p.Title != "Gone" {
		t.Fatalf("DeleteProject = %+v, %v", p, err)
	}

	n := obs.notifications()
	if len(n) != 1 || n[0].action != models.ActionDeleteProject || n[0].details.NewData != nil {
		t.Errorf("notifications = %+v", n)
	}
}

func TestProjectService_DeleteProjectStillReferenced(t *testing.T) {
	t.Parallel()

	store := &mockProjectStore{
		getProject: func(_ context.Context, id int64) (*models.Project, error) {
			return &models.Project{ID: id}, nil
		},
		deleteProject: func(context.Context, int64) error { return models.ErrStillReferenced },
	}
	obs := &recordingObserver{}
	svc := NewProjectService(store, testLogger(), obs)

	if _, err := svc.DeleteProject(context.Background(), 2, 12); !errors.Is(err, models.ErrDuplicateKey) {
		t.Fatalf("err = %v, want conflict", err)
	}

	if len(obs.notifications()) != 0 {
		t.Error("observer notified for a blocked delete")
	}
}
