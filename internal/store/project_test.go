package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gigboard/gigadmin/internal/models"
	"github.com/gigboard/gigadmin/internal/store"
)

func TestCreateProjectWithSubtasks(t *testing.T) {
	t.Parallel()

	base := setupTestBase(t)
	u := createTestUser(t, base)
	p := createTestProject(t, base, u.ID, "design", "build")

	if p.Status != models.ProjectDraft {
		t.Errorf("Status = %q, want draft", p.Status)
	}

	if len(p.Tasks) != 2 || p.Tasks[0].Title != "design" {
		t.Errorf("Tasks = %+v, want design and build", p.Tasks)
	}
}

func TestCreateProjectUnknownAuthor(t *testing.T) {
	t.Parallel()

	_, err := store.NewProjectStore(setupTestBase(t)).CreateProject(context.Background(), models.CreateProjectRequest{
		AuthorID:    -1,
		Title:       "x",
		Description: "x",
		Tags:        []string{"x"},
		Category:    "x",
		Subtasks:    []models.SubtaskInput{{Title: "x", Description: "x"}},
	})
	if !errors.Is(err, models.ErrReferenceNotFound) {
		t.Fatalf("err = %v, want ErrReferenceNotFound", err)
	}
}

func TestUpdateProjectSubtasks(t *testing.T) {
	t.Parallel()

	base := setupTestBase(t)
	ps := store.NewProjectStore(base)
	ctx := context.Background()
	u := createTestUser(t, base)
	p := createTestProject(t, base, u.ID, "keep", "drop")

	keep, drop := p.Tasks[0], p.Tasks[1]

	got, err := ps.UpdateProject(ctx, p.ID, models.UpdateProjectRequest{
		Title: ptr("Renamed"),
		Subtasks: []models.SubtaskInput{
			{ID: &keep.ID, Title: "kept", Description: "edited", Price: 42},
			{Title: "added", Description: "new step", Price: 5},
		},
		// 999999999 is not linked and is skipped.
		DeletedTasks: []int64{drop.ID, 999999999},
	})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}

	if got.Title != "Renamed" {
		t.Errorf("Title = %q", got.Title)
	}

	if len(got.Tasks) != 2 {
		t.Fatalf("Tasks = %+v, want 2", got.Tasks)
	}

	if got.Tasks[0].ID != keep.ID || got.Tasks[0].Title != "kept" || got.Tasks[0].Price != 42 {
		t.Errorf("kept task = %+v", got.Tasks[0])
	}

	if got.Tasks[1].Title != "added" {
		t.Errorf("new task = %+v", got.Tasks[1])
	}
}

func TestUpdateProjectForeignSubtaskRollsBack(t *testing.T) {
	t.Parallel()

	base := setupTestBase(t)
	ps := store.NewProjectStore(base)
	ctx := context.Background()
	u := createTestUser(t, base)
	p := createTestProject(t, base, u.ID)
	other := createTestProject(t, base, u.ID)

	_, err := ps.UpdateProject(ctx, p.ID, models.UpdateProjectRequest{
		Title:    ptr("Should not stick"),
		Subtasks: []models.SubtaskInput{{ID: &other.Tasks[0].ID, Title: "x", Description: "x"}},
	})
	if !errors.Is(err, models.ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}

	after, err := ps.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}

	if after.Title != p.Title {
		t.Errorf("Title = %q, want unchanged %q", after.Title, p.Title)
	}
}

func TestSetProjectStatusAndList(t *testing.T) {
	t.Parallel()

	base := setupTestBase(t)
	ps := store.NewProjectStore(base)
	ctx := context.Background()
	u := createTestUser(t, base)
	p := createTestProject(t, base, u.ID)

	got, err := ps.SetProjectStatus(ctx, p.ID, models.ProjectActive)
	if err != nil {
		t.Fatalf("SetProjectStatus: %v", err)
	}

	if got.Status != models.ProjectActive || len(got.Tasks) != 1 {
		t.Errorf("project = %+v", got)
	}

	page, err := ps.ListProjects(ctx, models.ProjectFilter{AuthorID: &u.ID, Status: models.ProjectActive})
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}

	if page.Total != 1 || len(page.Data[0].Tasks) != 1 {
		t.Errorf("ListProjects = %+v", page)
	}
}

func TestDeleteProject(t *testing.T) {
	t.Parallel()

	base := setupTestBase(t)
	ps := store.NewProjectStore(base)
	ctx := context.Background()
	u := createTestUser(t, base)
	p := createTestProject(t, base, u.ID)

	if err := ps.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	if _, err := ps.GetProject(ctx, p.ID); !errors.Is(err, models.ErrProjectNotFound) {
		t.Errorf("GetProject after delete err = %v, want ErrProjectNotFound", err)
	}

	if err := ps.DeleteProject(ctx, p.ID); !errors.Is(err, models.ErrProjectNotFound) {
		t.Errorf("second DeleteProject err = %v, want ErrProjectNotFound", err)
	}
}
