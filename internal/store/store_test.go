package store_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/db"
	"github.com/gigboard/gigadmin/internal/db/migrations"
	"github.com/gigboard/gigadmin/internal/dbpool"
	"github.com/gigboard/gigadmin/internal/models"
	"github.com/gigboard/gigadmin/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var (
	sharedEnv  *testEnv
	sharedOnce sync.Once
	sharedErr  error
)

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	sharedOnce.Do(func() {
		ctx := context.Background()

		log := logrus.New()
		log.SetLevel(logrus.ErrorLevel)

		pool, err := dbpool.NewPool(ctx, dbpool.Options{URL: dbURL, MaxConns: 5})
		if err != nil {
			sharedErr = err
			return
		}

		if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
			pool.Close()
			sharedErr = err

			return
		}

		sharedEnv = &testEnv{pool: pool, log: log}
	})

	if sharedErr != nil {
		t.Fatalf("preparing test DB: %v", sharedErr)
	}

	return sharedEnv
}

func setupTestBase(t *testing.T) store.Base {
	t.Helper()

	env := getTestEnv(t)

	return store.Base{Pool: env.pool, Log: env.log}
}

// createTestUser inserts a user with unique identifiers and removes it,
// along with anything it authored, after the test.
func createTestUser(t *testing.T, base store.Base, tags ...string) *models.User {
	t.Helper()

	ctx := context.Background()
	suffix := uuid.NewString()

	req := models.CreateUserRequest{TelegramID: "tg-" + suffix, RefCode: "ref-" + suffix, Tags: tags}
	if err := req.Validate(); err != nil {
		t.Fatalf("validating user fixture: %v", err)
	}

	u, err := store.NewUserStore(base).CreateUser(ctx, req)
	if err != nil {
		t.Fatalf("creating user fixture: %v", err)
	}

	t.Cleanup(func() {
		cleanCtx := context.Background()
		// Delete in dependency order: transactions, projects, user.
		base.Pool.Exec(cleanCtx, "DELETE FROM transactions WHERE from_user_id = $1 OR to_user_id = $1", u.ID) //nolint:errcheck // best-effort cleanup
		base.Pool.Exec(cleanCtx, "DELETE FROM projects WHERE author_id = $1", u.ID)                           //nolint:errcheck // best-effort cleanup
		base.Pool.Exec(cleanCtx, "DELETE FROM users WHERE id = $1", u.ID)                                     //nolint:errcheck // best-effort cleanup
	})

	return u
}

func createTestProject(t *testing.T, base store.Base, authorID int64, subtasks ...string) *models.Project {
	t.Helper()

	if len(subtasks) == 0 {
		subtasks = []string{"first"}
	}

	req := models.CreateProjectRequest{
		AuthorID:    authorID,
		Title:       "Landing page",
		Description: "Build a landing page",
		Tags:        []string{"web"},
		Category:    "design",
	}
	for _, title := range subtasks {
		req.Subtasks = append(req.Subtasks, models.SubtaskInput{Title: title, Description: title + " step", Price: 10})
	}

	p, err := store.NewProjectStore(base).CreateProject(context.Background(), req)
	if err != nil {
		t.Fatalf("creating project fixture: %v", err)
	}

	return p
}

func ptr[T any](v T) *T { return &v }
