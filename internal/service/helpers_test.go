package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/repository/sqlite"
	"github.com/msomdec/task-tracker/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

type testEnv struct {
	db    *sqlite.DB
	auth  *service.AuthService
	users *service.UserService
	tasks *service.TaskService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Use cost 4 for fast tests.
	return &testEnv{
		db:    db,
		auth:  service.NewAuthService(db.Users(), testJWTSecret, 4, 0),
		users: service.NewUserService(db.Users()),
		tasks: service.NewTaskService(db.Tasks(), db.Users()),
	}
}

// register creates a user and returns it as an actor.
func (e *testEnv) register(t *testing.T, name, email string) domain.Actor {
	t.Helper()
	u, err := e.auth.Register(context.Background(), name, email, "password123")
	if err != nil {
		t.Fatalf("Register %s: %v", email, err)
	}
	return domain.ActorFromUser(u)
}

// admin creates a user and promotes it to admin.
func (e *testEnv) admin(t *testing.T, email string) domain.Actor {
	t.Helper()
	u, err := e.auth.EnsureAdmin(context.Background(), "Admin", email, "password123")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	return domain.ActorFromUser(u)
}

func (e *testEnv) createTask(t *testing.T, actor domain.Actor, title string) *domain.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), actor, service.NewTask{Title: title, Description: "d"})
	if err != nil {
		t.Fatalf("Create task: %v", err)
	}
	return task
}
