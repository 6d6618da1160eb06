package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/repository/sqlite"
)

func createTask(t *testing.T, repo *sqlite.TaskRepository, createdBy, assignedTo, title string) *domain.Task {
	t.Helper()
	task := &domain.Task{
		Title:       title,
		Description: "description of " + title,
		Status:      domain.TaskStatusPending,
		Priority:    domain.TaskPriorityMedium,
		CreatedBy:   createdBy,
		AssignedTo:  assignedTo,
	}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("Create task %q: %v", title, err)
	}
	return task
}

func TestTaskRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db.Users(), "alice@example.com")
	repo := db.Tasks()
	ctx := context.Background()

	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	task := &domain.Task{
		Title:       "Write report",
		Description: "Quarterly numbers",
		Status:      domain.TaskStatusPending,
		Priority:    domain.TaskPriorityHigh,
		DueDate:     &due,
		CreatedBy:   alice.ID,
		AssignedTo:  alice.ID,
	}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected task ID to be set")
	}

	found, err := repo.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Title != task.Title || found.Priority != domain.TaskPriorityHigh {
		t.Fatalf("unexpected task: %+v", found)
	}
	if found.DueDate == nil || !found.DueDate.Equal(due) {
		t.Fatalf("expected due date %v, got %v", due, found.DueDate)
	}
	if found.Creator == nil || found.Creator.Email != "alice@example.com" {
		t.Fatalf("expected creator to be populated, got %+v", found.Creator)
	}
}

func TestTaskRepository_Create_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	task := &domain.Task{
		Title:       "orphan",
		Description: "no owner",
		Status:      domain.TaskStatusPending,
		Priority:    domain.TaskPriorityLow,
		CreatedBy:   "ghost",
		AssignedTo:  "ghost",
	}
	err := db.Tasks().Create(context.Background(), task)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_ListByUser(t *testing.T) {
	db := newTestDB(t)
	users := db.Users()
	repo := db.Tasks()
	ctx := context.Background()

	alice := createUser(t, users, "alice@example.com")
	bob := createUser(t, users, "bob@example.com")
	carol := createUser(t, users, "carol@example.com")

	older := createTask(t, repo, alice.ID, alice.ID, "older")
	newer := createTask(t, repo, bob.ID, alice.ID, "assigned to alice")
	createTask(t, repo, carol.ID, carol.ID, "carol only")

	tasks, err := repo.ListByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != newer.ID || tasks[1].ID != older.ID {
		t.Fatalf("expected newest first, got %s then %s", tasks[0].Title, tasks[1].Title)
	}

	none, err := repo.ListByUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListByUser nobody: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty list, got %d", len(none))
	}
}

func TestTaskRepository_ListAll(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db.Users(), "alice@example.com")
	bob := createUser(t, db.Users(), "bob@example.com")
	repo := db.Tasks()

	createTask(t, repo, alice.ID, alice.ID, "a")
	createTask(t, repo, bob.ID, bob.ID, "b")

	tasks, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
}

func TestTaskRepository_Update(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db.Users(), "alice@example.com")
	repo := db.Tasks()
	ctx := context.Background()

	task := createTask(t, repo, alice.ID, alice.ID, "before")
	task.Title = "after"
	task.Status = domain.TaskStatusCompleted

	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := repo.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Title != "after" || found.Status != domain.TaskStatusCompleted {
		t.Fatalf("update not persisted: %+v", found)
	}

	missing := &domain.Task{ID: "missing", Title: "x", Description: "y", Status: domain.TaskStatusPending, Priority: domain.TaskPriorityLow}
	if err := repo.Update(ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_UpdateAssignee(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db.Users(), "alice@example.com")
	bob := createUser(t, db.Users(), "bob@example.com")
	repo := db.Tasks()
	ctx := context.Background()

	task := createTask(t, repo, alice.ID, alice.ID, "handoff")

	if err := repo.UpdateAssignee(ctx, task.ID, bob.ID); err != nil {
		t.Fatalf("UpdateAssignee: %v", err)
	}
	found, err := repo.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.AssignedTo != bob.ID || found.CreatedBy != alice.ID {
		t.Fatalf("expected assignee bob and creator alice, got %+v", found)
	}

	if err := repo.UpdateAssignee(ctx, task.ID, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown assignee, got %v", err)
	}
}

func TestTaskRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db.Users(), "alice@example.com")
	repo := db.Tasks()
	ctx := context.Background()

	task := createTask(t, repo, alice.ID, alice.ID, "doomed")

	if err := repo.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
