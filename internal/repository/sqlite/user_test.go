package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/repository/sqlite"
)

func createUser(t *testing.T, repo *sqlite.UserRepository, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:        email,
		Name:         "User " + email,
		PasswordHash: "hash",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create %s: %v", email, err)
	}
	return user
}

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()

	user := createUser(t, repo, "test@example.com")

	if user.ID == "" {
		t.Fatal("expected user ID to be set after create")
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %q", user.Role)
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	ctx := context.Background()

	createUser(t, repo, "dup@example.com")

	err := repo.Create(ctx, &domain.User{Email: "dup@example.com", Name: "User 2", PasswordHash: "hash2"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()

	user := createUser(t, repo, "byid@example.com")

	found, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Email != user.Email {
		t.Fatalf("expected email %q, got %q", user.Email, found.Email)
	}
	if found.LastLoginAt != nil {
		t.Fatal("expected no last login for a new user")
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()

	user := createUser(t, repo, "byemail@example.com")

	found, err := repo.GetByEmail(context.Background(), "byemail@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected id %s, got %s", user.ID, found.ID)
	}

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_UpdateRole(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	ctx := context.Background()

	user := createUser(t, repo, "role@example.com")

	if err := repo.UpdateRole(ctx, user.ID, domain.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	found, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %q", found.Role)
	}

	if err := repo.UpdateRole(ctx, "missing", domain.RoleAdmin); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	ctx := context.Background()

	user := createUser(t, repo, "profile@example.com")

	name := "Renamed"
	phone := "555-0100"
	dob := time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC)
	if err := repo.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Name: &name, Phone: &phone, DateOfBirth: &dob}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	found, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Name != name || found.Phone != phone {
		t.Fatalf("unexpected profile: name=%q phone=%q", found.Name, found.Phone)
	}
	if found.DateOfBirth == nil || !found.DateOfBirth.Equal(dob) {
		t.Fatalf("expected date of birth %v, got %v", dob, found.DateOfBirth)
	}
	if found.Email != user.Email {
		t.Fatalf("email must not change, got %q", found.Email)
	}
}

func TestUserRepository_TouchLastLogin(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	ctx := context.Background()

	user := createUser(t, repo, "login@example.com")
	at := time.Now().UTC().Truncate(time.Second)

	if err := repo.TouchLastLogin(ctx, user.ID, at); err != nil {
		t.Fatalf("TouchLastLogin: %v", err)
	}
	found, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.LastLoginAt == nil || !found.LastLoginAt.Equal(at) {
		t.Fatalf("expected last login %v, got %v", at, found.LastLoginAt)
	}
}

func TestUserRepository_Delete_CascadesTasks(t *testing.T) {
	db := newTestDB(t)
	users := db.Users()
	tasks := db.Tasks()
	ctx := context.Background()

	alice := createUser(t, users, "alice@example.com")
	bob := createUser(t, users, "bob@example.com")

	own := createTask(t, tasks, alice.ID, alice.ID, "alice own")
	assigned := createTask(t, tasks, bob.ID, alice.ID, "bob's task for alice")
	unrelated := createTask(t, tasks, bob.ID, bob.ID, "bob own")

	if err := users.Delete(ctx, alice.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, id := range []string{own.ID, assigned.ID} {
		if _, err := tasks.GetByID(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected task %s to be deleted, got %v", id, err)
		}
	}
	if _, err := tasks.GetByID(ctx, unrelated.ID); err != nil {
		t.Fatalf("unrelated task should survive: %v", err)
	}
	if _, err := users.GetByID(ctx, alice.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected user deleted, got %v", err)
	}

	var refs int
	if err := db.SqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_tasks WHERE user_id = ?", alice.ID).Scan(&refs); err != nil {
		t.Fatalf("count user_tasks: %v", err)
	}
	if refs != 0 {
		t.Fatalf("expected task references removed, got %d", refs)
	}
}

func TestUserRepository_Delete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Users().Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_ListWithTasks(t *testing.T) {
	db := newTestDB(t)
	users := db.Users()
	tasks := db.Tasks()
	ctx := context.Background()

	alice := createUser(t, users, "alice@example.com")
	bob := createUser(t, users, "bob@example.com")

	first := createTask(t, tasks, alice.ID, alice.ID, "first")
	second := createTask(t, tasks, alice.ID, alice.ID, "second")

	list, err := users.ListWithTasks(ctx)
	if err != nil {
		t.Fatalf("ListWithTasks: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list))
	}

	byID := map[string]domain.User{}
	for _, u := range list {
		byID[u.ID] = u
	}
	got := byID[alice.ID].TaskIDs
	if len(got) != 2 || got[0] != first.ID || got[1] != second.ID {
		t.Fatalf("expected alice's tasks [%s %s], got %v", first.ID, second.ID, got)
	}
	if byID[alice.ID].Tasks[0].Title != "first" {
		t.Fatalf("expected populated task title, got %q", byID[alice.ID].Tasks[0].Title)
	}
	if len(byID[bob.ID].TaskIDs) != 0 {
		t.Fatalf("expected bob to have no tasks, got %v", byID[bob.ID].TaskIDs)
	}
}
