package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/handler"
	"github.com/msomdec/task-tracker/internal/repository/sqlite"
	"github.com/msomdec/task-tracker/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

type testApp struct {
	db    *sqlite.DB
	auth  *service.AuthService
	users *service.UserService
	tasks *service.TaskService
	srv   *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithOptions(t, handler.Options{Cookie: handler.CookieConfig{MaxAge: 72 * time.Hour}})
}

func newTestAppWithOptions(t *testing.T, opts handler.Options) *testApp {
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

	app := &testApp{
		db:    db,
		auth:  service.NewAuthService(db.Users(), testJWTSecret, 4, 0),
		users: service.NewUserService(db.Users()),
		tasks: service.NewTaskService(db.Tasks(), db.Users()),
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, app.auth, app.users, app.tasks, db, opts)
	app.srv = httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(app.srv.Close)
	return app
}

// login registers a user and returns a bearer token for them.
func (a *testApp) login(t *testing.T, name, email string) (string, domain.Actor) {
	t.Helper()
	ctx := context.Background()
	u, err := a.auth.Register(ctx, name, email, "password123")
	if err != nil {
		t.Fatalf("Register %s: %v", email, err)
	}
	token, _, err := a.auth.Login(ctx, email, "password123")
	if err != nil {
		t.Fatalf("Login %s: %v", email, err)
	}
	return token, domain.ActorFromUser(u)
}

// loginAdmin seeds an admin account and returns a bearer token for it.
func (a *testApp) loginAdmin(t *testing.T) (string, domain.Actor) {
	t.Helper()
	ctx := context.Background()
	u, err := a.auth.EnsureAdmin(ctx, "Admin", "admin@example.com", "password123")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	token, _, err := a.auth.Login(ctx, "admin@example.com", "password123")
	if err != nil {
		t.Fatalf("Login admin: %v", err)
	}
	return token, domain.ActorFromUser(u)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do sends a JSON request with an optional bearer token and decodes the
// response envelope.
func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if s, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(s))
	} else if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}
