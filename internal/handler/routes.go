package handler

import (
	"net/http"

	"github.com/msomdec/task-tracker/internal/service"
)

// Options carries the HTTP settings that are not services.
type Options struct {
	Cookie CookieConfig
	// AuthLimiter throttles login and registration per client address.
	// Nil disables throttling.
	AuthLimiter *service.RateLimiter
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, users *service.UserService, tasks *service.TaskService, db Pinger, opts Options) {
	authHandler := NewAuthHandler(auth, users, opts.Cookie)
	taskHandler := NewTaskHandler(tasks)
	userHandler := NewUserHandler(users)

	requireAuth := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}
	requireAdmin := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, RequireAdmin(h))
	}

	limited := func(h http.HandlerFunc) http.Handler {
		if opts.AuthLimiter == nil {
			return h
		}
		return RateLimit(opts.AuthLimiter, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz(db))

	// Public routes.
	mux.Handle("POST /register", limited(authHandler.HandleRegister))
	mux.Handle("POST /login", limited(authHandler.HandleLogin))
	mux.HandleFunc("POST /logout", authHandler.HandleLogout)

	// Account routes.
	mux.Handle("GET /me", requireAuth(authHandler.HandleMe))
	mux.Handle("GET /profile", requireAuth(authHandler.HandleMe))
	mux.Handle("PATCH /profile", requireAuth(authHandler.HandleUpdateProfile))
	mux.Handle("PATCH /password", requireAuth(authHandler.HandleChangePassword))

	// Task routes.
	mux.Handle("GET /tasks", requireAuth(taskHandler.HandleList))
	mux.Handle("POST /tasks", requireAuth(taskHandler.HandleCreate))
	mux.Handle("GET /tasks/{id}", requireAuth(taskHandler.HandleGet))
	mux.Handle("PUT /tasks/{id}", requireAuth(taskHandler.HandleUpdate))
	mux.Handle("PATCH /tasks/{id}/status", requireAuth(taskHandler.HandleUpdateStatus))
	mux.Handle("DELETE /tasks/{id}", requireAuth(taskHandler.HandleDelete))

	// Any authenticated caller may reach user deletion; the service allows
	// admins only and rejects self-deletion.
	mux.Handle("DELETE /users/{id}", requireAuth(userHandler.HandleDelete))

	// Admin routes.
	mux.Handle("POST /tasks/assign", requireAdmin(taskHandler.HandleAssign))
	mux.Handle("GET /admin/tasks", requireAdmin(taskHandler.HandleListAll))
	mux.Handle("GET /users", requireAdmin(userHandler.HandleList))
	mux.Handle("PATCH /users/updateRole/{id}", requireAdmin(userHandler.HandleChangeRole))
}
