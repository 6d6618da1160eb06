package handler

import (
	"net/http"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/service"
)

// UserHandler handles the admin user roster.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleList returns every user with their tasks.
// GET /users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	users, err := h.users.ListWithTasks(r.Context(), actor)
	if err != nil {
		writeServiceError(w, "list users", err)
		return
	}

	writeSuccess(w, http.StatusOK, toUserWithTasksDTOs(users), "")
}

// HandleChangeRole sets a user's role.
// PATCH /users/updateRole/{id}
// Request: {"role":"user|admin"}
func (h *UserHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req struct {
		Role domain.Role `json:"role"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeServiceError(w, "change role", err)
		return
	}

	user, err := h.users.ChangeRole(r.Context(), actor, r.PathValue("id"), req.Role)
	if err != nil {
		writeServiceError(w, "change role", err)
		return
	}

	writeSuccess(w, http.StatusOK, toUserDTO(user), "Role updated.")
}

// HandleDelete removes a user and all of their tasks.
// DELETE /users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	if err := h.users.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, "delete user", err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "User deleted.")
}
