package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/service"
)

// CookieConfig controls the auth cookie set on login.
type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

// AuthHandler handles registration, login and the caller's own account.
type AuthHandler struct {
	auth   *service.AuthService
	users  *service.UserService
	cookie CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, users *service.UserService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, cookie: cookie}
}

// HandleRegister creates a new account with the user role.
// POST /register
// Request:  {"name":"...","email":"...","password":"..."}
// Response: 201 {"success":true,"data":{user}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeServiceError(w, "register user", err)
		return
	}
	if req.Role != "" && req.Role != string(domain.RoleUser) {
		slog.Warn("ignoring role supplied at registration", "email", req.Email, "role", req.Role)
	}

	user, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, "register user", err)
		return
	}

	writeSuccess(w, http.StatusCreated, toUserDTO(user), "User registered successfully.")
}

// HandleLogin authenticates the caller and sets the auth cookie.
// POST /login
// Request:  {"email":"...","password":"..."}
// Response: {"success":true,"data":{"token":"...","user":{...}}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeServiceError(w, "login user", err)
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, "login user", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookie.MaxAge / time.Second),
	})

	writeSuccess(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserDTO(user),
	}, "Login successful.")
}

// HandleLogout clears the auth cookie.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	writeSuccess(w, http.StatusOK, nil, "Logged out.")
}

// HandleMe returns the currently authenticated user.
// GET /me, GET /profile
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	writeSuccess(w, http.StatusOK, toUserDTO(user), "")
}

// HandleUpdateProfile changes the caller's own profile fields.
// PATCH /profile
// Request: {"name"?:"...","dateOfBirth"?:"YYYY-MM-DD","phone"?:"...","avatar"?:"..."}
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req struct {
		Name        *string `json:"name"`
		DateOfBirth *string `json:"dateOfBirth"`
		Phone       *string `json:"phone"`
		Avatar      *string `json:"avatar"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeServiceError(w, "update profile", err)
		return
	}

	dob, err := parseDate("dateOfBirth", req.DateOfBirth)
	if err != nil {
		writeServiceError(w, "update profile", err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), actor, domain.ProfileUpdate{
		Name:        req.Name,
		Phone:       req.Phone,
		Avatar:      req.Avatar,
		DateOfBirth: dob,
	})
	if err != nil {
		writeServiceError(w, "update profile", err)
		return
	}

	writeSuccess(w, http.StatusOK, toUserDTO(user), "Profile updated.")
}

// HandleChangePassword replaces the caller's password.
// PATCH /password
// Request: {"currentPassword":"...","newPassword":"..."}
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeServiceError(w, "change password", err)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, "change password", err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Password updated.")
}
