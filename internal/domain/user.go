package domain

import (
	"context"
	"time"
)

// Role is the privilege level of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Avatar       string
	Phone        string
	DateOfBirth  *time.Time
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// TaskIDs is the ordered list of tasks the user created. It is only
	// populated by ListWithTasks.
	TaskIDs []string
	Tasks   []Task
}

// ProfileUpdate lists the profile fields a user may change about themselves.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name        *string
	Phone       *string
	Avatar      *string
	DateOfBirth *time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	// ListWithTasks returns every user with Tasks populated from the user's
	// task reference list, oldest reference first.
	ListWithTasks(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, id string, role Role) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	// Delete removes the user together with every task the user created or
	// is assigned to. Tasks are removed first.
	Delete(ctx context.Context, id string) error
}
