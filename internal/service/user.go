package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/task-tracker/internal/domain"
)

// UserService manages the user roster: listing, role changes, profile edits
// and deletion.
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// Get returns the user with the given ID.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListWithTasks returns all users with their task lists populated. Admin only.
func (s *UserService) ListWithTasks(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if err := authorize(IsAdmin(actor), "list users"); err != nil {
		return nil, err
	}
	return s.users.ListWithTasks(ctx)
}

// ChangeRole sets the role of the target user. Admins may change their own
// role.
func (s *UserService) ChangeRole(ctx context.Context, actor domain.Actor, targetID string, role domain.Role) (*domain.User, error) {
	if err := authorize(IsAdmin(actor), "change roles"); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be 'user' or 'admin'", domain.ErrInvalidInput)
	}

	if err := s.users.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, targetID)
}

// Delete removes the target user and every task they created or are assigned
// to. Nobody can delete their own account.
func (s *UserService) Delete(ctx context.Context, actor domain.Actor, targetID string) error {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	if err := authorize(IsSelfOrAdmin(actor, targetID), "delete this user"); err != nil {
		return err
	}
	if actor.ID == targetID {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrForbidden)
	}

	return s.users.Delete(ctx, targetID)
}

// UpdateProfile applies the allowed profile fields to the actor's own record.
// Email and role cannot be changed here.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, update domain.ProfileUpdate) (*domain.User, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		update.Name = &name
	}
	if update.Phone != nil && len(*update.Phone) > 32 {
		return nil, fmt.Errorf("%w: phone number is too long", domain.ErrInvalidInput)
	}
	if update.Avatar != nil && len(*update.Avatar) > 2048 {
		return nil, fmt.Errorf("%w: avatar URL is too long", domain.ErrInvalidInput)
	}

	if err := s.users.UpdateProfile(ctx, actor.ID, update); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, actor.ID)
}
