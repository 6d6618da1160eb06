package service

import (
	"fmt"

	"github.com/msomdec/task-tracker/internal/domain"
)

// IsAdmin reports whether the actor holds the admin role.
func IsAdmin(actor domain.Actor) bool {
	return actor.Role == domain.RoleAdmin
}

// IsSelfOrAdmin reports whether the actor is the target user or an admin.
func IsSelfOrAdmin(actor domain.Actor, targetUserID string) bool {
	return IsAdmin(actor) || actor.ID == targetUserID
}

// IsTaskOwner reports whether the actor created the task.
func IsTaskOwner(actor domain.Actor, task *domain.Task) bool {
	return actor.ID == task.CreatedBy
}

// IsTaskOwnerOrAssigned reports whether the actor created the task or is its assignee.
func IsTaskOwnerOrAssigned(actor domain.Actor, task *domain.Task) bool {
	return actor.ID == task.CreatedBy || actor.ID == task.AssignedTo
}

// IsTaskOwnerOrAdmin reports whether the actor created the task or is an admin.
func IsTaskOwnerOrAdmin(actor domain.Actor, task *domain.Task) bool {
	return actor.ID == task.CreatedBy || IsAdmin(actor)
}

// authorize turns a denied predicate into ErrForbidden.
func authorize(allowed bool, action string) error {
	if !allowed {
		return fmt.Errorf("%w: not allowed to %s", domain.ErrForbidden, action)
	}
	return nil
}
