package domain

import (
	"context"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work. CreatedBy never changes after creation; AssignedTo
// is changed only through an admin assignment.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
	CreatedBy   string
	AssignedTo  string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Creator and Assignee are filled in by list queries that join users.
	Creator  *UserRef
	Assignee *UserRef
}

// UserRef is the short form of a user embedded in task listings.
type UserRef struct {
	ID    string
	Name  string
	Email string
}

// TaskPatch holds the task fields a caller is allowed to change.
// Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil && p.DueDate == nil
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	// Create inserts the task and appends it to the creator's task list.
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	// ListByUser returns tasks created by or assigned to userID, newest first.
	ListByUser(ctx context.Context, userID string) ([]Task, error)
	ListAll(ctx context.Context) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	UpdateAssignee(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
}
