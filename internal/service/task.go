package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
)

// DefaultDueIn is how far in the future a task is due when no due date is given.
const DefaultDueIn = 10 * 24 * time.Hour

// NewTask holds the caller-supplied fields for task creation.
type NewTask struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// TaskService handles task CRUD, ownership checks and admin assignment.
type TaskService struct {
	tasks domain.TaskRepository
	users domain.UserRepository
	now   func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks domain.TaskRepository, users domain.UserRepository) *TaskService {
	return &TaskService{tasks: tasks, users: users, now: time.Now}
}

// ListMine returns the tasks the actor created or is assigned to, newest first.
func (s *TaskService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.Task, error) {
	return s.tasks.ListByUser(ctx, actor.ID)
}

// ListAll returns every task. Admin only.
func (s *TaskService) ListAll(ctx context.Context, actor domain.Actor) ([]domain.Task, error) {
	if err := authorize(IsAdmin(actor), "list all tasks"); err != nil {
		return nil, err
	}
	return s.tasks.ListAll(ctx)
}

// Get returns a task visible to its creator, its assignee, or an admin.
func (s *TaskService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(IsTaskOwnerOrAssigned(actor, task) || IsAdmin(actor), "view this task"); err != nil {
		return nil, err
	}
	return task, nil
}

// Create adds a task owned by and assigned to the actor.
func (s *TaskService) Create(ctx context.Context, actor domain.Actor, in NewTask) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: title and description are required", domain.ErrInvalidInput)
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: priority must be low, medium, or high", domain.ErrInvalidInput)
	}

	due := in.DueDate
	if due == nil {
		d := s.now().Add(DefaultDueIn).UTC()
		due = &d
	}

	task := &domain.Task{
		Title:       title,
		Description: description,
		Status:      domain.TaskStatusPending,
		Priority:    priority,
		DueDate:     due,
		CreatedBy:   actor.ID,
		AssignedTo:  actor.ID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return s.tasks.GetByID(ctx, task.ID)
}

// Update applies patch to a task the actor created, or any task for admins.
// Only the fields in domain.TaskPatch can change.
func (s *TaskService) Update(ctx context.Context, actor domain.Actor, id string, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(IsTaskOwnerOrAdmin(actor, task), "modify this task"); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}
	if err := applyPatch(task, patch); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// UpdateStatus moves a task to a new status. The creator, the assignee and
// admins may do this.
func (s *TaskService) UpdateStatus(ctx context.Context, actor domain.Actor, id string, status domain.TaskStatus) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(IsTaskOwnerOrAssigned(actor, task) || IsAdmin(actor), "change the status of this task"); err != nil {
		return nil, err
	}

	if !status.Valid() {
		return nil, fmt.Errorf("%w: status must be pending, in-progress, or completed", domain.ErrInvalidInput)
	}
	task.Status = status

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	return task, nil
}

// Delete removes a task the actor created, or any task for admins.
func (s *TaskService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(IsTaskOwnerOrAdmin(actor, task), "delete this task"); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}

// Assign hands a task to another user. Admin only; the creator is unchanged.
func (s *TaskService) Assign(ctx context.Context, actor domain.Actor, taskID, userID string) (*domain.Task, error) {
	if err := authorize(IsAdmin(actor), "assign tasks"); err != nil {
		return nil, err
	}
	if taskID == "" || userID == "" {
		return nil, fmt.Errorf("%w: taskId and userId are required", domain.ErrInvalidInput)
	}

	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, fmt.Errorf("task: %w", err)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}

	if err := s.tasks.UpdateAssignee(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, taskID)
}

func applyPatch(task *domain.Task, patch domain.TaskPatch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		task.Title = title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return fmt.Errorf("%w: description cannot be empty", domain.ErrInvalidInput)
		}
		task.Description = description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return fmt.Errorf("%w: status must be pending, in-progress, or completed", domain.ErrInvalidInput)
		}
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return fmt.Errorf("%w: priority must be low, medium, or high", domain.ErrInvalidInput)
		}
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	return nil
}
