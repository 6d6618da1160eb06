package handler

import (
	"fmt"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
)

// UserDTO is the JSON representation of a user. The password hash is never
// included.
type UserDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	Avatar      string  `json:"avatar"`
	Phone       string  `json:"phone"`
	DateOfBirth *string `json:"dateOfBirth"`
	LastLogin   *string `json:"lastLogin"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		Avatar:      u.Avatar,
		Phone:       u.Phone,
		DateOfBirth: formatDate(u.DateOfBirth),
		LastLogin:   formatDate(u.LastLoginAt),
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

// UserWithTasksDTO is a user together with the tasks in their task list.
type UserWithTasksDTO struct {
	UserDTO
	Tasks []TaskDTO `json:"tasks"`
}

func toUserWithTasksDTOs(users []domain.User) []UserWithTasksDTO {
	dtos := make([]UserWithTasksDTO, len(users))
	for i := range users {
		dtos[i] = UserWithTasksDTO{
			UserDTO: toUserDTO(&users[i]),
			Tasks:   toTaskDTOs(users[i].Tasks),
		}
	}
	return dtos
}

// UserRefDTO is the short form of a user embedded in tasks.
type UserRefDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserRefDTO(ref *domain.UserRef) *UserRefDTO {
	if ref == nil {
		return nil
	}
	return &UserRefDTO{ID: ref.ID, Name: ref.Name, Email: ref.Email}
}

// TaskDTO is the JSON representation of a task.
type TaskDTO struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	DueDate     *string     `json:"dueDate"`
	CreatedBy   string      `json:"createdBy"`
	AssignedTo  string      `json:"assignedTo"`
	Creator     *UserRefDTO `json:"creator,omitempty"`
	Assignee    *UserRefDTO `json:"assignee,omitempty"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     formatDate(t.DueDate),
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		Creator:     toUserRefDTO(t.Creator),
		Assignee:    toUserRefDTO(t.Assignee),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

func toTaskDTOs(tasks []domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = toTaskDTO(&tasks[i])
	}
	return dtos
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// parseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp or YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return &t, nil
}
