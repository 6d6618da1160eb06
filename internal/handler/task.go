package handler

import (
	"net/http"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/service"
)

// TaskHandler handles task HTTP requests.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// HandleList returns the tasks the caller created or is assigned to.
// GET /tasks
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	tasks, err := h.tasks.ListMine(r.Context(), actor)
	if err != nil {
		writeServiceError(w, "list tasks", err)
		return
	}

	writeSuccess(w, http.StatusOK, toTaskDTOs(tasks), "")
}

// HandleListAll returns every task.
// GET /admin/tasks
func (h *TaskHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	tasks, err := h.tasks.ListAll(r.Context(), actor)
	if err != nil {
		writeServiceError(w, "list all tasks", err)
		return
	}

	writeSuccess(w, http.StatusOK, toTaskDTOs(tasks), "")
}

// HandleCreate adds a task owned by and assigned to the caller.
// POST /tasks
// Request: {"title":"...","description":"...","priority"?:"low|medium|high","dueDate"?:"..."}
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Priority    string  `json:"priority"`
		DueDate     *string `json:"dueDate"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeServiceError(w, "create task", err)
		return
	}

	due, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		writeServiceError(w, "create task", err)
		return
	}

	task, err := h.tasks.Create(r.Context(), actor, service.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     due,
	})
	if err != nil {
		writeServiceError(w, "create task", err)
		return
	}

	writeSuccess(w, http.StatusCreated, toTaskDTO(task), "Task created.")
}

// HandleGet returns a single task.
// GET /tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	task, err := h.tasks.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "get task", err)
		return
	}

	writeSuccess(w, http.StatusOK, toTaskDTO(task), "")
}

// HandleUpdate applies a partial update. Only title, description, status,
// priority and dueDate are accepted; any other field is rejected.
// PUT /tasks/{id}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req struct {
		Title       *string              `json:"title"`
		Description *string              `json:"description"`
		Status      *domain.TaskStatus   `json:"status"`
		Priority    *domain.TaskPriority `json:"priority"`
		DueDate     *string              `json:"dueDate"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeServiceError(w, "update task", err)
		return
	}

	due, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		writeServiceError(w, "update task", err)
		return
	}

	task, err := h.tasks.Update(r.Context(), actor, r.PathValue("id"), domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     due,
	})
	if err != nil {
		writeServiceError(w, "update task", err)
		return
	}

	writeSuccess(w, http.StatusOK, toTaskDTO(task), "Task updated.")
}

// HandleUpdateStatus moves a task to a new status.
// PATCH /tasks/{id}/status
// Request: {"status":"pending|in-progress|completed"}
func (h *TaskHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req struct {
		Status domain.TaskStatus `json:"status"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeServiceError(w, "update task status", err)
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), actor, r.PathValue("id"), req.Status)
	if err != nil {
		writeServiceError(w, "update task status", err)
		return
	}

	writeSuccess(w, http.StatusOK, toTaskDTO(task), "Task status updated.")
}

// HandleDelete removes a task.
// DELETE /tasks/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	if err := h.tasks.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, "delete task", err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Task deleted.")
}

// HandleAssign hands a task to another user.
// POST /tasks/assign
// Request: {"taskId":"...","userId":"..."}
func (h *TaskHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req struct {
		TaskID string `json:"taskId"`
		UserID string `json:"userId"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeServiceError(w, "assign task", err)
		return
	}

	task, err := h.tasks.Assign(r.Context(), actor, req.TaskID, req.UserID)
	if err != nil {
		writeServiceError(w, "assign task", err)
		return
	}

	writeSuccess(w, http.StatusOK, toTaskDTO(task), "Task assigned.")
}
