package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/task-tracker/internal/domain"
)

const taskSelectColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date,
	t.created_by, t.assigned_to, t.created_at, t.updated_at,
	c.name, c.email, a.name, a.email`

const taskUserJoins = `JOIN users c ON c.id = t.created_by
	JOIN users a ON a.id = t.assigned_to`

// TaskRepository implements domain.TaskRepository using SQLite.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLite-backed TaskRepository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db.SqlDB}
}

// scanTask reads a row selected with taskSelectColumns. Any prefix
// destinations are scanned from the columns preceding them.
func scanTask(row rowScanner, prefix ...any) (*domain.Task, error) {
	var (
		t        domain.Task
		due      sql.NullTime
		creator  domain.UserRef
		assignee domain.UserRef
	)
	dest := append(prefix,
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &due,
		&t.CreatedBy, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt,
		&creator.Name, &creator.Email, &assignee.Name, &assignee.Email,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	t.DueDate = timePtr(due)
	creator.ID = t.CreatedBy
	assignee.ID = t.AssignedTo
	t.Creator = &creator
	t.Assignee = &assignee
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, due_date, created_by, assigned_to, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, task.Title, task.Description, task.Status, task.Priority, timeArg(task.DueDate),
		task.CreatedBy, task.AssignedTo, now, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: task references an unknown user", domain.ErrNotFound)
		}
		return fmt.Errorf("insert task: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_tasks (user_id, task_id) VALUES (?, ?)`, task.CreatedBy, id); err != nil {
		return fmt.Errorf("append user task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskSelectColumns+` FROM tasks t `+taskUserJoins+` WHERE t.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	return r.list(ctx,
		`SELECT `+taskSelectColumns+` FROM tasks t `+taskUserJoins+`
		 WHERE t.created_by = ? OR t.assigned_to = ?
		 ORDER BY t.created_at DESC, t.rowid DESC`, userID, userID)
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]domain.Task, error) {
	return r.list(ctx,
		`SELECT `+taskSelectColumns+` FROM tasks t `+taskUserJoins+`
		 ORDER BY t.created_at DESC, t.rowid DESC`)
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Update writes the mutable fields of task. Creator and assignee are not
// touched.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, updated_at = ?
		 WHERE id = ?`,
		task.Title, task.Description, task.Status, task.Priority, timeArg(task.DueDate), now, task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) UpdateAssignee(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET assigned_to = ?, updated_at = ? WHERE id = ?`,
		userID, time.Now().UTC(), id)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: assignee does not exist", domain.ErrNotFound)
		}
		return fmt.Errorf("update task assignee: %w", err)
	}
	return requireAffected(result)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
