package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Sagar-1103/taskify/internal/domain"
	"github.com/Sagar-1103/taskify/pkg/database"
	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
)

const taskColumns = `id, title, description, status, user_id, created_at, updated_at`

// TaskRepository implements repository.TaskRepository using PostgreSQL.
type TaskRepository struct {
	db     database.DBTX
	tracer *database.QueryTracer
}

// NewTaskRepository creates a new PostgreSQL-backed task repository.
func NewTaskRepository(db database.DBTX, tracer *database.QueryTracer) *TaskRepository {
	return &TaskRepository{db: db, tracer: tracer}
}

// Create inserts a new task into the database.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (err error) {
	query := `
		INSERT INTO tasks (id, title, description, status, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := r.tracer.Start(ctx, "CreateTask", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		t.UserID,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}

// ListByOwner returns all tasks of ownerID, newest first.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) (_ []domain.Task, err error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	ctx, end := r.tracer.Start(ctx, "ListTasks", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		if isInvalidID(err) {
			return []domain.Task{}, nil
		}
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// GetByID retrieves a task owned by ownerID.
func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (_ *domain.Task, err error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	ctx, end := r.tracer.Start(ctx, "GetTask", query)
	defer func() { end(err) }()

	t, err := scanTask(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	return t, nil
}

// Update replaces the editable fields of a task owned by ownerID and returns
// the updated row.
func (r *TaskRepository) Update(ctx context.Context, ownerID, id string, upd domain.TaskUpdate) (_ *domain.Task, err error) {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
		RETURNING ` + taskColumns

	ctx, end := r.tracer.Start(ctx, "UpdateTask", query)
	defer func() { end(err) }()

	t, err := scanTask(r.db.QueryRow(ctx, query,
		upd.Title,
		upd.Description,
		string(upd.Status),
		time.Now().UTC(),
		id,
		ownerID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	return t, nil
}

// Delete removes a task owned by ownerID.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) (err error) {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	ctx, end := r.tracer.Start(ctx, "DeleteTask", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		if isInvalidID(err) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// CountByStatus counts all and completed tasks of ownerID in one scan.
func (r *TaskRepository) CountByStatus(ctx context.Context, ownerID string) (_ domain.TaskCounts, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2)
		FROM tasks
		WHERE user_id = $1`

	ctx, end := r.tracer.Start(ctx, "CountTasks", query)
	defer func() { end(err) }()

	var total, completed int64
	err = r.db.QueryRow(ctx, query, ownerID, string(domain.TaskStatusCompleted)).Scan(&total, &completed)
	if err != nil {
		if isInvalidID(err) {
			return domain.NewTaskCounts(0, 0), nil
		}
		return domain.TaskCounts{}, fmt.Errorf("count tasks: %w", err)
	}

	return domain.NewTaskCounts(total, completed), nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t      domain.Task
		status string
	)
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&t.UserID,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	return &t, nil
}
