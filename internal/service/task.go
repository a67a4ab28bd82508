package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sagar-1103/taskify/internal/domain"
	"github.com/Sagar-1103/taskify/internal/repository"
	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
)

// Client-facing task messages.
const (
	MsgTaskNotFound  = "Task not found"
	MsgInvalidStatus = "Invalid task status"
)

// CreateTaskInput holds the parameters for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
}

// UpdateTaskInput holds the replacement values of a task. All fields are
// required.
type UpdateTaskInput struct {
	Title       string
	Description string
	Status      string
}

// TaskService implements task CRUD scoped to the authenticated owner.
type TaskService struct {
	tasks  repository.TaskRepository
	events EventPublisher
	logger *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(tasks repository.TaskRepository, events EventPublisher, logger *slog.Logger) *TaskService {
	return &TaskService{tasks: tasks, events: events, logger: logger}
}

// Create stores a new pending task for ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, in CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, apperrors.InvalidInput(MsgAllFieldsRequired)
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      domain.DefaultTaskStatus,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if err := s.events.TaskCreated(ctx, task); err != nil {
		s.logEventFailure(ctx, "task.created", task.ID, err)
	}

	return task, nil
}

// List returns the owner's tasks, newest first.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns one of the owner's tasks.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, taskError("get task", err)
	}
	return task, nil
}

// Update replaces title, description and status of one of the owner's tasks.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, in UpdateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" || strings.TrimSpace(in.Status) == "" {
		return nil, apperrors.InvalidInput(MsgAllFieldsRequired)
	}
	status, ok := domain.ParseTaskStatus(in.Status)
	if !ok {
		return nil, apperrors.InvalidInput(MsgInvalidStatus)
	}

	task, err := s.tasks.Update(ctx, ownerID, id, domain.TaskUpdate{
		Title:       title,
		Description: description,
		Status:      status,
	})
	if err != nil {
		return nil, taskError("update task", err)
	}

	if err := s.events.TaskUpdated(ctx, task); err != nil {
		s.logEventFailure(ctx, "task.updated", task.ID, err)
	}

	return task, nil
}

// Delete removes one of the owner's tasks.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.tasks.Delete(ctx, ownerID, id); err != nil {
		return taskError("delete task", err)
	}

	if err := s.events.TaskDeleted(ctx, ownerID, id); err != nil {
		s.logEventFailure(ctx, "task.deleted", id, err)
	}

	return nil
}

// Count summarizes the owner's tasks.
func (s *TaskService) Count(ctx context.Context, ownerID string) (domain.TaskCounts, error) {
	counts, err := s.tasks.CountByStatus(ctx, ownerID)
	if err != nil {
		return domain.TaskCounts{}, fmt.Errorf("count tasks: %w", err)
	}
	return counts, nil
}

func (s *TaskService) logEventFailure(ctx context.Context, eventType, taskID string, err error) {
	s.logger.ErrorContext(ctx, "failed to publish "+eventType+" event",
		slog.String("task_id", taskID),
		slog.String("error", err.Error()),
	)
}

func taskError(op string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFound(MsgTaskNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
