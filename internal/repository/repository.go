package repository

import (
	"context"

	"github.com/Sagar-1103/taskify/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields an AlreadyExists error.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update replaces the mutable fields of an existing user.
	Update(ctx context.Context, user *domain.User) error

	// SetRefreshToken stores the digest of the user's current refresh token.
	// An empty digest clears it.
	SetRefreshToken(ctx context.Context, id, tokenHash string) error
}

// TaskRepository defines the interface for task persistence operations.
// Every lookup is scoped to the owning user; a task owned by someone else is
// reported as not found.
type TaskRepository interface {
	// Create inserts a new task.
	Create(ctx context.Context, task *domain.Task) error

	// ListByOwner returns the owner's tasks, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)

	// GetByID retrieves one of the owner's tasks.
	GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error)

	// Update replaces title, description and status and returns the stored task.
	Update(ctx context.Context, ownerID, id string, upd domain.TaskUpdate) (*domain.Task, error)

	// Delete removes one of the owner's tasks.
	Delete(ctx context.Context, ownerID, id string) error

	// CountByStatus summarizes the owner's tasks.
	CountByStatus(ctx context.Context, ownerID string) (domain.TaskCounts, error)
}
