package service

import (
	"context"

	"github.com/Sagar-1103/taskify/internal/domain"
)

// EventPublisher emits domain events. Services treat publishing as best
// effort: a failure is logged and never fails the operation.
type EventPublisher interface {
	UserRegistered(ctx context.Context, u *domain.User) error
	TaskCreated(ctx context.Context, t *domain.Task) error
	TaskUpdated(ctx context.Context, t *domain.Task) error
	TaskDeleted(ctx context.Context, ownerID, taskID string) error
}
