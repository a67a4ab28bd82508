package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sagar-1103/taskify/internal/domain"
	pkgkafka "github.com/Sagar-1103/taskify/pkg/kafka"
	"github.com/Sagar-1103/taskify/pkg/logger"
)

// Kafka topics. Events are keyed by aggregate id.
const (
	TopicUsers = "taskify.users"
	TopicTasks = "taskify.tasks"
)

// Event types.
const (
	TypeUserRegistered = "taskify.user.registered"
	TypeTaskCreated    = "taskify.task.created"
	TypeTaskUpdated    = "taskify.task.updated"
	TypeTaskDeleted    = "taskify.task.deleted"
)

// Aggregate types.
const (
	AggregateUser = "user"
	AggregateTask = "task"
)

// Source identifies this service in every event.
const Source = "taskify-backend"

// UserRegisteredData is the payload of a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskData is the payload of task.created and task.updated events.
type TaskData struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// TaskDeletedData is the payload of a task.deleted event.
type TaskDeletedData struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// Publisher writes an event to a topic. *pkgkafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes Taskify domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// UserRegistered publishes a user.registered event.
func (p *Producer) UserRegistered(ctx context.Context, u *domain.User) error {
	return p.publish(ctx, TopicUsers, TypeUserRegistered, u.ID, AggregateUser, UserRegisteredData{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	})
}

// TaskCreated publishes a task.created event.
func (p *Producer) TaskCreated(ctx context.Context, t *domain.Task) error {
	return p.publish(ctx, TopicTasks, TypeTaskCreated, t.ID, AggregateTask, taskData(t))
}

// TaskUpdated publishes a task.updated event.
func (p *Producer) TaskUpdated(ctx context.Context, t *domain.Task) error {
	return p.publish(ctx, TopicTasks, TypeTaskUpdated, t.ID, AggregateTask, taskData(t))
}

// TaskDeleted publishes a task.deleted event.
func (p *Producer) TaskDeleted(ctx context.Context, ownerID, taskID string) error {
	return p.publish(ctx, TopicTasks, TypeTaskDeleted, taskID, AggregateTask, TaskDeletedData{
		ID:     taskID,
		UserID: ownerID,
	})
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("event_type", eventType),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func taskData(t *domain.Task) TaskData {
	return TaskData{ID: t.ID, UserID: t.UserID, Title: t.Title, Status: string(t.Status)}
}

// Noop discards every event. It is used when no brokers are configured.
type Noop struct{}

func (Noop) UserRegistered(context.Context, *domain.User) error { return nil }
func (Noop) TaskCreated(context.Context, *domain.Task) error    { return nil }
func (Noop) TaskUpdated(context.Context, *domain.Task) error    { return nil }
func (Noop) TaskDeleted(context.Context, string, string) error  { return nil }
