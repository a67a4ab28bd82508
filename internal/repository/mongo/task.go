package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sagar-1103/taskify/internal/domain"
	"github.com/Sagar-1103/taskify/pkg/database"
	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
)

// TaskRepository implements repository.TaskRepository using MongoDB.
type TaskRepository struct {
	collection *mongo.Collection
	tracer     *database.QueryTracer
}

// NewTaskRepository creates a new MongoDB-backed task repository.
func NewTaskRepository(db *mongo.Database, tracer *database.QueryTracer) *TaskRepository {
	return &TaskRepository{collection: db.Collection(TasksCollection), tracer: tracer}
}

func ownedBy(ownerID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: ownerID}}
}

// Create inserts a new task document.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (err error) {
	ctx, end := r.tracer.Start(ctx, "CreateTask", "tasks.insertOne")
	defer func() { end(err) }()

	if _, err = r.collection.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// ListByOwner returns all tasks of ownerID, newest first.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) (_ []domain.Task, err error) {
	ctx, end := r.tracer.Start(ctx, "ListTasks", "tasks.find")
	defer func() { end(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.collection.Find(ctx, bson.D{{Key: "userId", Value: ownerID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]domain.Task, 0)
	if err = cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	for i := range tasks {
		tasks[i].NormalizeStatus()
	}
	return tasks, nil
}

// GetByID retrieves a task owned by ownerID.
func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (_ *domain.Task, err error) {
	ctx, end := r.tracer.Start(ctx, "GetTask", "tasks.findOne")
	defer func() { end(err) }()

	var t domain.Task
	if err = r.collection.FindOne(ctx, ownedBy(ownerID, id)).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	t.NormalizeStatus()
	return &t, nil
}

// Update replaces the editable fields of a task owned by ownerID and returns
// the document as stored after the update.
func (r *TaskRepository) Update(ctx context.Context, ownerID, id string, upd domain.TaskUpdate) (_ *domain.Task, err error) {
	ctx, end := r.tracer.Start(ctx, "UpdateTask", "tasks.findOneAndUpdate")
	defer func() { end(err) }()

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: upd.Title},
		{Key: "description", Value: upd.Description},
		{Key: "status", Value: upd.Status},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t domain.Task
	if err = r.collection.FindOneAndUpdate(ctx, ownedBy(ownerID, id), update, opts).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &t, nil
}

// Delete removes a task owned by ownerID.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) (err error) {
	ctx, end := r.tracer.Start(ctx, "DeleteTask", "tasks.deleteOne")
	defer func() { end(err) }()

	res, err := r.collection.DeleteOne(ctx, ownedBy(ownerID, id))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountByStatus counts all and completed tasks of ownerID in a single
// aggregation.
func (r *TaskRepository) CountByStatus(ctx context.Context, ownerID string) (_ domain.TaskCounts, err error) {
	ctx, end := r.tracer.Start(ctx, "CountTasks", "tasks.aggregate")
	defer func() { end(err) }()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: ownerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "completed", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$status", string(domain.TaskStatusCompleted)}}},
					1,
					0,
				}},
			}}}},
		}}},
	}

	cur, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.TaskCounts{}, fmt.Errorf("count tasks: %w", err)
	}

	var rows []struct {
		Total     int64 `bson:"total"`
		Completed int64 `bson:"completed"`
	}
	if err = cur.All(ctx, &rows); err != nil {
		return domain.TaskCounts{}, fmt.Errorf("decode task counts: %w", err)
	}
	if len(rows) == 0 {
		return domain.NewTaskCounts(0, 0), nil
	}
	return domain.NewTaskCounts(rows[0].Total, rows[0].Completed), nil
}
