package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/Sagar-1103/taskify/internal/domain"
	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
)

const ownerID = "owner-1"

func sampleTask(id string, created time.Time) *domain.Task {
	return &domain.Task{
		ID:          id,
		Title:       "Write docs",
		Description: "README and API reference",
		Status:      domain.TaskStatusPending,
		UserID:      ownerID,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestTaskRepository_Create(t *testing.T) {
	mt := newMockT(t)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.Create(context.Background(), sampleTask("t-1", testTime())))
	})

	mt.Run("server error", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad"}))

		err := repo.Create(context.Background(), sampleTask("t-1", testTime()))
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "insert task")
	})
}

func TestTaskRepository_ListByOwner(t *testing.T) {
	mt := newMockT(t)

	mt.Run("newest first", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		newer := sampleTask("t-2", testTime())
		older := sampleTask("t-1", testTime().Add(-time.Hour))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch, toDoc(mt, newer), toDoc(mt, older)))

		got, err := repo.ListByOwner(context.Background(), ownerID)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, *newer, got[0])
		assert.Equal(mt, *older, got[1])
	})

	mt.Run("empty", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch))

		got, err := repo.ListByOwner(context.Background(), ownerID)
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})
}

func TestTaskRepository_GetByID(t *testing.T) {
	mt := newMockT(t)

	mt.Run("found", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		task := sampleTask("t-1", testTime())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch, toDoc(mt, task)))

		got, err := repo.GetByID(context.Background(), ownerID, "t-1")
		require.NoError(mt, err)
		assert.Equal(mt, task, got)
	})

	mt.Run("legacy status label", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		task := sampleTask("t-1", testTime())
		task.Status = "progress"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch, toDoc(mt, task)))

		got, err := repo.GetByID(context.Background(), ownerID, "t-1")
		require.NoError(mt, err)
		assert.Equal(mt, domain.TaskStatusInProgress, got.Status)
	})

	mt.Run("not owned", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "intruder", "t-1")
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})
}

func TestTaskRepository_Update(t *testing.T) {
	mt := newMockT(t)

	mt.Run("returns updated document", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		stored := sampleTask("t-1", testTime())
		stored.Title = "Ship docs"
		stored.Status = domain.TaskStatusCompleted
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toDoc(mt, stored)}))

		got, err := repo.Update(context.Background(), ownerID, "t-1", domain.TaskUpdate{
			Title:       "Ship docs",
			Description: stored.Description,
			Status:      domain.TaskStatusCompleted,
		})
		require.NoError(mt, err)
		assert.Equal(mt, "Ship docs", got.Title)
		assert.Equal(mt, domain.TaskStatusCompleted, got.Status)
	})

	mt.Run("no match", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Update(context.Background(), ownerID, "t-9", domain.TaskUpdate{Title: "a", Description: "b", Status: domain.TaskStatusPending})
		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})
}

func TestTaskRepository_Delete(t *testing.T) {
	mt := newMockT(t)

	mt.Run("deleted", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, repo.Delete(context.Background(), ownerID, "t-1"))
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(mt, repo.Delete(context.Background(), ownerID, "t-1"), apperrors.ErrNotFound)
	})
}

func TestTaskRepository_CountByStatus(t *testing.T) {
	mt := newMockT(t)

	mt.Run("aggregates", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: int32(5)},
			{Key: "completed", Value: int32(2)},
		}))

		got, err := repo.CountByStatus(context.Background(), ownerID)
		require.NoError(mt, err)
		assert.Equal(mt, domain.TaskCounts{TotalTasks: 5, CompletedTasks: 2, ActiveTasks: 3}, got)
	})

	mt.Run("no tasks", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch))

		got, err := repo.CountByStatus(context.Background(), ownerID)
		require.NoError(mt, err)
		assert.Equal(mt, domain.TaskCounts{}, got)
	})
}
