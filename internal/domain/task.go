package domain

import (
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// DefaultTaskStatus is assigned to new tasks.
const DefaultTaskStatus = TaskStatusPending

var taskStatusAliases = map[string]TaskStatus{
	"pending":     TaskStatusPending,
	"in_progress": TaskStatusInProgress,
	"in-progress": TaskStatusInProgress,
	"in progress": TaskStatusInProgress,
	"progress":    TaskStatusInProgress,
	"completed":   TaskStatusCompleted,
}

// ParseTaskStatus normalizes a client-supplied status. Matching ignores case
// and surrounding space and accepts the labels older clients send
// ("progress", "In Progress").
func ParseTaskStatus(s string) (TaskStatus, bool) {
	st, ok := taskStatusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// Valid reports whether s is a canonical status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// NormalizeStatus rewrites a legacy stored label such as "progress" to its
// canonical status. Unknown labels are left as they are.
func (t *Task) NormalizeStatus() {
	if t.Status.Valid() {
		return
	}
	if st, ok := ParseTaskStatus(string(t.Status)); ok {
		t.Status = st
	}
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          string     `json:"_id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Status      TaskStatus `json:"status" bson:"status"`
	UserID      string     `json:"userId" bson:"userId"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// TaskUpdate carries the replaceable fields of a task.
type TaskUpdate struct {
	Title       string
	Description string
	Status      TaskStatus
}

// TaskCounts summarizes a user's tasks. ActiveTasks is every task that is not
// completed.
type TaskCounts struct {
	TotalTasks     int64 `json:"totalTasks"`
	CompletedTasks int64 `json:"completedTasks"`
	ActiveTasks    int64 `json:"activeTasks"`
}

// NewTaskCounts derives ActiveTasks from total and completed.
func NewTaskCounts(total, completed int64) TaskCounts {
	return TaskCounts{TotalTasks: total, CompletedTasks: completed, ActiveTasks: total - completed}
}
