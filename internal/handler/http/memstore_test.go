package http

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Sagar-1103/taskify/internal/domain"
	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
)

// ============================================================================
// In-memory repositories
// ============================================================================

type memUsers struct {
	mu   sync.Mutex
	byID map[string]domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]domain.User)}
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return apperrors.AlreadyExists("User with email already exists")
		}
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return apperrors.ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) SetRefreshToken(_ context.Context, id, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.RefreshToken = tokenHash
	m.byID[id] = u
	return nil
}

func (m *memUsers) refreshToken(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].RefreshToken
}

type memTasks struct {
	mu   sync.Mutex
	byID map[string]domain.Task
}

func newMemTasks() *memTasks {
	return &memTasks{byID: make(map[string]domain.Task)}
}

func (m *memTasks) Create(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[t.ID] = *t
	return nil
}

func (m *memTasks) ListByOwner(_ context.Context, ownerID string) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := []domain.Task{}
	for _, t := range m.byID {
		if t.UserID == ownerID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
	return tasks, nil
}

func (m *memTasks) GetByID(_ context.Context, ownerID, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.UserID != ownerID {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

func (m *memTasks) Update(_ context.Context, ownerID, id string, upd domain.TaskUpdate) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.UserID != ownerID {
		return nil, apperrors.ErrNotFound
	}
	t.Title = upd.Title
	t.Description = upd.Description
	t.Status = upd.Status
	t.UpdatedAt = time.Now().UTC()
	m.byID[id] = t
	return &t, nil
}

func (m *memTasks) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.UserID != ownerID {
		return apperrors.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memTasks) CountByStatus(_ context.Context, ownerID string) (domain.TaskCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total, completed int64
	for _, t := range m.byID {
		if t.UserID != ownerID {
			continue
		}
		total++
		if t.Status == domain.TaskStatusCompleted {
			completed++
		}
	}
	return domain.NewTaskCounts(total, completed), nil
}
