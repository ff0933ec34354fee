package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"TASKTRACKER_BACK-END/internal/models"
)

// MemoryStore keeps users and tasks in process memory. Used for local
// development and tests; data does not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
	tasks   map[uuid.UUID]models.Task
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
		tasks:   make(map[uuid.UUID]models.Task),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return ErrDuplicateEmail
	}
	s.users[user.ID] = *user
	s.byEmail[key] = user.ID
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) CreateTask(_ context.Context, task *models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID] = *task
	out := s.populate(*task)
	return &out, nil
}

func (s *MemoryStore) ListTasks(_ context.Context, filter TaskFilter, offset, limit int) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.match(filter)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	if offset < 0 || limit < 1 || offset >= len(matched) {
		return []models.Task{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]models.Task, 0, end-offset)
	for _, t := range matched[offset:end] {
		page = append(page, s.populate(t))
	}
	return page, nil
}

func (s *MemoryStore) CountTasks(_ context.Context, filter TaskFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.match(filter)), nil
}

func (s *MemoryStore) GetTask(_ context.Context, id, ownerID uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	out := s.populate(t)
	return &out, nil
}

func (s *MemoryStore) UpdateTask(_ context.Context, id, ownerID uuid.UUID, patch models.TaskPatch, updatedAt time.Time) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = updatedAt
	s.tasks[id] = t

	out := s.populate(t)
	return &out, nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }

// match must be called with s.mu held
func (s *MemoryStore) match(filter TaskFilter) []models.Task {
	search := strings.ToLower(filter.Search)
	out := make([]models.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerID != filter.OwnerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// populate must be called with s.mu held
func (s *MemoryStore) populate(t models.Task) models.Task {
	t.Owner = models.TaskOwner{ID: t.OwnerID}
	if u, ok := s.users[t.OwnerID]; ok {
		t.Owner.Name = u.Name
		t.Owner.Email = u.Email
	}
	return t
}
