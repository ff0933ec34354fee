package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"TASKTRACKER_BACK-END/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user with the same email exists
	ErrDuplicateEmail = errors.New("email already registered")
)

// TaskFilter selects the tasks visible to one owner
type TaskFilter struct {
	OwnerID uuid.UUID
	// Search restricts to titles containing it, case-insensitively. Empty matches all.
	Search string
}

// UserStore persists user credentials
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TaskStore persists tasks. Returned tasks carry a populated Owner.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	// ListTasks returns tasks ordered by created_at desc, id desc.
	ListTasks(ctx context.Context, filter TaskFilter, offset, limit int) ([]models.Task, error)
	CountTasks(ctx context.Context, filter TaskFilter) (int, error)
	GetTask(ctx context.Context, id, ownerID uuid.UUID) (*models.Task, error)
	// UpdateTask applies patch to the task matching both id and ownerID in a single write.
	UpdateTask(ctx context.Context, id, ownerID uuid.UUID, patch models.TaskPatch, updatedAt time.Time) (*models.Task, error)
	// DeleteTask removes the task by id alone.
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// Store is a complete persistence backend
type Store interface {
	UserStore
	TaskStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MongoStore)(nil)
)
