package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the progress state of a task
type TaskStatus string

const (
	StatusPending   TaskStatus = "Pending"
	StatusCompleted TaskStatus = "Completed"
)

// Valid reports whether s is a known status
func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// TaskOwner is the populated view of the user who created a task
type TaskOwner struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Task represents a personal task owned by exactly one user
type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      TaskStatus `json:"status" db:"status"`
	OwnerID     uuid.UUID  `json:"owner_id" db:"owner_id"`
	Owner       TaskOwner  `json:"created_by" db:"-"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// TaskPatch carries the fields of a partial update; nil means "leave as is"
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
}
