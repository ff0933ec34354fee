package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"TASKTRACKER_BACK-END/internal/apperrors"
	"TASKTRACKER_BACK-END/internal/config"
	"TASKTRACKER_BACK-END/internal/models"
	"TASKTRACKER_BACK-END/internal/store"
)

const taskNotFound = "Task not found"

// ListTasksInput selects one page of the caller's tasks
type ListTasksInput struct {
	Page     int
	PageSize int
	Search   string
}

// TaskPage is one pagination slice plus totals over the whole filtered set
type TaskPage struct {
	Tasks       []models.Task
	CurrentPage int
	TotalPages  int
	TotalTasks  int
}

// CreateTaskInput is the create payload
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
}

// UpdateTaskInput is a partial update; nil fields are left unchanged
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
}

// TaskService implements the task query and mutation operations
type TaskService struct {
	tasks        store.TaskStore
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

// NewTaskService creates a new TaskService instance
func NewTaskService(tasks store.TaskStore, paging config.PaginationConfig) *TaskService {
	return &TaskService{
		tasks:        tasks,
		defaultLimit: paging.DefaultLimit,
		maxLimit:     paging.MaxLimit,
		now:          time.Now,
	}
}

// List returns the page of the principal's tasks matching in.Search,
// newest first. A page past the end is empty, not an error.
func (s *TaskService) List(ctx context.Context, p models.Principal, in ListTasksInput) (*TaskPage, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 {
		size = s.defaultLimit
	}
	if s.maxLimit > 0 && size > s.maxLimit {
		size = s.maxLimit
	}

	filter := store.TaskFilter{OwnerID: p.UserID, Search: in.Search}

	// A page whose offset does not fit in an int is past any real result set
	tasks := []models.Task{}
	if page-1 <= (math.MaxInt-size)/size {
		var err error
		tasks, err = s.tasks.ListTasks(ctx, filter, (page-1)*size, size)
		if err != nil {
			return nil, apperrors.Store("Failed to list tasks", err)
		}
	}
	// Counted separately; may drift from the page under concurrent writes
	total, err := s.tasks.CountTasks(ctx, filter)
	if err != nil {
		return nil, apperrors.Store("Failed to count tasks", err)
	}

	return &TaskPage{
		Tasks:       tasks,
		CurrentPage: page,
		TotalPages:  (total + size - 1) / size,
		TotalTasks:  total,
	}, nil
}

// Get returns one of the principal's tasks
func (s *TaskService) Get(ctx context.Context, p models.Principal, taskID string) (*models.Task, error) {
	id, err := uuid.Parse(taskID)
	if err != nil {
		return nil, apperrors.NotFound(taskNotFound)
	}

	task, err := s.tasks.GetTask(ctx, id, p.UserID)
	if err != nil {
		return nil, storeErr(err, "Failed to load task")
	}
	return task, nil
}

// Create stores a new task owned by the principal
func (s *TaskService) Create(ctx context.Context, p models.Principal, in CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.Validation("Title is required")
	}

	status := models.StatusPending
	if in.Status != "" {
		st, err := parseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}

	now := s.now().UTC()
	task, err := s.tasks.CreateTask(ctx, &models.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: in.Description,
		Status:      status,
		OwnerID:     p.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, apperrors.Store("Failed to create task", err)
	}
	return task, nil
}

// Update applies the provided fields to one of the principal's tasks. A task
// owned by someone else is reported exactly like a missing one.
func (s *TaskService) Update(ctx context.Context, p models.Principal, taskID string, in UpdateTaskInput) (*models.Task, error) {
	var patch models.TaskPatch
	if in.Title != nil {
		if title := strings.TrimSpace(*in.Title); title != "" {
			patch.Title = &title
		}
	}
	if in.Description != nil {
		description := *in.Description
		patch.Description = &description
	}
	if in.Status != nil && *in.Status != "" {
		st, err := parseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &st
	}

	id, err := uuid.Parse(taskID)
	if err != nil {
		return nil, apperrors.NotFound(taskNotFound)
	}

	task, err := s.tasks.UpdateTask(ctx, id, p.UserID, patch, s.now().UTC())
	if err != nil {
		return nil, storeErr(err, "Failed to update task")
	}
	return task, nil
}

// Delete removes any task by id. Only admins may delete, and ownership is not checked.
func (s *TaskService) Delete(ctx context.Context, p models.Principal, taskID string) error {
	if !p.IsAdmin() {
		return apperrors.Authz("Only admins can delete tasks")
	}

	id, err := uuid.Parse(taskID)
	if err != nil {
		return apperrors.NotFound(taskNotFound)
	}

	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return storeErr(err, "Failed to delete task")
	}
	return nil
}

func parseStatus(raw string) (models.TaskStatus, error) {
	st := models.TaskStatus(strings.TrimSpace(raw))
	if !st.Valid() {
		return "", apperrors.Validation("Status must be Pending or Completed")
	}
	return st, nil
}

func storeErr(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound(taskNotFound)
	}
	return apperrors.Store(message, err)
}
