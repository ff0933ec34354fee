// Package storetest holds a behavioural test suite shared by every store backend.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"TASKTRACKER_BACK-END/internal/models"
	"TASKTRACKER_BACK-END/internal/store"
)

// Opener returns an empty store for one subtest
type Opener func(t *testing.T) store.Store

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// Run exercises a fresh store from open for every case
func Run(t *testing.T, open Opener) {
	t.Run("UserByEmailIsCaseInsensitive", func(t *testing.T) { testUserByEmail(t, open(t)) })
	t.Run("DuplicateEmail", func(t *testing.T) { testDuplicateEmail(t, open(t)) })
	t.Run("UserNotFound", func(t *testing.T) { testUserNotFound(t, open(t)) })
	t.Run("CreateTaskPopulatesOwner", func(t *testing.T) { testCreateTask(t, open(t)) })
	t.Run("ListOrderingAndPaging", func(t *testing.T) { testListPaging(t, open(t)) })
	t.Run("ListOwnerIsolation", func(t *testing.T) { testListIsolation(t, open(t)) })
	t.Run("ListSearch", func(t *testing.T) { testListSearch(t, open(t)) })
	t.Run("GetTaskScopedToOwner", func(t *testing.T) { testGetTask(t, open(t)) })
	t.Run("UpdateTaskPartial", func(t *testing.T) { testUpdateTask(t, open(t)) })
	t.Run("DeleteTask", func(t *testing.T) { testDeleteTask(t, open(t)) })
}

func newUser(t *testing.T, s store.Store, name, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Role:         models.RoleUser,
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func newTask(t *testing.T, s store.Store, owner *models.User, title string, offset time.Duration) *models.Task {
	t.Helper()
	created := baseTime.Add(offset)
	task := &models.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: "about " + title,
		Status:      models.StatusPending,
		OwnerID:     owner.ID,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	out, err := s.CreateTask(context.Background(), task)
	if err != nil {
		t.Fatalf("CreateTask(%s): %v", title, err)
	}
	return out
}

func testUserByEmail(t *testing.T, s store.Store) {
	u := newUser(t, s, "Alice", "alice@example.com")

	got, err := s.GetUserByEmail(context.Background(), "ALICE@Example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || got.Name != "Alice" || got.Role != models.RoleUser {
		t.Errorf("GetUserByEmail returned %+v, want user %s", got, u.ID)
	}
	if got.PasswordHash != u.PasswordHash {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, u.PasswordHash)
	}

	byID, err := s.GetUserByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Errorf("Email = %q", byID.Email)
	}
}

func testDuplicateEmail(t *testing.T, s store.Store) {
	newUser(t, s, "Alice", "alice@example.com")

	dup := &models.User{ID: uuid.New(), Name: "Other", Email: "Alice@Example.com", Role: models.RoleUser, CreatedAt: baseTime, UpdatedAt: baseTime}
	err := s.CreateUser(context.Background(), dup)
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("CreateUser duplicate: got %v, want ErrDuplicateEmail", err)
	}
}

func testUserNotFound(t *testing.T, s store.Store) {
	if _, err := s.GetUserByID(context.Background(), uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUserByID: got %v, want ErrNotFound", err)
	}
	if _, err := s.GetUserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUserByEmail: got %v, want ErrNotFound", err)
	}
}

func testCreateTask(t *testing.T, s store.Store) {
	u := newUser(t, s, "Alice", "alice@example.com")
	task := newTask(t, s, u, "Write report", 0)

	if task.Owner.ID != u.ID || task.Owner.Name != "Alice" || task.Owner.Email != "alice@example.com" {
		t.Errorf("Owner = %+v, want populated Alice", task.Owner)
	}
	if task.Status != models.StatusPending {
		t.Errorf("Status = %q", task.Status)
	}
	if !task.CreatedAt.Equal(baseTime) {
		t.Errorf("CreatedAt = %v, want %v", task.CreatedAt, baseTime)
	}
}

func testListPaging(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s, "Alice", "alice@example.com")
	for i := 0; i < 7; i++ {
		newTask(t, s, u, fmt.Sprintf("task %d", i), time.Duration(i)*time.Minute)
	}
	filter := store.TaskFilter{OwnerID: u.ID}

	total, err := s.CountTasks(ctx, filter)
	if err != nil {
		t.Fatalf("CountTasks: %v", err)
	}
	if total != 7 {
		t.Fatalf("CountTasks = %d, want 7", total)
	}

	first, err := s.ListTasks(ctx, filter, 0, 3)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	wantTitles := []string{"task 6", "task 5", "task 4"}
	if len(first) != len(wantTitles) {
		t.Fatalf("len = %d, want %d", len(first), len(wantTitles))
	}
	for i, want := range wantTitles {
		if first[i].Title != want {
			t.Errorf("first[%d].Title = %q, want %q", i, first[i].Title, want)
		}
	}

	last, err := s.ListTasks(ctx, filter, 6, 3)
	if err != nil {
		t.Fatalf("ListTasks last page: %v", err)
	}
	if len(last) != 1 || last[0].Title != "task 0" {
		t.Errorf("last page = %+v, want [task 0]", last)
	}

	beyond, err := s.ListTasks(ctx, filter, 30, 3)
	if err != nil {
		t.Fatalf("ListTasks beyond: %v", err)
	}
	if len(beyond) != 0 {
		t.Errorf("beyond last page returned %d tasks", len(beyond))
	}
}

func testListIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := newUser(t, s, "Alice", "alice@example.com")
	bob := newUser(t, s, "Bob", "bob@example.com")
	newTask(t, s, alice, "alice groceries", 0)
	newTask(t, s, bob, "bob groceries", time.Minute)

	for _, search := range []string{"", "groceries", "bob"} {
		tasks, err := s.ListTasks(ctx, store.TaskFilter{OwnerID: alice.ID, Search: search}, 0, 10)
		if err != nil {
			t.Fatalf("ListTasks(%q): %v", search, err)
		}
		for _, task := range tasks {
			if task.OwnerID != alice.ID {
				t.Errorf("search %q leaked task %q of another owner", search, task.Title)
			}
		}
	}
}

func testListSearch(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s, "Alice", "alice@example.com")
	newTask(t, s, u, "Buy Milk", 0)
	newTask(t, s, u, "Call the plumber", time.Minute)
	newTask(t, s, u, "50% off (sale)", 2*time.Minute)

	tests := []struct {
		search string
		want   int
	}{
		{"milk", 1},
		{"UMB", 1},
		{"l", 3},
		{"% off (", 1},
		{".*", 0},
		{"dentist", 0},
	}
	for _, tt := range tests {
		filter := store.TaskFilter{OwnerID: u.ID, Search: tt.search}
		tasks, err := s.ListTasks(ctx, filter, 0, 10)
		if err != nil {
			t.Fatalf("ListTasks(%q): %v", tt.search, err)
		}
		total, err := s.CountTasks(ctx, filter)
		if err != nil {
			t.Fatalf("CountTasks(%q): %v", tt.search, err)
		}
		if len(tasks) != tt.want || total != tt.want {
			t.Errorf("search %q: got %d tasks, total %d; want %d", tt.search, len(tasks), total, tt.want)
		}
	}
}

func testGetTask(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := newUser(t, s, "Alice", "alice@example.com")
	bob := newUser(t, s, "Bob", "bob@example.com")
	task := newTask(t, s, alice, "private", 0)

	got, err := s.GetTask(ctx, task.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetTask owner: %v", err)
	}
	if got.Title != "private" || got.Owner.Name != "Alice" {
		t.Errorf("GetTask = %+v", got)
	}
	if _, err := s.GetTask(ctx, task.ID, bob.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetTask foreign owner: got %v, want ErrNotFound", err)
	}
}

func testUpdateTask(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := newUser(t, s, "Alice", "alice@example.com")
	bob := newUser(t, s, "Bob", "bob@example.com")
	task := newTask(t, s, alice, "draft", 0)

	empty := ""
	completed := models.StatusCompleted
	later := baseTime.Add(time.Hour)
	got, err := s.UpdateTask(ctx, task.ID, alice.ID, models.TaskPatch{Description: &empty, Status: &completed}, later)
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got.Title != "draft" {
		t.Errorf("Title = %q, want unchanged", got.Title)
	}
	if got.Description != "" {
		t.Errorf("Description = %q, want cleared", got.Description)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("Status = %q", got.Status)
	}
	if !got.UpdatedAt.Equal(later) || !got.CreatedAt.Equal(baseTime) {
		t.Errorf("timestamps created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
	if got.Owner.Email != "alice@example.com" {
		t.Errorf("Owner = %+v", got.Owner)
	}

	title := "stolen"
	if _, err := s.UpdateTask(ctx, task.ID, bob.ID, models.TaskPatch{Title: &title}, later); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateTask foreign owner: got %v, want ErrNotFound", err)
	}
	reread, err := s.GetTask(ctx, task.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if reread.Title != "draft" {
		t.Errorf("foreign update changed title to %q", reread.Title)
	}
}

func testDeleteTask(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s, "Alice", "alice@example.com")
	task := newTask(t, s, u, "obsolete", 0)

	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := s.DeleteTask(ctx, task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second DeleteTask: got %v, want ErrNotFound", err)
	}
	total, err := s.CountTasks(ctx, store.TaskFilter{OwnerID: u.ID})
	if err != nil {
		t.Fatalf("CountTasks: %v", err)
	}
	if total != 0 {
		t.Errorf("CountTasks after delete = %d", total)
	}
}
