package routes

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"TASKTRACKER_BACK-END/internal/config"
	"TASKTRACKER_BACK-END/internal/dto"
	"TASKTRACKER_BACK-END/internal/handlers"
	"TASKTRACKER_BACK-END/internal/services"
	"TASKTRACKER_BACK-END/internal/store"
)

type testServer struct {
	t   *testing.T
	mux *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := store.NewMemoryStore()
	authService := services.NewAuthService(st, &config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour})
	taskService := services.NewTaskService(st, config.PaginationConfig{DefaultLimit: 10, MaxLimit: 100})

	mux := http.NewServeMux()
	SetupRoutes(mux, authService, Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Tasks:  handlers.NewTasksHandler(taskService),
		Health: handlers.NewHealthHandler(st, config.DriverMemory),
	})
	return &testServer{t: t, mux: mux}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func (s *testServer) signup(name, email, role string) dto.AuthResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/signup", "", dto.RegisterRequest{Name: name, Email: email, Password: "password123", Role: role})
	expectStatus(s.t, rec, http.StatusCreated)
	return decode[dto.AuthResponse](s.t, rec)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	alice := s.signup("Alice", "alice@example.com", "")
	if alice.Token == "" || alice.User.Role != "user" || alice.User.Email != "alice@example.com" {
		t.Fatalf("signup response = %+v", alice)
	}

	rec := s.do(http.MethodPost, "/api/auth/signup", "", dto.RegisterRequest{Name: "A", Email: "ALICE@example.com", Password: "pw"})
	expectStatus(t, rec, http.StatusBadRequest)
	if e := decode[dto.ErrorResponse](t, rec); e.Message != "User already exists" {
		t.Errorf("duplicate signup message = %q", e.Message)
	}

	rec = s.do(http.MethodPost, "/api/auth/signin", "", dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = s.do(http.MethodPost, "/api/auth/signin", "", dto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	expectStatus(t, rec, http.StatusOK)
	signin := decode[dto.AuthResponse](t, rec)
	if signin.User.ID != alice.User.ID {
		t.Errorf("signin user id = %q, want %q", signin.User.ID, alice.User.ID)
	}

	rec = s.do(http.MethodGet, "/api/auth/me", signin.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	if me := decode[dto.UserResponse](t, rec); me.Email != "alice@example.com" {
		t.Errorf("me = %+v", me)
	}

	expectStatus(t, s.do(http.MethodGet, "/api/auth/me", "", nil), http.StatusUnauthorized)
	expectStatus(t, s.do(http.MethodGet, "/api/auth/me", "not-a-jwt", nil), http.StatusUnauthorized)
	expectStatus(t, s.do(http.MethodPost, "/api/auth/signin", "", "{bad json"), http.StatusBadRequest)
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("Alice", "alice@example.com", "")
	bob := s.signup("Bob", "bob@example.com", "")
	admin := s.signup("Root", "root@example.com", "admin")

	rec := s.do(http.MethodGet, "/api/tasks", alice.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"tasks":[]`) {
		t.Errorf("empty list should encode tasks as [], got %s", rec.Body.String())
	}

	expectStatus(t, s.do(http.MethodPost, "/api/tasks", alice.Token, dto.CreateTaskRequest{Title: "  "}), http.StatusBadRequest)
	expectStatus(t, s.do(http.MethodPost, "/api/tasks", alice.Token, dto.CreateTaskRequest{Title: "x", Status: "Done"}), http.StatusBadRequest)
	expectStatus(t, s.do(http.MethodPost, "/api/tasks", "", dto.CreateTaskRequest{Title: "x"}), http.StatusUnauthorized)

	rec = s.do(http.MethodPost, "/api/tasks", alice.Token, dto.CreateTaskRequest{Title: "Write report", Description: "Q3"})
	expectStatus(t, rec, http.StatusCreated)
	task := decode[dto.TaskResponse](t, rec)
	if task.Status != "Pending" || task.CreatedBy.Email != "alice@example.com" || task.CreatedBy.Name != "Alice" {
		t.Fatalf("created task = %+v", task)
	}

	rec = s.do(http.MethodGet, "/api/tasks?page=1&limit=5&search=REPORT", alice.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	list := decode[dto.TaskListResponse](t, rec)
	if list.TotalTasks != 1 || list.CurrentPage != 1 || list.TotalPages != 1 || len(list.Tasks) != 1 {
		t.Errorf("list = %+v", list)
	}

	rec = s.do(http.MethodGet, "/api/tasks", bob.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	if other := decode[dto.TaskListResponse](t, rec); other.TotalTasks != 0 {
		t.Errorf("bob sees %d tasks, want 0", other.TotalTasks)
	}

	path := "/api/tasks/" + task.ID
	expectStatus(t, s.do(http.MethodGet, path, bob.Token, nil), http.StatusNotFound)
	expectStatus(t, s.do(http.MethodPut, path, bob.Token, map[string]string{"status": "Completed"}), http.StatusNotFound)
	expectStatus(t, s.do(http.MethodGet, "/api/tasks/not-a-uuid", alice.Token, nil), http.StatusNotFound)

	rec = s.do(http.MethodPut, path, alice.Token, map[string]string{"status": "Completed"})
	expectStatus(t, rec, http.StatusOK)
	updated := decode[dto.TaskResponse](t, rec)
	if updated.Status != "Completed" || updated.Title != "Write report" || updated.Description != "Q3" {
		t.Errorf("updated task = %+v", updated)
	}

	rec = s.do(http.MethodGet, path, alice.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[dto.TaskResponse](t, rec); got.Status != "Completed" {
		t.Errorf("status after update = %q", got.Status)
	}

	expectStatus(t, s.do(http.MethodDelete, path, alice.Token, nil), http.StatusForbidden)

	rec = s.do(http.MethodDelete, path, admin.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	if msg := decode[dto.MessageResponse](t, rec); msg.Message != "Task deleted successfully" {
		t.Errorf("delete message = %q", msg.Message)
	}
	expectStatus(t, s.do(http.MethodDelete, path, admin.Token, nil), http.StatusNotFound)
	expectStatus(t, s.do(http.MethodGet, path, alice.Token, nil), http.StatusNotFound)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t)

	expectStatus(t, s.do(http.MethodGet, "/healthz", "", nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodGet, "/livez", "", nil), http.StatusOK)

	rec := s.do(http.MethodGet, "/readyz", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if h := decode[dto.HealthResponse](t, rec); h.Status != "ready" {
		t.Errorf("readyz status = %q", h.Status)
	}

	expectStatus(t, s.do(http.MethodGet, "/api/auth/google/login", "", nil), http.StatusNotFound)
	expectStatus(t, s.do(http.MethodPatch, "/api/tasks", "", nil), http.StatusMethodNotAllowed)
}

func TestListTasksQueryParams(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("Alice", "alice@example.com", "")
	for i := 0; i < 12; i++ {
		expectStatus(t, s.do(http.MethodPost, "/api/tasks", alice.Token, dto.CreateTaskRequest{Title: "task"}), http.StatusCreated)
	}

	tests := []struct {
		query     string
		wantPage  int
		wantPages int
		wantLen   int
		wantTotal int
	}{
		{"", 1, 2, 10, 12},
		{"?page=3&limit=5", 3, 3, 2, 12},
		{"?page=2&pageSize=4", 2, 3, 4, 12},
		{"?page=abc&limit=-1", 1, 2, 10, 12},
		{"?page=9", 9, 2, 0, 12},
		{"?search=nothing", 1, 0, 0, 0},
		{"?page=" + strconv.Itoa(math.MaxInt), math.MaxInt, 2, 0, 12},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := s.do(http.MethodGet, "/api/tasks"+tt.query, alice.Token, nil)
			expectStatus(t, rec, http.StatusOK)
			list := decode[dto.TaskListResponse](t, rec)
			if list.TotalTasks != tt.wantTotal {
				t.Errorf("totalTasks = %d, want %d", list.TotalTasks, tt.wantTotal)
			}
			if list.Tasks == nil {
				t.Error("tasks must encode as [], not null")
			}
			if list.CurrentPage != tt.wantPage || list.TotalPages != tt.wantPages || len(list.Tasks) != tt.wantLen {
				t.Errorf("page=%d pages=%d len=%d, want %d %d %d",
					list.CurrentPage, list.TotalPages, len(list.Tasks), tt.wantPage, tt.wantPages, tt.wantLen)
			}
		})
	}
}
