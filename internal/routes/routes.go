package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"TASKTRACKER_BACK-END/internal/handlers"
	"TASKTRACKER_BACK-END/internal/middleware"
)

// Handlers groups everything SetupRoutes mounts. GoogleAuth is optional.
type Handlers struct {
	Auth       *handlers.AuthHandler
	GoogleAuth *handlers.GoogleAuthHandler
	Tasks      *handlers.TasksHandler
	Health     *handlers.HealthHandler
}

// SetupRoutes configures all application routes on mux
func SetupRoutes(mux *http.ServeMux, verifier middleware.TokenVerifier, h Handlers) {
	requireAuth := middleware.AuthMiddleware(verifier)

	// Health check routes
	mux.HandleFunc("GET /healthz", h.Health.HealthCheck)
	mux.HandleFunc("GET /livez", h.Health.LivenessCheck)
	mux.HandleFunc("GET /readyz", h.Health.ReadinessCheck)

	// Authentication routes
	mux.HandleFunc("POST /api/auth/signup", h.Auth.Signup)
	mux.HandleFunc("POST /api/auth/signin", h.Auth.Signin)
	mux.HandleFunc("GET /api/auth/me", requireAuth(h.Auth.Me))

	if h.GoogleAuth != nil {
		mux.HandleFunc("GET /api/auth/google/login", h.GoogleAuth.GoogleLogin)
		mux.HandleFunc("GET /api/auth/google/callback", h.GoogleAuth.GoogleCallback)
	}

	// Task routes
	mux.HandleFunc("GET /api/tasks", requireAuth(h.Tasks.ListTasks))
	mux.HandleFunc("POST /api/tasks", requireAuth(h.Tasks.CreateTask))
	mux.HandleFunc("GET /api/tasks/{id}", requireAuth(h.Tasks.GetTask))
	mux.HandleFunc("PUT /api/tasks/{id}", requireAuth(h.Tasks.UpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", requireAuth(h.Tasks.DeleteTask))

	// Swagger UI
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Root route
	mux.HandleFunc("GET /{$}", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Task tracker backend is running."))
}
