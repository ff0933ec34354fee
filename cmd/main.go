// @title Task Tracker Backend API
// @version 1.0
// @description Multi-user task tracker with JWT authentication and admin-gated deletes
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "TASKTRACKER_BACK-END/docs" // This is required for swagger
	"TASKTRACKER_BACK-END/internal/config"
	"TASKTRACKER_BACK-END/internal/handlers"
	"TASKTRACKER_BACK-END/internal/middleware"
	"TASKTRACKER_BACK-END/internal/routes"
	"TASKTRACKER_BACK-END/internal/services"
	"TASKTRACKER_BACK-END/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("open %s store: %v", cfg.Store.Driver, err)
	}

	// --- Services + HTTP Handlers ---
	authService := services.NewAuthService(st, &cfg.JWT)
	taskService := services.NewTaskService(st, cfg.Pagination)

	h := routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Tasks:  handlers.NewTasksHandler(taskService),
		Health: handlers.NewHealthHandler(st, cfg.Store.Driver),
	}
	if cfg.IsGoogleOAuthConfigured() {
		h.GoogleAuth = handlers.NewGoogleAuthHandler(authService, cfg.GoogleOAuth)
	} else {
		log.Println("Google OAuth not configured, /api/auth/google routes disabled")
	}

	mux := http.NewServeMux()
	routes.SetupRoutes(mux, authService, h)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	handler := otelhttp.NewHandler(middleware.AccessLog(middleware.Recovery(c.Handler(mux))), cfg.Server.ServiceName)

	// --- HTTP Server + Graceful Shutdown ---
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on :%s (store=%s)", cfg.Server.Port, cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.Printf("Store close error: %v", err)
	}
	log.Println("Server stopped.")
}
