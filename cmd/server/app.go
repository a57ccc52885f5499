package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/api"
	apimiddleware "github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/api/middleware"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/config"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/events"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/registry"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/service"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/service/auth"
	"github.com/aywengo/kafka-schema-reg-mcp-sub002/internal/task"
)

// application holds the wired service graph. Dependencies flow one way:
// config and logger feed the registry client and task manager, which
// feed the admin service, which feeds the handlers.
type application struct {
	config *config.Config
	logger *slog.Logger

	registryClient *registry.Client
	emitter        *events.InMemoryEmitter
	tasks          *task.Manager
	adminService   service.AdminService
	jwtService     auth.JWTService
}

// newApplication wires all application components from configuration.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	registryClient := registry.NewClient(cfg.Registry, logger)

	emitter := events.NewInMemoryEmitter(logger)
	emitter.RegisterHandler(events.NewLogHandler(logger))

	tasks := task.NewManager(
		task.ManagerConfig{WorkerCount: cfg.Task.WorkerCount},
		emitter,
		logger,
	)

	adminService, err := service.NewAdminService(registryClient, tasks, cfg.Task.FanoutLimit, logger)
	if err != nil {
		return nil, fmt.Errorf("create admin service: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("create jwt service: %w", err)
	}

	return &application{
		config:         cfg,
		logger:         logger,
		registryClient: registryClient,
		emitter:        emitter,
		tasks:          tasks,
		adminService:   adminService,
		jwtService:     jwtService,
	}, nil
}

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.config.Auth, app.jwtService, auth.NewBcryptVerifier())
	taskHandler := api.NewTaskHandler(app.tasks)
	operationHandler := api.NewOperationHandler(app.adminService)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Token issuance (public)
		r.Post("/auth/token", authHandler.IssueToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/tasks", taskHandler.ListTasks)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Delete("/tasks/{id}", taskHandler.CancelTask)

			r.Get("/operations", operationHandler.ListOperations)
			r.Post("/operations/cleanup", operationHandler.Cleanup)
			r.Post("/operations/migrate", operationHandler.Migrate)
			r.Post("/operations/export", operationHandler.Export)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
