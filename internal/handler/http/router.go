package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sagar-1103/taskify/internal/auth"
	"github.com/Sagar-1103/taskify/internal/service"
	"github.com/Sagar-1103/taskify/pkg/health"
	"github.com/Sagar-1103/taskify/pkg/httputil"
	"github.com/Sagar-1103/taskify/pkg/middleware"
)

// RouterConfig carries the dependencies of NewRouter. Metrics, MetricsHandler
// and TracingService are optional.
type RouterConfig struct {
	Auth           *service.AuthService
	Tasks          *service.TaskService
	Gate           *auth.Gate
	Health         *health.Handler
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	TracingService string
	CORS           middleware.CORSConfig
	Logger         *slog.Logger
}

type statusResponse struct {
	Status string `json:"status"`
}

// NewRouter creates a chi router with all Taskify routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	if cfg.TracingService != "" {
		r.Use(middleware.Tracing(cfg.TracingService))
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.RequestLogger(cfg.Logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.Fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httputil.Respond(w, http.StatusOK, "Taskify backend is running...", statusResponse{Status: "running"})
	})

	// Health check endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.LivenessHandler())
		r.Get("/health/ready", cfg.Health.ReadinessHandler())
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.RequireJSON)

		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Gate.Middleware)

			r.Post("/logout", authHandler.Logout)
			r.Patch("/reset-password", authHandler.ChangePassword)
		})
	})

	taskHandler := NewTaskHandler(cfg.Tasks, cfg.Logger)
	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.RequireJSON)
		r.Use(cfg.Gate.Middleware)

		r.Post("/", taskHandler.Create)
		r.Get("/", taskHandler.List)
		r.Get("/count", taskHandler.Count)
		r.Get("/{id}", taskHandler.Get)
		r.Put("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
	})

	return r
}
