package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sagar-1103/taskify/internal/auth"
	"github.com/Sagar-1103/taskify/internal/config"
	"github.com/Sagar-1103/taskify/internal/event"
	handler "github.com/Sagar-1103/taskify/internal/handler/http"
	"github.com/Sagar-1103/taskify/internal/service"
	"github.com/Sagar-1103/taskify/pkg/health"
	pkgkafka "github.com/Sagar-1103/taskify/pkg/kafka"
	"github.com/Sagar-1103/taskify/pkg/middleware"
	"github.com/Sagar-1103/taskify/pkg/tracing"
)

// Version is reported as the service.version trace attribute and by the
// version command. Release builds override it with -ldflags.
var Version = "0.1.0"

// App wires together all dependencies and runs the Taskify backend.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	storage        *storage
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
// Configuration errors surface here, before the server accepts requests.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tcfg := cfg.TracingConfig()
	tcfg.ServiceVersion = Version
	tracerShutdown, err := tracing.Init(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	tokens, err := auth.NewTokenManager(cfg.TokenConfig())
	if err != nil {
		return nil, fmt.Errorf("configure tokens: %w", err)
	}
	hasher, err := auth.NewHasher(cfg.PasswordHashAlgorithm, cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("configure password hasher: %w", err)
	}
	logger.Info("password hasher configured", slog.String("algorithm", hasher.Algorithm()))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	st, err := openStorage(ctx, cfg, logger, reg)
	if err != nil {
		return nil, err
	}
	if err := st.migrate(ctx); err != nil {
		_ = st.close(context.Background())
		return nil, fmt.Errorf("migrate %s: %w", st.name, err)
	}

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical(st.name, st.ping)

	// Events are optional: without brokers nothing is published.
	var (
		producer  *pkgkafka.Producer
		publisher service.EventPublisher = event.Noop{}
	)
	if len(cfg.KafkaBrokers) > 0 {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, logger)
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	logger.Info("health checks registered", slog.Any("checks", healthHandler.Names()))

	authService := service.NewAuthService(st.users, tokens, hasher, publisher, service.AuthOptions{
		RevokeTokensOnPasswordChange: cfg.RevokeTokensOnPasswordChange,
	}, logger)
	taskService := service.NewTaskService(st.tasks, publisher, logger)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:           authService,
		Tasks:          taskService,
		Gate:           auth.NewGate(tokens, st.users, logger),
		Health:         healthHandler,
		Metrics:        middleware.NewHTTPMetrics(reg, config.ServiceName),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		TracingService: config.ServiceName,
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowCredentials: cfg.CORSAllowCredentials,
		},
		Logger: logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		storage:        st,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("backend", a.storage.name),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// Kafka producer, storage.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Flush after the HTTP drain so spans of in-flight requests are exported.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer storageCancel()
	if err := a.storage.close(storageCtx); err != nil {
		a.logger.Error("storage close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
