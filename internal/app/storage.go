package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sagar-1103/taskify/internal/config"
	"github.com/Sagar-1103/taskify/internal/repository"
	mongorepo "github.com/Sagar-1103/taskify/internal/repository/mongo"
	"github.com/Sagar-1103/taskify/internal/repository/postgres"
	"github.com/Sagar-1103/taskify/migrations"
	"github.com/Sagar-1103/taskify/pkg/database"
	"github.com/Sagar-1103/taskify/pkg/health"
)

// storage is one opened backend with its repositories.
type storage struct {
	name     string
	users    repository.UserRepository
	tasks    repository.TaskRepository
	ping     health.Checker
	migrate  func(ctx context.Context) error
	rollback func(ctx context.Context, steps int) error
	close    func(ctx context.Context) error
}

// openStorage connects to the configured backend. Pool metrics are
// registered with reg when it is non-nil.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*storage, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		return openPostgres(ctx, cfg, logger, reg)
	case config.BackendMongo:
		return openMongo(ctx, cfg, logger, reg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*storage, error) {
	pool, err := database.NewPostgresPool(ctx, cfg.PostgresConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if reg != nil {
		reg.MustRegister(database.NewPoolStatsCollector(pool, config.ServiceName))
	}

	tracer := database.NewQueryTracer(database.SystemPostgres, cfg.SlowQueryThreshold(), logger)
	return &storage{
		name:  config.BackendPostgres,
		users: postgres.NewUserRepository(pool, tracer),
		tasks: postgres.NewTaskRepository(pool, tracer),
		ping:  pool.Ping,
		migrate: func(ctx context.Context) error {
			return database.RunMigrations(ctx, pool, migrations.FS, logger)
		},
		rollback: func(ctx context.Context, steps int) error {
			return database.RollbackMigrations(ctx, pool, migrations.FS, steps, logger)
		},
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*storage, error) {
	mcfg := cfg.MongoConfig()
	if reg != nil {
		mcfg.PoolMonitor = database.NewMongoPoolMetrics(reg, config.ServiceName).Monitor()
	}

	client, err := database.NewMongoClient(ctx, mcfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	logger.Info("connected to MongoDB", slog.String("database", cfg.MongoDatabase))

	db := client.Database(cfg.MongoDatabase)
	tracer := database.NewQueryTracer(database.SystemMongo, cfg.SlowQueryThreshold(), logger)
	return &storage{
		name:  config.BackendMongo,
		users: mongorepo.NewUserRepository(db, tracer),
		tasks: mongorepo.NewTaskRepository(db, tracer),
		ping:  database.MongoPing(client),
		migrate: func(ctx context.Context) error {
			return mongorepo.EnsureIndexes(ctx, db, logger)
		},
		close: client.Disconnect,
	}, nil
}

// Migrate brings the configured backend's schema up to date: SQL migrations
// for postgres, indexes for mongo.
func Migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := openStorage(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			logger.Error("storage close error", slog.String("error", err.Error()))
		}
	}()

	if err := st.migrate(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", st.name, err)
	}
	logger.Info("schema up to date", slog.String("backend", st.name))
	return nil
}

// Rollback reverts the last steps SQL migrations. Only the postgres backend
// has versioned migrations to revert.
func Rollback(ctx context.Context, cfg *config.Config, logger *slog.Logger, steps int) error {
	if cfg.StorageBackend != config.BackendPostgres {
		return fmt.Errorf("rollback is not supported for the %s backend", cfg.StorageBackend)
	}

	st, err := openStorage(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			logger.Error("storage close error", slog.String("error", err.Error()))
		}
	}()

	if err := st.rollback(ctx, steps); err != nil {
		return fmt.Errorf("rollback %s: %w", st.name, err)
	}
	return nil
}
