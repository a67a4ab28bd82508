package cli

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sagar-1103/taskify/internal/app"
	"github.com/Sagar-1103/taskify/internal/config"
	"github.com/Sagar-1103/taskify/pkg/logger"
)

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			log.Info("starting taskify backend",
				slog.String("environment", cfg.Environment),
				slog.Int("http_port", cfg.Port),
				slog.String("storage_backend", cfg.StorageBackend),
			)

			application, err := app.NewApp(cfg, log)
			if err != nil {
				return fmt.Errorf("initialize application: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := application.Run(ctx); err != nil {
				return err
			}
			log.Info("taskify backend stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides PORT)")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations (postgres) or ensure indexes (mongo)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), cfg, log)
		},
	}
	cmd.AddCommand(newMigrateDownCommand())
	return cmd
}

func newMigrateDownCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent SQL migrations (postgres only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			cfg, log, err := load()
			if err != nil {
				return err
			}
			return app.Rollback(cmd.Context(), cfg, log, steps)
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to revert")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(app.Version)
		},
	}
}

func load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(config.ServiceName, cfg.LogLevel), nil
}
