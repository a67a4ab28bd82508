package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// RunMigrations applies every *.up.sql file at the root of migrations in
// lexical order. Each file runs in its own transaction together with its
// schema_migrations row, so a failed file leaves no partial state. Applied
// versions are skipped. Connection errors are retried; SQL errors are not.
func RunMigrations(ctx context.Context, db TxStarter, migrations fs.FS, logger *slog.Logger) error {
	var applied int
	err := withRetry(ctx, "run migrations", logger, isConnectionError, func(ctx context.Context) error {
		n, err := runMigrationsOnce(ctx, db, migrations, logger)
		applied += n
		return err
	})
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "migrations complete", slog.Int("applied", applied))
	return nil
}

// RollbackMigrations reverts the steps most recently applied versions, newest
// first, by running each one's *.down.sql file. Every down file is read before
// anything runs, so a missing file reverts nothing. Each revert shares a
// transaction with the removal of its schema_migrations row.
func RollbackMigrations(ctx context.Context, db TxStarter, migrations fs.FS, steps int, logger *slog.Logger) error {
	if steps < 1 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}
	if _, err := db.Exec(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	rows, err := db.Query(ctx, "SELECT version FROM schema_migrations ORDER BY version DESC LIMIT $1", steps)
	if err != nil {
		return fmt.Errorf("list applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scan applied migrations: %w", err)
	}

	scripts := make([][]byte, len(versions))
	for i, version := range versions {
		down := strings.TrimSuffix(version, ".up.sql") + ".down.sql"
		content, err := fs.ReadFile(migrations, down)
		if err != nil {
			return fmt.Errorf("read rollback %s: %w", down, err)
		}
		scripts[i] = content
	}

	for i, version := range versions {
		tx, err := db.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx for rollback %s: %w", version, err)
		}
		if _, err := tx.Exec(ctx, string(scripts[i])); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("execute rollback %s: %w", version, err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("unrecord migration %s: %w", version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit rollback %s: %w", version, err)
		}
		logger.InfoContext(ctx, "migration rolled back", slog.String("version", version))
	}

	logger.InfoContext(ctx, "rollback complete", slog.Int("reverted", len(versions)))
	return nil
}

// PendingMigrations lists the *.up.sql versions in migrations, sorted.
func PendingMigrations(migrations fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var versions []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			versions = append(versions, e.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}

func runMigrationsOnce(ctx context.Context, db TxStarter, migrations fs.FS, logger *slog.Logger) (int, error) {
	if _, err := db.Exec(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations table: %w", err)
	}

	versions, err := PendingMigrations(migrations)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, version := range versions {
		var exists bool
		err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
		if err != nil {
			return applied, fmt.Errorf("check migration %s: %w", version, err)
		}
		if exists {
			logger.DebugContext(ctx, "migration already applied", slog.String("version", version))
			continue
		}

		content, err := fs.ReadFile(migrations, version)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", version, err)
		}

		tx, err := db.Begin(ctx)
		if err != nil {
			return applied, fmt.Errorf("begin tx for migration %s: %w", version, err)
		}
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			_ = tx.Rollback(ctx)
			return applied, fmt.Errorf("execute migration %s: %w", version, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			_ = tx.Rollback(ctx)
			return applied, fmt.Errorf("record migration %s: %w", version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return applied, fmt.Errorf("commit migration %s: %w", version, err)
		}

		applied++
		logger.InfoContext(ctx, "migration applied", slog.String("version", version))
	}
	return applied, nil
}
