package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/platform/postgres"
	"github.com/phrazzld/task-tracker/internal/platform/sqlite"
)

// handleMigrations executes a goose migration command and exits.
// SQLite databases migrate themselves on open, so only "up" is accepted for them.
func handleMigrations(ctx context.Context, cfg *config.Config, migrateCmd string, logger *slog.Logger) error {
	logger.Info("Executing migrations", "command", migrateCmd)

	if sqlite.IsSQLiteURL(cfg.Database.URL) {
		if migrateCmd != postgres.MigrateUp {
			return fmt.Errorf("migration command %q is not supported for sqlite databases", migrateCmd)
		}
		db, err := openSQLite(cfg.Database.URL, logger)
		if err != nil {
			return err
		}
		db.Close(logger)
		logger.Info("migration completed", "backend", backendSQLite)
		return nil
	}

	db, err := openPostgres(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return postgres.Migrate(ctx, db, migrateCmd, logger)
}
