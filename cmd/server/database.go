package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/platform/postgres"
	"github.com/phrazzld/task-tracker/internal/platform/sqlite"
	"github.com/phrazzld/task-tracker/internal/redact"
	"github.com/phrazzld/task-tracker/internal/store"
)

// Database backends
const (
	backendSQLite   = "sqlite"
	backendPostgres = "postgres"
)

// appDatabase bundles the task store with the connection it runs on.
type appDatabase struct {
	backend   string
	sqlDB     *sql.DB
	taskStore store.TaskStore
}

// PingContext reports whether the underlying connection is alive.
func (d *appDatabase) PingContext(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

// Close closes the connection, logging any error.
func (d *appDatabase) Close(logger *slog.Logger) {
	if d == nil || d.sqlDB == nil {
		return
	}
	if err := d.sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection", "error", redact.Error(err))
	}
}

// setupAppDatabase opens the database selected by the URL scheme.
// sqlite:// URLs use the embedded SQLite store, which migrates its schema on
// open. Anything else is handed to the pgx driver and migrated with goose
// when auto-migration is enabled.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*appDatabase, error) {
	if sqlite.IsSQLiteURL(cfg.Database.URL) {
		return openSQLite(cfg.Database.URL, logger)
	}

	db, err := openPostgres(ctx, cfg.Database.URL, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, postgres.MigrateUp, logger); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	return &appDatabase{
		backend:   backendPostgres,
		sqlDB:     db,
		taskStore: postgres.NewPostgresTaskStore(db, logger),
	}, nil
}

func openSQLite(databaseURL string, logger *slog.Logger) (*appDatabase, error) {
	dsn, err := sqlite.DSNFromURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid sqlite database url: %w", err)
	}

	gormDB, err := sqlite.NewDB(dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite connection: %w", err)
	}

	logger.Info("Database connection established", "backend", backendSQLite)
	return &appDatabase{
		backend:   backendSQLite,
		sqlDB:     sqlDB,
		taskStore: sqlite.NewTaskStore(gormDB, logger),
	}, nil
}

// openPostgres establishes a connection to the database and configures connection pools.
func openPostgres(ctx context.Context, databaseURL string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool with reasonable defaults
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established", "backend", backendPostgres)
	return db, nil
}
