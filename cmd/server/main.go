// Package main implements the entry point for the task tracker API server,
// which stores tasks, generates instances of recurring tasks and enriches
// located tasks with current weather.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"Run a database migration command (up, down, status, version, reset) and exit")
	generateRecurring := flag.Bool("generate-recurring", false,
		"Generate due instances of recurring tasks once and exit")
	flag.Parse()

	if err := run(*migrateCmd, *generateRecurring); err != nil {
		slog.Error("task tracker exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run wires the application and executes the selected mode.
func run(migrateCmd string, generateRecurring bool) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrateCmd != "" {
		return handleMigrations(ctx, cfg, migrateCmd, logger)
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		db.Close(logger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	if generateRecurring {
		return app.generateOnce(ctx)
	}

	return app.Run(ctx)
}
