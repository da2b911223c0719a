package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/events"
	"github.com/phrazzld/task-tracker/internal/platform/openweather"
	"github.com/phrazzld/task-tracker/internal/scheduler"
	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/phrazzld/task-tracker/internal/service/auth"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *appDatabase

	// jwtService is nil when API authentication is disabled
	jwtService auth.JWTService

	weatherClient     *openweather.Client
	eventEmitter      *events.InMemoryEventEmitter
	recurrenceService service.RecurrenceService
	taskService       service.TaskService

	// scheduler is nil when no recurrence schedule is configured
	scheduler *scheduler.Scheduler
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(cfg *config.Config, logger *slog.Logger, db *appDatabase) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	if cfg.Auth.Enabled {
		app.jwtService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		logger.Info("JWT authentication enabled",
			"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)
	}

	// One pooled HTTP client is shared by every weather lookup.
	app.weatherClient = openweather.NewClient(cfg.Weather, openweather.NewHTTPClient(), logger)
	if !app.weatherClient.Enabled() {
		logger.Warn("weather API key is not configured, weather enrichment disabled")
	}

	app.recurrenceService, err = service.NewRecurrenceService(db.taskStore, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create recurrence service: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	if handler, ok := app.recurrenceService.(events.EventHandler); ok {
		app.eventEmitter.RegisterHandler(handler)
	} else {
		return nil, fmt.Errorf("unexpected recurrence service type, cannot register event handler")
	}

	app.taskService, err = service.NewTaskService(
		db.taskStore,
		app.recurrenceService,
		app.weatherClient,
		app.eventEmitter,
		service.TaskServiceConfig{
			DeletePolicy:   cfg.Recurrence.DeletePolicy,
			GenerateOnList: cfg.Recurrence.GenerateOnList,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	if cfg.Recurrence.Schedule != "" {
		app.scheduler = scheduler.New(app.taskService, time.UTC, logger)
		if _, err := app.scheduler.ScheduleRecurrence(cfg.Recurrence.Schedule); err != nil {
			return nil, fmt.Errorf("invalid recurrence schedule %q: %w", cfg.Recurrence.Schedule, err)
		}
	}

	logger.Info("Application initialized successfully", "database", db.backend)
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if app.scheduler != nil {
		app.scheduler.Start()
	}

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// generateOnce runs batch recurrence generation a single time.
func (app *application) generateOnce(ctx context.Context) error {
	report, err := app.taskService.GenerateRecurring(ctx)
	if err != nil {
		return fmt.Errorf("recurring generation failed: %w", err)
	}

	app.logger.Info("Recurring generation completed",
		"examined", report.Examined,
		"generated", len(report.Generated),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed))
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	app.db.Close(app.logger)

	app.logger.Info("Application shutdown completed")
}
