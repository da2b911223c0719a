package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/platform/sqlite"
)

// loadAppConfig loads the application configuration from environment variables or config file.
// Returns the loaded config and any loading error.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Log basic configuration details after successful loading
	slog.Info("Server configuration loaded",
		"env", cfg.App.Env,
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	slog.Debug("Database configuration", "sqlite", sqlite.IsSQLiteURL(cfg.Database.URL))
	slog.Debug("Weather configuration", "api_key_present", cfg.Weather.APIKey != "")
	slog.Debug("Auth configuration", "enabled", cfg.Auth.Enabled)

	return cfg, nil
}
