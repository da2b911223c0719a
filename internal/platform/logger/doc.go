// Package logger builds the JSON slog logger used across the task tracker
// and carries request-scoped loggers, tagged with the request ID, through
// context.Context.
package logger
