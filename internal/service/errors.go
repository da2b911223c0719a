package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrWeatherUnavailable indicates that no weather API key is configured.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrWeatherUnavailable = errors.New("weather service is not configured")
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// RecurrenceServiceError is a custom error type for recurrence service errors.
type RecurrenceServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for RecurrenceServiceError.
func (e *RecurrenceServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recurrence service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("recurrence service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *RecurrenceServiceError) Unwrap() error {
	return e.Err
}

// NewRecurrenceServiceError creates a new RecurrenceServiceError.
func NewRecurrenceServiceError(operation, message string, err error) *RecurrenceServiceError {
	return &RecurrenceServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// passThrough reports whether err is an expected condition that is returned
// to the caller unwrapped.
func passThrough(err error) bool {
	return store.IsNotFoundError(err) || errors.Is(err, domain.ErrValidation)
}
