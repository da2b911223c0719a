package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/task-tracker/internal/api/shared"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/openweather"
	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/phrazzld/task-tracker/internal/service/auth"
	"github.com/phrazzld/task-tracker/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	// Weather errors are classified by kind first: a weather validation
	// error also matches domain.ErrValidation.
	switch openweather.KindOf(err) {
	case openweather.KindValidation:
		return http.StatusBadRequest
	case openweather.KindNotFound:
		return http.StatusNotFound
	case openweather.KindRateLimited:
		return http.StatusTooManyRequests
	case openweather.KindTimeout:
		return http.StatusGatewayTimeout
	case openweather.KindAuth, openweather.KindServer, openweather.KindAPI,
		openweather.KindParse, openweather.KindConnection:
		return http.StatusBadGateway
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, service.ErrWeatherUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch openweather.KindOf(err) {
	case openweather.KindValidation:
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return validationErr.Message
		}
		return "Invalid location"
	case openweather.KindNotFound:
		return "Location not found"
	case openweather.KindAuth:
		return "Weather service authentication failed"
	case openweather.KindRateLimited:
		return "Weather service rate limit exceeded"
	case openweather.KindTimeout:
		return "Weather service timed out"
	case openweather.KindServer, openweather.KindAPI, openweather.KindParse, openweather.KindConnection:
		return "Weather service unavailable"
	}

	var validationErr *domain.ValidationError
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	// Validation errors carry a client-facing message
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, shared.ErrEmptyBody):
		return "No data provided"
	case errors.Is(err, domain.ErrInvalidDate):
		return "Invalid date format. Use ISO format."
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Not found errors
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrDuplicateInstance):
		return "Recurring instance already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, service.ErrWeatherUnavailable):
		return "Weather service is not configured"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. fallbackMessage, when not
// empty, replaces the generic message of unclassified server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	statusCode := MapErrorToStatusCode(err)
	safeMessage := GetSafeErrorMessage(err)
	if statusCode == http.StatusInternalServerError && fallbackMessage != "" {
		safeMessage = fallbackMessage
	}

	var opts []shared.ResponseOption
	if statusCode == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err, opts...)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			return fmt.Sprintf("Query parameter %q is required", field)
		}
		return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fe.Tag()))
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
