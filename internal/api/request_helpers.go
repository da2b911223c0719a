package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/store"
)

// getPathUUID extracts a UUID from the URL path parameters.
// It returns a validation error if the parameter is missing or malformed.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "Task ID is required", domain.ErrInvalidID)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "Invalid task ID format", domain.ErrInvalidID)
	}

	return id, nil
}

// parseTaskFilter reads the listing query parameters. Unknown status values
// list every task and unknown sort values fall back to newest first.
func parseTaskFilter(r *http.Request) store.TaskFilter {
	query := r.URL.Query()

	filter := store.TaskFilter{
		Category: strings.TrimSpace(query.Get("category")),
		Query:    strings.TrimSpace(query.Get("q")),
		Sort:     store.ParseTaskSort(query.Get("sort")),
	}

	switch status := domain.TaskStatus(query.Get("status")); status {
	case domain.TaskStatusPending, domain.TaskStatusCompleted:
		filter.Status = status
	}

	return filter
}
