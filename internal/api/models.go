package api

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/phrazzld/task-tracker/internal/store"
)

// CreateTaskRequest defines the payload for creating a task.
// Omitted enumerations take their defaults.
type CreateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
	RepeatType  *string `json:"repeat_type"`
}

// Validate checks the fields that must be present before conversion.
func (req CreateTaskRequest) Validate() error {
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return domain.NewValidationError("title", "Title is required", nil)
	}
	return nil
}

// ToInput converts the request to service input, parsing the due date.
func (req CreateTaskRequest) ToInput() (service.CreateTaskInput, error) {
	input := service.CreateTaskInput{
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
	}
	if req.Title != nil {
		input.Title = *req.Title
	}
	if req.Priority != nil {
		input.Priority = domain.Priority(*req.Priority)
	}
	if req.Status != nil {
		input.Status = domain.TaskStatus(*req.Status)
	}
	if req.RepeatType != nil {
		input.RepeatType = domain.RepeatType(*req.RepeatType)
	}
	if req.DueDate != nil {
		due, err := domain.ParseDueDate(*req.DueDate)
		if err != nil {
			return service.CreateTaskInput{}, err
		}
		input.DueDate = due
	}
	return input, nil
}

// UpdateTaskRequest defines the payload for a partial update.
// Only the fields present in the JSON body are changed; null clears a field.
type UpdateTaskRequest struct {
	Title       domain.Optional[string]            `json:"title"`
	Description domain.Optional[string]            `json:"description"`
	DueDate     domain.Optional[string]            `json:"due_date"`
	Priority    domain.Optional[domain.Priority]   `json:"priority"`
	Status      domain.Optional[domain.TaskStatus] `json:"status"`
	Category    domain.Optional[string]            `json:"category"`
	Location    domain.Optional[string]            `json:"location"`
	RepeatType  domain.Optional[domain.RepeatType] `json:"repeat_type"`
}

// ToPatch converts the request to a domain patch. A blank or null due date
// clears it.
func (req UpdateTaskRequest) ToPatch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Category:    req.Category,
		Location:    req.Location,
		RepeatType:  req.RepeatType,
	}

	if req.DueDate.Set {
		if req.DueDate.Value == nil {
			patch.DueDate = domain.Null[time.Time]()
		} else {
			due, err := domain.ParseDueDate(*req.DueDate.Value)
			if err != nil {
				return domain.TaskPatch{}, err
			}
			patch.DueDate = domain.Optional[time.Time]{Set: true, Value: due}
		}
	}

	return patch, nil
}

// SearchParams are the query parameters of the search endpoint.
type SearchParams struct {
	Q        string `validate:"required"`
	Category string
}

// WeatherParams are the query parameters of the weather endpoint.
type WeatherParams struct {
	Location string `validate:"required"`
}

// CreateTaskResponse is returned when a task is created.
type CreateTaskResponse struct {
	ID      uuid.UUID    `json:"id"`
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

// TaskMutationResponse is returned by update and toggle.
type TaskMutationResponse struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

// TaskListResponse is the body of a task listing.
type TaskListResponse struct {
	Tasks []*service.TaskWithWeather `json:"tasks"`
}

// SearchResponse is the body of a search.
type SearchResponse struct {
	Results []*service.TaskWithWeather `json:"results"`
}

// StatsResponse is the body of the statistics endpoint.
type StatsResponse = store.TaskStats

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
