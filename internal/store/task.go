package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/domain"
)

// TaskSort selects the ordering of a task listing.
type TaskSort string

// Supported orderings
const (
	// SortCreatedAt orders newest first. It is the default.
	SortCreatedAt TaskSort = "created_at"
	// SortPriority orders high, medium, low, then newest first within a rank.
	SortPriority TaskSort = "priority"
	// SortDueDate orders earliest due first with undated tasks last.
	SortDueDate TaskSort = "due_date"
)

// ParseTaskSort maps a query value to a TaskSort, defaulting to SortCreatedAt.
func ParseTaskSort(value string) TaskSort {
	switch TaskSort(value) {
	case SortPriority, SortDueDate:
		return TaskSort(value)
	default:
		return SortCreatedAt
	}
}

// TaskFilter narrows a task listing. Zero values match everything.
type TaskFilter struct {
	Status   domain.TaskStatus
	Category string
	ParentID *uuid.UUID
	Query    string
	Sort     TaskSort
}

// SearchQuery is a substring search over title and description.
type SearchQuery struct {
	Query    string
	Category string
}

// TaskStats aggregates the dashboard counters.
type TaskStats struct {
	Total              int                     `json:"total"`
	Pending            int                     `json:"pending"`
	Completed          int                     `json:"completed"`
	Overdue            int                     `json:"overdue"`
	DueToday           int                     `json:"due_today"`
	CompletionRate     float64                 `json:"completion_rate"`
	PendingByPriority  map[domain.Priority]int `json:"pending_by_priority"`
	ByCategory         map[string]int          `json:"by_category"`
	RecurringTemplates int                     `json:"recurring_templates"`
}

// UncategorizedLabel is the ByCategory key for tasks without a category.
const UncategorizedLabel = "uncategorized"

// NewTaskStats returns stats with initialized maps.
func NewTaskStats() *TaskStats {
	return &TaskStats{
		PendingByPriority: map[domain.Priority]int{
			domain.PriorityHigh:   0,
			domain.PriorityMedium: 0,
			domain.PriorityLow:    0,
		},
		ByCategory: map[string]int{},
	}
}

// Finalize derives the completion rate from the counters.
func (s *TaskStats) Finalize() {
	if s.Total == 0 {
		s.CompletionRate = 0
		return
	}
	s.CompletionRate = float64(s.Completed) / float64(s.Total)
}

// DayBounds returns the start and end of the UTC day containing now.
func DayBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

// TaskStore defines the interface for task data persistence.
// Version: 1.0
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrDuplicate if a pending instance with the same parent and due date exists.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update writes every field of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns the tasks matching filter in the requested order.
	// Returns an empty slice if nothing matches.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Search returns tasks whose title or description contains the query,
	// case-insensitively, newest first.
	Search(ctx context.Context, query SearchQuery) ([]*domain.Task, error)

	// ExistsPendingInstance reports whether a pending task generated from
	// parentID with the given due date already exists.
	ExistsPendingInstance(ctx context.Context, parentID uuid.UUID, dueDate time.Time) (bool, error)

	// ListDueTemplates returns pending, repeating, non-instance tasks whose
	// due date lies before now, earliest first.
	ListDueTemplates(ctx context.Context, now time.Time) ([]*domain.Task, error)

	// ListChildren returns the tasks generated from parentID, earliest due first.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error)

	// DeleteChildren removes every task generated from parentID and returns the count.
	DeleteChildren(ctx context.Context, parentID uuid.UUID) (int64, error)

	// Reparent points every task generated from oldParentID at newParentID,
	// stamping updated_at with now, and returns the count.
	Reparent(ctx context.Context, oldParentID, newParentID uuid.UUID, now time.Time) (int64, error)

	// Stats computes the dashboard counters relative to now.
	Stats(ctx context.Context, now time.Time) (*TaskStats, error)

	// WithinTx runs fn against a TaskStore bound to a single transaction.
	// The transaction commits if fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, txStore TaskStore) error) error
}
