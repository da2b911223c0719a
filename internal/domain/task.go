package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field length limits.
const (
	MaxTitleLength    = 200
	MaxCategoryLength = 50
	MaxLocationLength = 100
)

// Priority ranks how urgent a task is.
type Priority string

// Possible priority values
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank orders priorities from most to least urgent: high=1, medium=2, low=3.
// Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// TaskStatus represents the completion state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// RepeatType describes how often a task recurs.
type RepeatType string

// Possible repeat values
const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
)

// Valid reports whether r is a known repeat type.
func (r RepeatType) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	default:
		return false
	}
}

// Task is a single to-do item. A task with a repeat type other than none
// and a due date seeds recurring instances, which point back at it
// through ParentTaskID.
type Task struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	DueDate      *time.Time `json:"due_date"`
	Priority     Priority   `json:"priority"`
	Status       TaskStatus `json:"status"`
	Category     *string    `json:"category"`
	Location     *string    `json:"location"`
	RepeatType   RepeatType `json:"repeat_type"`
	ParentTaskID *uuid.UUID `json:"parent_task_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskParams holds the caller-supplied fields of a new task.
// Zero values for the enumerations select their defaults.
type TaskParams struct {
	Title        string
	Description  *string
	DueDate      *time.Time
	Priority     Priority
	Status       TaskStatus
	Category     *string
	Location     *string
	RepeatType   RepeatType
	ParentTaskID *uuid.UUID
}

// NewTask creates a validated task with a fresh ID and both timestamps set to now.
func NewTask(params TaskParams, now time.Time) (*Task, error) {
	now = NormalizeTime(now)

	task := &Task{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(params.Title),
		Description:  normalizeText(params.Description),
		DueDate:      normalizeTimePtr(params.DueDate),
		Priority:     params.Priority,
		Status:       params.Status,
		Category:     normalizeText(params.Category),
		Location:     normalizeText(params.Location),
		RepeatType:   params.RepeatType,
		ParentTaskID: params.ParentTaskID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if task.Priority == "" {
		task.Priority = PriorityMedium
	}
	if task.Status == "" {
		task.Status = TaskStatusPending
	}
	if task.RepeatType == "" {
		task.RepeatType = RepeatNone
	}

	if task.Title == "" {
		return nil, NewValidationError("title", "Title is required", nil)
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns a *ValidationError for the first field that fails.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "ID is required", ErrInvalidID)
	}

	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "Title cannot be empty", nil)
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return NewValidationError("title", "Title must be at most 200 characters", nil)
	}

	if !t.Priority.Valid() {
		return NewValidationError("priority", "Invalid priority. Must be high, medium, or low", nil)
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "Invalid status. Must be pending or completed", nil)
	}
	if !t.RepeatType.Valid() {
		return NewValidationError("repeat_type", "Invalid repeat type. Must be none, daily, weekly, or monthly", nil)
	}

	if t.Category != nil && utf8.RuneCountInString(*t.Category) > MaxCategoryLength {
		return NewValidationError("category", "Category must be at most 50 characters", nil)
	}
	if t.Location != nil && utf8.RuneCountInString(*t.Location) > MaxLocationLength {
		return NewValidationError("location", "Location must be at most 100 characters", nil)
	}

	if t.ParentTaskID != nil && *t.ParentTaskID == t.ID {
		return NewValidationError("parent_task_id", "A task cannot be its own parent", ErrInvalidID)
	}

	return nil
}

// IsRecurring reports whether the task repeats.
func (t *Task) IsRecurring() bool {
	return t.RepeatType != "" && t.RepeatType != RepeatNone
}

// IsInstance reports whether the task was generated from a template.
func (t *Task) IsInstance() bool {
	return t.ParentTaskID != nil
}

// IsTemplate reports whether the task seeds recurring instances.
func (t *Task) IsTemplate() bool {
	return t.IsRecurring() && t.DueDate != nil && !t.IsInstance()
}

// IsPending reports whether the task is still open.
func (t *Task) IsPending() bool {
	return t.Status == TaskStatusPending
}

// IsOverdue reports whether a pending task's due date lies before now.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.IsPending() && t.DueDate != nil && t.DueDate.Before(now)
}

// Toggle flips the status between pending and completed and returns the new status.
func (t *Task) Toggle(now time.Time) TaskStatus {
	if t.Status == TaskStatusCompleted {
		t.Status = TaskStatusPending
	} else {
		t.Status = TaskStatusCompleted
	}
	t.Touch(now)
	return t.Status
}

// Touch refreshes UpdatedAt.
func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = NormalizeTime(now)
}

// HasLocation reports whether the task carries a non-empty location.
func (t *Task) HasLocation() bool {
	return t.Location != nil && strings.TrimSpace(*t.Location) != ""
}

// NormalizeTime converts t to UTC at microsecond precision, the resolution
// both storage backends preserve.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func normalizeTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := NormalizeTime(*t)
	return &n
}

// normalizeText trims s and maps blank values to nil.
func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
