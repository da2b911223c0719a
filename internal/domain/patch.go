package domain

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

// Optional is a field of a partial update. Set records that the field was
// present in the request; a nil Value with Set true means "set to null".
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present Optional with no value.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON marks the field present. JSON null leaves Value nil.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// TaskPatch is a field-level partial update of a Task.
// Only fields with Set true are applied.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[string]
	DueDate     Optional[time.Time]
	Priority    Optional[Priority]
	Status      Optional[TaskStatus]
	Category    Optional[string]
	Location    Optional[string]
	RepeatType  Optional[RepeatType]
}

// IsEmpty reports whether the patch carries no fields.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.DueDate.Set && !p.Priority.Set &&
		!p.Status.Set && !p.Category.Set && !p.Location.Set && !p.RepeatType.Set
}

// Validate applies the per-field rules without touching any task.
func (p TaskPatch) Validate() error {
	if p.IsEmpty() {
		return NewValidationError("", "No data provided", nil)
	}

	if p.Title.Set {
		if p.Title.Value == nil || strings.TrimSpace(*p.Title.Value) == "" {
			return NewValidationError("title", "Title cannot be empty", nil)
		}
		if utf8.RuneCountInString(strings.TrimSpace(*p.Title.Value)) > MaxTitleLength {
			return NewValidationError("title", "Title must be at most 200 characters", nil)
		}
	}

	if p.Priority.Set && (p.Priority.Value == nil || !p.Priority.Value.Valid()) {
		return NewValidationError("priority", "Invalid priority. Must be high, medium, or low", nil)
	}
	if p.Status.Set && (p.Status.Value == nil || !p.Status.Value.Valid()) {
		return NewValidationError("status", "Invalid status. Must be pending or completed", nil)
	}
	if p.RepeatType.Set && (p.RepeatType.Value == nil || !p.RepeatType.Value.Valid()) {
		return NewValidationError("repeat_type", "Invalid repeat type. Must be none, daily, weekly, or monthly", nil)
	}

	if p.Category.Set && p.Category.Value != nil &&
		utf8.RuneCountInString(strings.TrimSpace(*p.Category.Value)) > MaxCategoryLength {
		return NewValidationError("category", "Category must be at most 50 characters", nil)
	}
	if p.Location.Set && p.Location.Value != nil &&
		utf8.RuneCountInString(strings.TrimSpace(*p.Location.Value)) > MaxLocationLength {
		return NewValidationError("location", "Location must be at most 100 characters", nil)
	}

	return nil
}

// Apply validates the patch, copies the present fields onto t and refreshes
// UpdatedAt. On error t is left unchanged.
func (p TaskPatch) Apply(t *Task, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.Title.Set {
		t.Title = strings.TrimSpace(*p.Title.Value)
	}
	if p.Description.Set {
		t.Description = normalizeText(p.Description.Value)
	}
	if p.DueDate.Set {
		t.DueDate = normalizeTimePtr(p.DueDate.Value)
	}
	if p.Priority.Set {
		t.Priority = *p.Priority.Value
	}
	if p.Status.Set {
		t.Status = *p.Status.Value
	}
	if p.Category.Set {
		t.Category = normalizeText(p.Category.Value)
	}
	if p.Location.Set {
		t.Location = normalizeText(p.Location.Value)
	}
	if p.RepeatType.Set {
		t.RepeatType = *p.RepeatType.Value
	}

	t.Touch(now)
	return nil
}
