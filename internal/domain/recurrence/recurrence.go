package recurrence

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/domain"
)

var defaultParams = NewDefaultParams()

// NextDueDate returns the due date of the occurrence after task using the
// default offsets. ok is false when the task does not repeat or has no due date.
func NextDueDate(task *domain.Task) (time.Time, bool) {
	return defaultParams.NextDueDate(task)
}

// NextDueDate returns the due date of the occurrence after task.
func (p *Params) NextDueDate(task *domain.Task) (time.Time, bool) {
	if task == nil || task.DueDate == nil || !task.IsRecurring() {
		return time.Time{}, false
	}

	offset, ok := p.Offset(task.RepeatType)
	if !ok {
		return time.Time{}, false
	}

	return domain.NormalizeTime(task.DueDate.Add(offset)), true
}

// RootID returns the template a successor of task should point at.
// Instances forward their own parent so chains never form.
func RootID(task *domain.Task) uuid.UUID {
	if task.ParentTaskID != nil {
		return *task.ParentTaskID
	}
	return task.ID
}

// Successor builds the pending instance that follows task, or returns nil
// when task does not recur. The result is not persisted.
func Successor(task *domain.Task, now time.Time) (*domain.Task, error) {
	return defaultParams.Successor(task, now)
}

// Successor builds the pending instance that follows task using p's offsets.
func (p *Params) Successor(task *domain.Task, now time.Time) (*domain.Task, error) {
	due, ok := p.NextDueDate(task)
	if !ok {
		return nil, nil
	}

	parentID := RootID(task)

	return domain.NewTask(domain.TaskParams{
		Title:        task.Title,
		Description:  task.Description,
		DueDate:      &due,
		Priority:     task.Priority,
		Status:       domain.TaskStatusPending,
		Category:     task.Category,
		Location:     task.Location,
		RepeatType:   task.RepeatType,
		ParentTaskID: &parentID,
	}, now)
}
