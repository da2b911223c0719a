package service_test

import (
	"errors"
	"testing"

	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/phrazzld/task-tracker/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestServiceErrors(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "task error with cause",
			err:      service.NewTaskServiceError("delete_task", "failed to delete task", cause),
			expected: "task service delete_task failed: failed to delete task: connection reset",
		},
		{
			name:     "task error without cause",
			err:      service.NewTaskServiceError("stats", "no data", nil),
			expected: "task service stats failed: no data",
		},
		{
			name:     "recurrence error with cause",
			err:      service.NewRecurrenceServiceError("generate_due", "failed to list due templates", cause),
			expected: "recurrence service generate_due failed: failed to list due templates: connection reset",
		},
		{
			name:     "recurrence error without cause",
			err:      service.NewRecurrenceServiceError("handle_event", "bad payload", nil),
			expected: "recurrence service handle_event failed: bad payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestServiceErrorsUnwrap(t *testing.T) {
	taskErr := service.NewTaskServiceError("get_task", "failed", store.ErrTaskNotFound)
	assert.ErrorIs(t, taskErr, store.ErrTaskNotFound)
	assert.ErrorIs(t, taskErr, store.ErrNotFound)

	recurrenceErr := service.NewRecurrenceServiceError("create_next", "failed", store.ErrDuplicateInstance)
	assert.True(t, store.IsDuplicateError(recurrenceErr))
}
