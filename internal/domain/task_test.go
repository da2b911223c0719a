package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults", func(t *testing.T) {
		task, err := NewTask(TaskParams{Title: "  Buy milk  "}, testNow)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, PriorityMedium, task.Priority)
		assert.Equal(t, TaskStatusPending, task.Status)
		assert.Equal(t, RepeatNone, task.RepeatType)
		assert.Equal(t, testNow, task.CreatedAt)
		assert.Equal(t, testNow, task.UpdatedAt)
		assert.Nil(t, task.DueDate)
	})

	t.Run("blank optional strings become nil", func(t *testing.T) {
		task, err := NewTask(TaskParams{
			Title:       "Run",
			Description: strPtr(""),
			Category:    strPtr("   "),
			Location:    strPtr(" Tokyo "),
		}, testNow)

		require.NoError(t, err)
		assert.Nil(t, task.Description)
		assert.Nil(t, task.Category)
		require.NotNil(t, task.Location)
		assert.Equal(t, "Tokyo", *task.Location)
		assert.True(t, task.HasLocation())
	})

	t.Run("due date is stored in UTC", func(t *testing.T) {
		zone := time.FixedZone("JST", 9*60*60)
		due := time.Date(2024, 3, 20, 9, 0, 0, 123456789, zone)

		task, err := NewTask(TaskParams{Title: "Call", DueDate: &due}, testNow)

		require.NoError(t, err)
		assert.Equal(t, time.UTC, task.DueDate.Location())
		assert.True(t, due.Truncate(time.Microsecond).Equal(*task.DueDate))
	})

	testCases := []struct {
		name   string
		params TaskParams
		field  string
	}{
		{name: "missing title", params: TaskParams{}, field: "title"},
		{name: "whitespace title", params: TaskParams{Title: "   "}, field: "title"},
		{name: "title too long", params: TaskParams{Title: strings.Repeat("a", 201)}, field: "title"},
		{name: "invalid priority", params: TaskParams{Title: "x", Priority: "urgent"}, field: "priority"},
		{name: "invalid status", params: TaskParams{Title: "x", Status: "done"}, field: "status"},
		{name: "invalid repeat", params: TaskParams{Title: "x", RepeatType: "yearly"}, field: "repeat_type"},
		{name: "category too long", params: TaskParams{Title: "x", Category: strPtr(strings.Repeat("c", 51))}, field: "category"},
		{name: "location too long", params: TaskParams{Title: "x", Location: strPtr(strings.Repeat("l", 101))}, field: "location"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			task, err := NewTask(tc.params, testNow)

			require.Error(t, err)
			assert.Nil(t, task)
			assert.True(t, errors.Is(err, ErrValidation))

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestTaskPredicates(t *testing.T) {
	t.Parallel()

	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)
	parent := uuid.New()

	template, err := NewTask(TaskParams{Title: "Gym", RepeatType: RepeatWeekly, DueDate: &past}, testNow)
	require.NoError(t, err)
	assert.True(t, template.IsRecurring())
	assert.True(t, template.IsTemplate())
	assert.False(t, template.IsInstance())
	assert.True(t, template.IsOverdue(testNow))

	instance, err := NewTask(TaskParams{
		Title: "Gym", RepeatType: RepeatWeekly, DueDate: &future, ParentTaskID: &parent,
	}, testNow)
	require.NoError(t, err)
	assert.True(t, instance.IsInstance())
	assert.False(t, instance.IsTemplate())
	assert.False(t, instance.IsOverdue(testNow))

	plain, err := NewTask(TaskParams{Title: "Read"}, testNow)
	require.NoError(t, err)
	assert.False(t, plain.IsRecurring())
	assert.False(t, plain.IsOverdue(testNow), "tasks without a due date are never overdue")

	template.Status = TaskStatusCompleted
	assert.False(t, template.IsOverdue(testNow), "completed tasks are never overdue")
}

func TestTaskToggle(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskParams{Title: "Toggle me"}, testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Minute)
	assert.Equal(t, TaskStatusCompleted, task.Toggle(later))
	assert.Equal(t, later, task.UpdatedAt)

	assert.Equal(t, TaskStatusPending, task.Toggle(later.Add(time.Minute)))
	assert.Equal(t, later.Add(time.Minute), task.UpdatedAt)
}

func TestTaskValidateSelfParent(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskParams{Title: "Loop"}, testNow)
	require.NoError(t, err)
	task.ParentTaskID = &task.ID

	err = task.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidID))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestPriorityRank(t *testing.T) {
	t.Parallel()

	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Less(t, PriorityLow.Rank(), Priority("unknown").Rank())
}
