package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalUnmarshalJSON(t *testing.T) {
	t.Parallel()

	var payload struct {
		Title    Optional[string] `json:"title"`
		Category Optional[string] `json:"category"`
		Location Optional[string] `json:"location"`
	}

	err := json.Unmarshal([]byte(`{"title":"New","category":null}`), &payload)

	require.NoError(t, err)
	assert.True(t, payload.Title.Set)
	require.NotNil(t, payload.Title.Value)
	assert.Equal(t, "New", *payload.Title.Value)
	assert.True(t, payload.Category.Set, "null marks the field present")
	assert.Nil(t, payload.Category.Value)
	assert.False(t, payload.Location.Set, "absent fields stay unset")
}

func TestOptionalUnmarshalTypeMismatch(t *testing.T) {
	t.Parallel()

	var payload struct {
		Title Optional[string] `json:"title"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"title":42}`), &payload))
}

func TestTaskPatchValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		patch   TaskPatch
		field   string
		message string
	}{
		{name: "empty patch", patch: TaskPatch{}, field: "", message: "No data provided"},
		{name: "blank title", patch: TaskPatch{Title: Some("  ")}, field: "title", message: "Title cannot be empty"},
		{name: "null title", patch: TaskPatch{Title: Null[string]()}, field: "title", message: "Title cannot be empty"},
		{name: "long title", patch: TaskPatch{Title: Some(strings.Repeat("t", 201))}, field: "title"},
		{name: "bad priority", patch: TaskPatch{Priority: Some(Priority("urgent"))}, field: "priority"},
		{name: "null priority", patch: TaskPatch{Priority: Null[Priority]()}, field: "priority"},
		{name: "bad status", patch: TaskPatch{Status: Some(TaskStatus("archived"))}, field: "status"},
		{name: "bad repeat", patch: TaskPatch{RepeatType: Some(RepeatType("hourly"))}, field: "repeat_type"},
		{name: "long category", patch: TaskPatch{Category: Some(strings.Repeat("c", 51))}, field: "category"},
		{name: "long location", patch: TaskPatch{Location: Some(strings.Repeat("l", 101))}, field: "location"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.patch.Validate()

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.field, validationErr.Field)
			if tc.message != "" {
				assert.Equal(t, tc.message, validationErr.Message)
			}
		})
	}
}

func TestTaskPatchApply(t *testing.T) {
	t.Parallel()

	due := testNow.Add(48 * time.Hour)
	task, err := NewTask(TaskParams{
		Title:    "Original",
		Category: strPtr("work"),
		Location: strPtr("Osaka"),
		DueDate:  &due,
	}, testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	patch := TaskPatch{
		Title:    Some(" Renamed "),
		Status:   Some(TaskStatusCompleted),
		Priority: Some(PriorityLow),
		Category: Null[string](),
		DueDate:  Null[time.Time](),
	}

	require.NoError(t, patch.Apply(task, later))

	assert.Equal(t, "Renamed", task.Title)
	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Nil(t, task.Category)
	assert.Nil(t, task.DueDate)
	require.NotNil(t, task.Location, "absent fields are untouched")
	assert.Equal(t, "Osaka", *task.Location)
	assert.Equal(t, later, task.UpdatedAt)
	assert.Equal(t, testNow, task.CreatedAt)
}

func TestTaskPatchApplyLeavesTaskOnError(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskParams{Title: "Keep"}, testNow)
	require.NoError(t, err)

	err = TaskPatch{Title: Some("Changed"), Status: Some(TaskStatus("bogus"))}.Apply(task, testNow.Add(time.Hour))

	require.Error(t, err)
	assert.Equal(t, "Keep", task.Title)
	assert.Equal(t, testNow, task.UpdatedAt)
}
