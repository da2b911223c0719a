package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/task-tracker/internal/platform/postgres"
	"github.com/phrazzld/task-tracker/internal/store"
	"github.com/stretchr/testify/assert"
)

// newPgError creates a PgError with the given code and constraint name.
func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "tasks",
		ColumnName:     "title",
		ConstraintName: constraint,
	}
}

// MockResult implements sql.Result for testing
type MockResult struct {
	rowsAffected int64
	err          error
}

func (m MockResult) LastInsertId() (int64, error) {
	return 0, m.err
}

func (m MockResult) RowsAffected() (int64, error) {
	return m.rowsAffected, m.err
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "no rows", err: sql.ErrNoRows, expected: store.ErrNotFound},
		{
			name:     "pending instance unique violation",
			err:      newPgError("23505", "uq_tasks_pending_instance"),
			expected: store.ErrDuplicateInstance,
		},
		{name: "other unique violation", err: newPgError("23505", "tasks_pkey"), expected: store.ErrDuplicate},
		{name: "foreign key violation", err: newPgError("23503", "tasks_parent_task_id_fkey"), expected: store.ErrInvalidEntity},
		{name: "check violation", err: newPgError("23514", "tasks_priority_check"), expected: store.ErrInvalidEntity},
		{name: "not null violation", err: newPgError("23502", ""), expected: store.ErrInvalidEntity},
		{
			name:     "wrapped unique violation",
			err:      fmt.Errorf("exec: %w", newPgError("23505", "uq_tasks_pending_instance")),
			expected: store.ErrDuplicateInstance,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mapped := postgres.MapError(tt.err)
			assert.ErrorIs(t, mapped, tt.expected)
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, postgres.MapError(nil))
	})

	t.Run("unmapped errors pass through", func(t *testing.T) {
		original := errors.New("connection reset")
		assert.Equal(t, original, postgres.MapError(original))
	})

	t.Run("other unique violations are not instance duplicates", func(t *testing.T) {
		mapped := postgres.MapError(newPgError("23505", "tasks_pkey"))
		assert.False(t, errors.Is(mapped, store.ErrDuplicateInstance))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505", "")))
	assert.True(t, postgres.IsUniqueViolation(fmt.Errorf("wrapped: %w", newPgError("23505", ""))))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503", "")))
	assert.False(t, postgres.IsUniqueViolation(errors.New("plain")))
	assert.False(t, postgres.IsUniqueViolation(nil))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 1}, store.ErrTaskNotFound))
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{}, store.ErrTaskNotFound), store.ErrTaskNotFound)
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{}, nil), store.ErrNotFound)

	resultErr := errors.New("driver does not support RowsAffected")
	err := postgres.CheckRowsAffected(MockResult{err: resultErr}, store.ErrTaskNotFound)
	assert.ErrorIs(t, err, resultErr)

	assert.Error(t, postgres.CheckRowsAffected(nil, store.ErrTaskNotFound))
}
