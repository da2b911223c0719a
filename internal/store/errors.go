package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every TaskStore implementation. Callers match
// them with errors.Is; implementations wrap them with driver details.
var (
	// ErrNotFound is the root of every "does not exist" error.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is the root of every uniqueness violation.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity reports a row rejected by a database constraint or by
	// validation before the write.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed reports a transaction that could not be started,
	// committed or rolled back.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrTaskNotFound is returned when no task has the requested ID.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrDuplicateInstance is returned when a pending recurring instance with
	// the same parent and due date already exists.
	ErrDuplicateInstance = fmt.Errorf("%w: recurring instance", ErrDuplicate)
)

// IsNotFoundError reports whether err is, or wraps, ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is, or wraps, ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError adds the entity and operation to a failed store call.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	prefix := fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
	if e.Err == nil {
		return prefix
	}
	return prefix + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the entity and operation that failed.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
