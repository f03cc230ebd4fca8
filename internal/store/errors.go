package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Absence is a normal outcome for point lookups; callers must
	// distinguish it from storage failures.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or when a write references a task that does not exist.
	// Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidTransition is returned when a status update would move a
	// task out of a terminal state. Terminal results and errors are
	// immutable once written.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStorageUnavailable is returned when the backing store is
	// unreachable or a transaction cannot be started or committed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrTaskNotFound indicates that the requested research task does not
	// exist in the store.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// HealthReport describes the outcome of a store health check. It is a plain
// value rather than an error because the health surface must always respond.
type HealthReport struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	PoolSize int    `json:"pool_size,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Healthy reports whether the backing store answered the probe.
func (r HealthReport) Healthy() bool {
	return r.Status == "healthy"
}
