package review

import "fmt"

// DuplicateEnqueueError indicates an enqueue for an application id that is
// already pending. This is an integration error surfaced immediately, not
// a condition to retry.
type DuplicateEnqueueError struct {
	ApplicationID string
}

// Error implements the error interface.
func (e *DuplicateEnqueueError) Error() string {
	return fmt.Sprintf("application %s is already pending review", e.ApplicationID)
}

// NotFoundError indicates a resolve for an application id with no pending
// entry, either already resolved or never enqueued.
type NotFoundError struct {
	ApplicationID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no pending review entry for application %s", e.ApplicationID)
}

// InvalidDecisionError indicates a resolve with a decision outside
// {APPROVED, DECLINED}.
type InvalidDecisionError struct {
	Decision string
}

// Error implements the error interface.
func (e *InvalidDecisionError) Error() string {
	return fmt.Sprintf("invalid review decision %q (expected APPROVED or DECLINED)", e.Decision)
}

// StorageError represents a failure of a persistent queue backend.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("review storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
