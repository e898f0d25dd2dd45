package audit

import "fmt"

// StorageError represents a failure of the audit storage backend.
type StorageError struct {
	Backend   string // "sqlite", "memory"
	Operation string // "append", "query", "count", "close"
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
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

// WriteFailureError describes a failed append attempt for a record. A
// disposition without an audit record is compliance-unsafe, so the recorder
// holds and retries the record rather than dropping it; this error carries
// the attempt count and cause for each retried write.
type WriteFailureError struct {
	RecordID      string
	ApplicationID string
	Attempts      int
	Cause         error
}

// Error implements the error interface.
func (e *WriteFailureError) Error() string {
	return fmt.Sprintf("audit write failure [record_id=%s, application_id=%s, attempts=%d]: %v",
		e.RecordID, e.ApplicationID, e.Attempts, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *WriteFailureError) Unwrap() error {
	return e.Cause
}
