package engine

import (
	"fmt"
	"strings"
)

// Signal names used in SignalUnavailableError.
const (
	SignalRisk    = "risk"
	SignalContent = "content"
)

// InvalidApplicationError indicates a malformed application that was
// rejected before evaluation. It never reaches arbitration.
type InvalidApplicationError struct {
	ApplicationID string
	Fields        []string
}

// Error implements the error interface.
func (e *InvalidApplicationError) Error() string {
	if e.ApplicationID != "" {
		return fmt.Sprintf("invalid application %s: bad or missing fields: %s",
			e.ApplicationID, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("invalid application: bad or missing fields: %s", strings.Join(e.Fields, ", "))
}

// SignalUnavailableError indicates that the risk estimator or content
// analyzer failed or timed out. The evaluation aborts for that application
// rather than proceeding with partial signals; callers should retry with
// backoff instead of fabricating a result.
type SignalUnavailableError struct {
	Signal        string // "risk" or "content"
	ApplicationID string
	Cause         error
}

// Error implements the error interface.
func (e *SignalUnavailableError) Error() string {
	return fmt.Sprintf("signal %q unavailable for application %s: %v", e.Signal, e.ApplicationID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SignalUnavailableError) Unwrap() error {
	return e.Cause
}

// NewSignalUnavailableError creates a new SignalUnavailableError.
func NewSignalUnavailableError(signal, applicationID string, cause error) *SignalUnavailableError {
	return &SignalUnavailableError{
		Signal:        signal,
		ApplicationID: applicationID,
		Cause:         cause,
	}
}
