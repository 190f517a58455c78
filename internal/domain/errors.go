// Package domain defines core types, interfaces, and errors for the Athena pipeline.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input or configuration.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// QueryFailedError reports a query that reached a terminal state other than SUCCEEDED.
type QueryFailedError struct {
	ExecutionID string
	State       QueryState
	Reason      string
}

func (e *QueryFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("query %s finished in state %s", e.ExecutionID, e.State)
	}
	return fmt.Sprintf("query %s finished in state %s: %s", e.ExecutionID, e.State, e.Reason)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrQueryFailed creates a QueryFailedError from a terminal status.
func ErrQueryFailed(status *QueryStatus) *QueryFailedError {
	return &QueryFailedError{
		ExecutionID: status.ID,
		State:       status.State,
		Reason:      status.Reason,
	}
}
