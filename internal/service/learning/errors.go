package learning

import (
	"errors"
	"fmt"
)

var (
	// ErrConcurrencyConflict indicates a submission kept colliding with a
	// concurrent one and was abandoned. Nothing was written; the caller may
	// resubmit.
	ErrConcurrencyConflict = errors.New("submission conflicted with a concurrent update")

	// ErrLearnerRequired indicates an operation that needs an identified
	// learner was called anonymously.
	ErrLearnerRequired = errors.New("operation requires an identified learner")
)

// ServiceError wraps unexpected failures of the learning service with the
// operation that failed.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_quiz", "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
