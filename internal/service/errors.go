package service

import "fmt"

// AdminServiceError wraps errors from the admin service with context.
type AdminServiceError struct {
	// Operation is the operation that failed (e.g., "clear_context_batch")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for AdminServiceError.
func (e *AdminServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("admin service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("admin service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *AdminServiceError) Unwrap() error {
	return e.Err
}
