package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrNotConnected = errors.New("database connection not established")
	ErrUnsupported  = errors.New("operation not supported")
	ErrValidation   = errors.New("validation failed")
)

// ConnectionError is returned when a dialect connect fails.
type ConnectionError struct {
	Dialect string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Dialect, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UnsupportedError is returned before any statement runs when an operation
// is invalid for the active dialect.
type UnsupportedError struct {
	Operation string
	Dialect   string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported for %s", e.Operation, e.Dialect)
}

// Is matches ErrUnsupported.
func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// ExecutionError carries the engine's rejection of a statement.
// Error returns the engine message unmodified.
type ExecutionError struct {
	Statement string
	Code      int // engine error number when the driver exposes one
	Err       error
}

func (e *ExecutionError) Error() string { return e.Err.Error() }

func (e *ExecutionError) Unwrap() error { return e.Err }

// ValidationError is returned when an intent or request is missing required fields.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
