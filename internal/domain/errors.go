// Package domain defines core types, interfaces, and errors for the BI workspace.
package domain

import "fmt"

// NotFoundError indicates an asset or share target was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a concurrent-write conflict. The failed unit of
// work was rolled back in full; callers may retry the whole batch.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// CycleError indicates a folder move that would make a folder its own ancestor.
type CycleError struct {
	Message string
}

func (e *CycleError) Error() string { return e.Message }

// ConfigError indicates a malformed RLS rule: an unknown operator or a
// condition missing its required value. Evaluation aborts rather than
// silently passing.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrCycle creates a CycleError with a formatted message.
func ErrCycle(format string, args ...interface{}) *CycleError {
	return &CycleError{Message: fmt.Sprintf(format, args...)}
}

// ErrConfig creates a ConfigError with a formatted message.
func ErrConfig(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}
