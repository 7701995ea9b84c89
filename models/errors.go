package models

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or missing input. It always names the
// offending field so callers can surface it directly.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a specific field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a referenced entity that does not exist
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// NewNotFoundError creates a not-found error for an entity id
func NewNotFoundError(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidStateError reports an operation not permitted in the current
// raffle or ticket status
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

// NewInvalidStateError creates an invalid-state error
func NewInvalidStateError(message string) *InvalidStateError {
	return &InvalidStateError{Message: message}
}

// ConflictError reports a reservation collision or a cancel blocked by
// confirmed sales. Numbers lists the contested ticket numbers when the
// conflict is about specific numbers.
type ConflictError struct {
	Message string
	Numbers []int
}

func (e *ConflictError) Error() string {
	if len(e.Numbers) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Numbers))
	for i, n := range e.Numbers {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s: [%s]", e.Message, strings.Join(parts, ", "))
}

// NewConflictError creates a conflict error over a set of ticket numbers
func NewConflictError(message string, numbers ...int) *ConflictError {
	return &ConflictError{Message: message, Numbers: numbers}
}

// DependencyError wraps a failure from an external collaborator such as the
// payment gateway. Ledger state must never be left inconsistent by one.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// NewDependencyError wraps an external failure with the operation that hit it
func NewDependencyError(op string, err error) *DependencyError {
	return &DependencyError{Op: op, Err: err}
}
