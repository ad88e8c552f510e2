// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors. The typed errors below match these with
// errors.Is so callers can branch on the category without a type switch.
var (
	// Ledger errors.
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrReference  = errors.New("invalid reference")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Reasons reported by the category-type guard.
const (
	ReasonInvalidCategory = "invalid category"
	ReasonTypeMismatch    = "type mismatch"
)

// ValidationError is returned when input is rejected before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError is returned when a uniqueness rule would be broken.
type ConflictError struct {
	Entity string
	Key    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Entity, e.Key)
}

// Is makes errors.Is(err, ErrConflict) true.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflictError creates a ConflictError.
func NewConflictError(entity, key string) error {
	return &ConflictError{Entity: entity, Key: key}
}

// ReferenceError is returned when an id is dangling or owned by another user.
type ReferenceError struct {
	Entity string
	ID     int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("invalid %s reference: %d", e.Entity, e.ID)
}

// Is makes errors.Is(err, ErrReference) true.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference
}

// NewReferenceError creates a ReferenceError.
func NewReferenceError(entity string, id int64) error {
	return &ReferenceError{Entity: entity, ID: id}
}

// Reason extracts the guard reason from a validation error, or "".
func Reason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Describe turns a ledger error into a short message for the CLI.
func Describe(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "rejected: " + err.Error()
	case errors.Is(err, ErrConflict):
		return "conflict: " + err.Error()
	case errors.Is(err, ErrReference):
		return "bad reference: " + err.Error()
	case errors.Is(err, ErrNotFound):
		return "not found: " + err.Error()
	default:
		return err.Error()
	}
}
