package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels returned by the service layer. The HTTP adapter maps each one
// to a status code.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrInvalidConfiguration is returned when a scorer table or service
	// dependency is missing or inconsistent at construction time.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// AccessError reports a caller that may not touch a resource, such as a
// class president scoring another section's room.
type AccessError struct {
	UserID string
	// Resource names the target, e.g. "classroom/7".
	Resource string
	// Err is ErrForbidden or ErrUnauthenticated.
	Err error
}

func (e *AccessError) Error() string {
	if e.UserID == "" {
		return fmt.Sprintf("%s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("user %s on %s: %v", e.UserID, e.Resource, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// ValidationError collects every problem found in one request so the
// client sees them all at once. It matches ErrInvalidInput.
type ValidationError struct {
	Entity string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

func NewValidationError(entity string) *ValidationError {
	return &ValidationError{Entity: entity}
}
