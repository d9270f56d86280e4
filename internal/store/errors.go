package store

import "fmt"

// The store reports failures through a small set of typed errors. Handlers
// pick them apart with errors.As to choose the HTTP status; nothing in this
// package knows about HTTP.

// NotFoundError means the named resource does not exist.
type NotFoundError struct {
	Resource string
	Name     string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}

func NewNotFoundError(resource, name string) error {
	return &NotFoundError{Resource: resource, Name: name}
}

// ConflictError means the resource already exists.
type ConflictError struct {
	Resource string
	Name     string
}

func (e *ConflictError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s already exists", e.Resource)
	}
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Name)
}

func NewConflictError(resource, name string) error {
	return &ConflictError{Resource: resource, Name: name}
}

// ValidationError means the request payload cannot be accepted as given.
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

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidStateError means a deletion is blocked because other rows still
// reference the resource.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return e.Reason
}

func NewInvalidStateError(reason string) error {
	return &InvalidStateError{Reason: reason}
}
