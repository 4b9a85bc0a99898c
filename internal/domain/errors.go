package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidRequest signals malformed caller input outside the search pipeline.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrForbidden signals a requestor that may not perform an action on a resource.
	ErrForbidden = errors.New("forbidden")
	// ErrMisconfigured signals a programmer-supplied setup defect
	// (missing handlers, empty sortable fields, unknown columns).
	ErrMisconfigured = errors.New("misconfigured")
)

// TransgressionError wraps ErrForbidden with the denied action and resource.
type TransgressionError struct {
	Requestor string
	Action    string
	Resource  string
}

func (e *TransgressionError) Error() string {
	return fmt.Sprintf("%s: %q is not allowed to perform %q on %q",
		ErrForbidden.Error(), e.Requestor, e.Action, e.Resource)
}

func (e *TransgressionError) Unwrap() error { return ErrForbidden }

// NewTransgression creates a forbidden error for the given action.
func NewTransgression(requestor, action, resource string) error {
	return &TransgressionError{Requestor: requestor, Action: action, Resource: resource}
}

// Misconfigured wraps ErrMisconfigured with a description of the defect.
func Misconfigured(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMisconfigured, fmt.Sprintf(format, args...))
}
