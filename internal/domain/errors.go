package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every ValidationError so callers can test
// with errors.Is without caring about the failing field.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError names the request field that failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
