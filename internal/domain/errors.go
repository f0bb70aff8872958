package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrAmbiguous     = errors.New("ambiguous match")
	ErrInvalidInput  = errors.New("invalid input")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// AmbiguousError reports that an identity lookup matched more than one
// catalog printing and nothing in the input could narrow it to one. The
// candidates are enumerated so the operator can fix the source row.
type AmbiguousError struct {
	SetCode         string
	CollectorNumber string
	Lang            string
	Candidates      []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous match for %s %s (%s): candidates [%s]",
		e.SetCode, e.CollectorNumber, e.Lang, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguous }

// InputError reports a raw input value that cannot be mapped onto the catalog.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// NewInputError creates an InputError for a single raw field.
func NewInputError(field, value, reason string) *InputError {
	return &InputError{Field: field, Value: value, Reason: reason}
}
