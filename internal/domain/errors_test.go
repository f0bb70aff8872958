package domain

import (
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("quantity", "must be positive")

	if !errors.Is(err, ErrValidation) {
		t.Error("must unwrap to ErrValidation")
	}
	want := "validation: quantity — must be positive"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	multi := &ValidationError{Errors: []FieldError{
		{Field: "a", Message: "x"},
		{Field: "b", Message: "y"},
	}}
	if multi.Error() != "validation: 2 errors" {
		t.Errorf("Error() = %q", multi.Error())
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) != 1 || ve.Errors[0].Field != "quantity" {
		t.Errorf("errors.As: %+v", ve)
	}
}

func TestAmbiguousError(t *testing.T) {
	err := &AmbiguousError{
		SetCode:         "sta",
		CollectorNumber: "125",
		Lang:            "en",
		Candidates:      []string{"nonfoil", "etched"},
	}

	if !errors.Is(err, ErrAmbiguous) {
		t.Error("must unwrap to ErrAmbiguous")
	}
	want := "ambiguous match for sta 125 (en): candidates [nonfoil, etched]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := errors.Join(errors.New("line 3"), err)
	var ae *AmbiguousError
	if !errors.As(wrapped, &ae) || len(ae.Candidates) != 2 {
		t.Errorf("errors.As through wrapping: %+v", ae)
	}
}

func TestInputError(t *testing.T) {
	err := NewInputError("condition", "MINT", "unknown condition code")

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("must unwrap to ErrInvalidInput")
	}
	want := `invalid condition "MINT": unknown condition code`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if errors.Is(err, ErrValidation) {
		t.Error("must not match ErrValidation")
	}
}
