package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("points", "must be at least 1", 0)

	if err.Field != "points" {
		t.Errorf("Expected field to be 'points', got '%s'", err.Field)
	}
	if err.Message != "must be at least 1" {
		t.Errorf("Expected message to be 'must be at least 1', got '%s'", err.Message)
	}
	if err.Value != 0 {
		t.Errorf("Expected value to be 0, got '%v'", err.Value)
	}

	expected := "validation error on field 'points': must be at least 1"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("cost", "is required", nil))
	expected := "validation failed: cost is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("name", "is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	errs := ToValidationErrors(NewValidationError("x", "y", nil))
	if len(errs) != 0 {
		t.Errorf("Expected no conversion for foreign error types, got %d entries", len(errs))
	}
}
