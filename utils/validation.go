package utils

import (
	"fmt"
	"strings"
)

// FieldValidationError represents a validation error for a specific field
type FieldValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldValidationErrors represents multiple field validation errors
type FieldValidationErrors []FieldValidationError

// Error implements the error interface
func (e FieldValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// ValidateRequired checks that a required string field is present.
func ValidateRequired(field, value string) *FieldValidationError {
	if strings.TrimSpace(value) == "" {
		return &FieldValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidateOneOf checks that a value belongs to a closed set.
func ValidateOneOf(field, value string, allowed ...string) *FieldValidationError {
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return &FieldValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}
