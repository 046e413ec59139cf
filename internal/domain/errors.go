package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a lookup names an unknown record.
	ErrNotFound = errors.New("record not found")
	// ErrQueueFull indicates the notification queue cannot take more work.
	ErrQueueFull = errors.New("notification queue full")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted option ID is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrIncompleteStep is returned when the wizard cannot advance yet.
	ErrIncompleteStep = errors.New("current step is incomplete")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries field-level detail for a rejected payload.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewFieldError builds a ValidationError with a single field.
func NewFieldError(field, rule, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule, Message: message}}}
}
