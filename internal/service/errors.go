package service

import "fmt"

// ValidationError reports a single rejected input field. Handlers surface
// Field and Message as field-level detail; the caller can always recover by
// correcting the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
