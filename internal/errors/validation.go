package errors

import (
	stdErrors "errors"
	"fmt"
	"sort"
)

// ValidationError is returned when a record is missing mandatory fields.
// Fields maps the JSON field name to a short description of the problem.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.FirstField())
}

// FirstField renders the alphabetically first field problem as "<field> <problem>".
func (e *ValidationError) FirstField() string {
	if len(e.Fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0] + " " + e.Fields[names[0]]
}

// NewValidationError creates a ValidationError with per-field details.
func NewValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// IsValidationError reports whether err is a ValidationError (even when wrapped).
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return stdErrors.As(err, &validationErr)
}
