package errors

import (
	stdErrors "errors"
	"fmt"
)

// NotFoundError is returned by the record store for an unknown id.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity kind and id.
func NewNotFoundError(kind string, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFoundError reports whether err is a NotFoundError (even when wrapped).
func IsNotFoundError(err error) bool {
	var notFound *NotFoundError
	return stdErrors.As(err, &notFound)
}
