package errors

import (
	"errors"
	"fmt"
)

// StopProcessingError is returned when the user quits the release picker
// instead of choosing or skipping a candidate.
type StopProcessingError struct {
	Query string
}

func (e *StopProcessingError) Error() string {
	if e.Query == "" {
		return "release selection stopped"
	}
	return fmt.Sprintf("release selection stopped for %q", e.Query)
}

// NewStopProcessingError records the search query the picker was showing.
func NewStopProcessingError(query string) *StopProcessingError {
	return &StopProcessingError{Query: query}
}

// IsStopProcessingError reports whether err is a StopProcessingError (even when wrapped).
func IsStopProcessingError(err error) bool {
	var stopErr *StopProcessingError
	return errors.As(err, &stopErr)
}
