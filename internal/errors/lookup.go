package errors

import (
	stdErrors "errors"
	"fmt"
)

// LookupError represents a failed request against the metadata provider:
// transport failure, timeout, non-success status or an undecodable payload.
type LookupError struct {
	Op         string
	StatusCode int // HTTP status when the provider answered, 0 otherwise
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError wraps err as a provider lookup failure for the named operation.
func NewLookupError(op string, err error) *LookupError {
	return &LookupError{Op: op, Err: err}
}

// NewLookupStatusError creates a lookup failure for a non-success HTTP status.
func NewLookupStatusError(op string, statusCode int, body string) *LookupError {
	return &LookupError{Op: op, StatusCode: statusCode, Err: stdErrors.New(body)}
}

// IsLookupError reports whether err is a LookupError (even when wrapped).
func IsLookupError(err error) bool {
	var lookupErr *LookupError
	return stdErrors.As(err, &lookupErr)
}
