// ABOUTME: Error taxonomy shared by the store, HTTP and MCP layers
// ABOUTME: Not-found and unauthorized sentinels plus a field-level validation error
package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both absent rows and rows owned by another project.
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports malformed input. Field may be empty for whole-body problems.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for the named field.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
