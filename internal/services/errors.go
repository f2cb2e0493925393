package services

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both "no such entity" and "entity outside the caller's
// ownership scope". Merging the two keeps existence from leaking across
// accounts; handlers translate it to 404, never 403.
var ErrNotFound = errors.New("not found")

// ValidationError marks malformed input to a creation/update call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
