package services

import (
	"errors"
	"fmt"
)

// Error taxonomy. Validation failures are rejected locally before any
// datastore write; precondition failures mean the state machine refused a
// transition; stale writes mean another device won a race. No partial
// transition is ever committed on error.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrNotAssignable      = errors.New("resource is not assignable")
	ErrPrecondition       = errors.New("precondition failed")
	ErrInsufficientFunds  = errors.New("insufficient wallet balance")
)

// ValidationError is a field-level rejection of malformed input to a
// transition, surfaced to the client before any network side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AsValidation unwraps a ValidationError if err carries one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
