package contact

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the single error kind returned by this package.
// Every error from New, the setters, and Service wraps it.
var ErrInvalidArgument = errors.New("contact: invalid argument")

// Finer-grained causes. Each wraps ErrInvalidArgument, so callers that only
// care about the kind can keep matching on that.
var (
	ErrNilContact  = fmt.Errorf("%w: contact cannot be nil", ErrInvalidArgument)
	ErrMissingID   = fmt.Errorf("%w: contact ID cannot be empty", ErrInvalidArgument)
	ErrDuplicateID = fmt.Errorf("%w: contact ID must be unique", ErrInvalidArgument)
	ErrNotFound    = fmt.Errorf("%w: contact ID not found", ErrInvalidArgument)
	ErrOwned       = fmt.Errorf("%w: contact already belongs to another service", ErrInvalidArgument)
)

// Field names used in FieldError.
const (
	FieldID        = "id"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldPhone     = "phone"
	FieldAddress   = "address"
)

// FieldError reports a field value that violates its format rule.
type FieldError struct {
	Field  string // One of the Field* constants.
	Value  string // The rejected value.
	Reason string // Human-readable rule, e.g. "must be 1-10 characters".
}

// Error implements error.
func (e *FieldError) Error() string {
	return fmt.Sprintf("contact: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidArgument so errors.Is matches the kind.
func (e *FieldError) Unwrap() error {
	return ErrInvalidArgument
}
