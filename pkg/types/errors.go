package types

import (
	"errors"
	"fmt"
)

// Record operation errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidID     = errors.New("invalid record ID")
	ErrUnknownEntity = errors.New("unknown entity")
)

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend already attached")
)

// Validation errors. The engine reports the first violation only, wrapped in
// a *ValidationError naming the offending field.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidFieldValue    = errors.New("invalid field value")
	ErrInvalidReference     = errors.New("invalid reference")
	ErrInvalidDateRange     = errors.New("return date precedes borrow date")
)

// Transport and persistence errors.
var (
	ErrAPIOperationFailed      = errors.New("api operation failed")
	ErrMalformedImport         = errors.New("malformed import document")
	ErrMalformedPersistedState = errors.New("malformed persisted state")
)

// ValidationError reports a single rule violation on one field.
// Err is one of the validation sentinels above.
type ValidationError struct {
	Entity string
	Field  string
	Label  string
	Err    error
}

// Error implements error.
func (e *ValidationError) Error() string {
	label := e.Label
	if label == "" {
		label = e.Field
	}
	return fmt.Sprintf("%s: %s: %s", e.Entity, label, e.Err)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *ValidationError) Unwrap() error { return e.Err }

// APIError reports a failed call against the remote API. Status is the HTTP
// status code, or 0 when the request never got a response.
type APIError struct {
	Op     string
	Entity string
	Status int
	Err    error
}

// Error implements error.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("api %s %s failed", e.Op, e.Entity)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying transport error, if any.
func (e *APIError) Unwrap() error { return e.Err }

// Is matches ErrAPIOperationFailed always, and ErrNotFound for 404 responses.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAPIOperationFailed:
		return true
	case ErrNotFound:
		return e.Status == 404
	}
	return false
}

// IsValidation reports whether err is any validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
