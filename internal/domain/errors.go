package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels shared by services, repositories and transport. Callers match
// them with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")

	// ErrMailboxDisconnected means sending needs a Gmail credential the user
	// has not connected. The prefix is the code clients switch on.
	ErrMailboxDisconnected = errors.New("GMAIL_DISCONNECTED: mailbox not connected")
)

// ErrInvalidTransition rejects an ai_status change the state machine does not
// allow from the current status.
var ErrInvalidTransition = fmt.Errorf("invalid ai status transition: %w", ErrConflict)

// FieldError is one rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects rejected input fields. It matches ErrValidation.
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError rejects a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// NewValidationErrors rejects several fields at once.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation: " + e.Errors[0].Field + ": " + e.Errors[0].Message
	}
	names := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		names[i] = fe.Field
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Fields returns field name to message. A field listed twice keeps its
// first message.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		if _, dup := out[fe.Field]; !dup {
			out[fe.Field] = fe.Message
		}
	}
	return out
}
