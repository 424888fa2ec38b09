package domain

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// RequiredID rejects a nil UUID. validation.Required cannot, since a
// uuid.UUID is a non-empty fixed-size array.
var RequiredID = validation.By(func(value any) error {
	switch id := value.(type) {
	case uuid.UUID:
		if id != uuid.Nil {
			return nil
		}
	case *uuid.UUID:
		if id != nil && *id != uuid.Nil {
			return nil
		}
	}
	return validation.ErrRequired
})

// FromValidation converts ozzo-validation field errors into a
// *ValidationError with fields in sorted order. Rule misconfiguration
// (validation.InternalError) is returned unchanged.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError("input", err.Error())
	}

	fields := make([]string, 0, len(fieldErrs))
	for f, e := range fieldErrs {
		if e != nil {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	sort.Strings(fields)

	out := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldError{Field: f, Message: fieldErrs[f].Error()})
	}
	return NewValidationErrors(out)
}
