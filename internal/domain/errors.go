package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when no user identity is bound to the request,
// or when credentials do not match. Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the caller is identified but does not own
// the resource. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidParameter is returned when a list query parameter is malformed
// (non-numeric year, unknown sort). Handlers should map this to HTTP 400.
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrConflict is returned when a unique value (email, username) is taken.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// FieldError describes why a single input field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the field-level detail of a validation failure.
// errors.Is(err, ErrValidation) holds for any ValidationErrors value.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Message
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error { return ErrValidation }

// NewValidationError builds a single-field ValidationErrors.
func NewValidationError(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// ParamError reports a malformed query parameter.
// errors.Is(err, ErrInvalidParameter) holds for any *ParamError.
type ParamError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }
