package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable machine-readable error category returned to API clients.
type Kind string

const (
	Validation         Kind = "validation"
	DuplicateEmail     Kind = "duplicate_email"
	InvalidCredentials Kind = "invalid_credentials"
	AccountDisabled    Kind = "account_disabled"
	RateLimited        Kind = "rate_limited"
	InvalidToken       Kind = "invalid_token"
	Forbidden          Kind = "forbidden"
	NotFound           Kind = "not_found"
	InvalidTechnician  Kind = "invalid_technician"
	StoreIO            Kind = "store_io"
)

type Error struct {
	Kind    Kind
	Message string
	// Fields carries field-level validation detail, nil otherwise.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error (store failures).
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Invalid builds a validation error with per-field detail.
func Invalid(fields map[string]string) *Error {
	return &Error{Kind: Validation, Message: "invalid input", Fields: fields}
}

// KindOf extracts the Kind from any error; unknown errors map to StoreIO
// so internals are never leaked as a specific client-facing condition.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return StoreIO
}

// Status maps an error kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case Validation:
		return http.StatusBadRequest
	case DuplicateEmail:
		return http.StatusConflict
	case InvalidCredentials, InvalidToken:
		return http.StatusUnauthorized
	case AccountDisabled, Forbidden:
		return http.StatusForbidden
	case RateLimited:
		return http.StatusTooManyRequests
	case NotFound:
		return http.StatusNotFound
	case InvalidTechnician:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
