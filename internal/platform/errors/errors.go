// Package errors provides structured error handling with HTTP status code
// mapping and field-level detail for validation failures.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error for response formatting and metrics.
type Kind string

const (
	// KindValidation indicates malformed input (HTTP 400).
	KindValidation Kind = "validation"
	// KindUnauthorized indicates a missing or invalid identity (HTTP 401).
	KindUnauthorized Kind = "unauthorized"
	// KindNotFound indicates an unknown procedure path or missing resource (HTTP 404).
	KindNotFound Kind = "not_found"
	// KindConflict indicates a uniqueness violation such as a duplicate email (HTTP 409).
	KindConflict Kind = "conflict"
	// KindInvalidCredentials indicates a sign-in failure. Deliberately the same
	// for unknown emails and wrong passwords to prevent account enumeration (HTTP 401).
	KindInvalidCredentials Kind = "invalid_credentials"
	// KindUnavailable indicates the datastore is unreachable or timed out;
	// safe for the caller to retry (HTTP 503).
	KindUnavailable Kind = "unavailable"
	// KindInternal indicates an unclassified fault, logged server-side with
	// detail and reported to the caller with a generic message (HTTP 500).
	KindInternal Kind = "internal"
)

// Error is a structured error with kind, message, and optional field detail.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	// Fields carries per-field validation detail, keyed by field name.
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	return StatusForKind(e.Kind)
}

// StatusForKind maps an error kind to its HTTP status code.
func StatusForKind(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe to expose to callers. Internal
// errors collapse to a generic message so causes never leak.
func (e *Error) ClientMessage() string {
	if e.Kind == KindInternal {
		return "internal server error"
	}
	return e.Message
}

// WithField attaches field-level detail (chainable).
func (e *Error) WithField(name, detail string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[name] = detail
	return e
}

func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func UnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func NotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func ConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// InvalidCredentialsError always carries the same message regardless of
// whether the email was unknown or the password wrong.
func InvalidCredentialsError() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "invalid email or password"}
}

func UnavailableError(message string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Cause: cause}
}

func InternalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// ErrorResponse is the JSON error shape of the auth endpoints.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Kind   Kind              `json:"kind"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ToResponse converts an Error to its JSON form.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.ClientMessage(),
		Kind:   e.Kind,
		Fields: e.Fields,
	}
}

// AsStructuredError converts any error into a structured *Error. Errors that
// are already structured pass through unchanged; everything else becomes an
// internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}
