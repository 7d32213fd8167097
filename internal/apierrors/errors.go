// Package apierrors defines the structured error kinds returned by the
// SarychDB core and the HTTP status codes the server boundary maps them to.
package apierrors

import (
	"fmt"
	"net/http"
)

// Kind identifies one of the seven error kinds the core can return.
type Kind string

const (
	KindNotFound   Kind = "NOT_FOUND"
	KindAuthFailed Kind = "AUTH_FAILED"
	KindForbidden  Kind = "FORBIDDEN"
	KindConflict   Kind = "CONFLICT"
	KindBadRequest Kind = "BAD_REQUEST"
	KindCorrupt    Kind = "CORRUPT"
	KindIO         Kind = "IO_ERROR"
)

var statusForKind = map[Kind]int{
	KindNotFound:   http.StatusNotFound,
	KindAuthFailed: http.StatusUnauthorized,
	KindForbidden:  http.StatusForbidden,
	KindConflict:   http.StatusConflict,
	KindBadRequest: http.StatusBadRequest,
	KindCorrupt:    http.StatusUnprocessableEntity,
	KindIO:         http.StatusInternalServerError,
}

// ErrorWithStatus is an error that knows how to describe itself at the HTTP boundary.
type ErrorWithStatus interface {
	Error() string
	StatusCode() int
	Kind() Kind
	Details() map[string]any
}

// APIError is the concrete error type carried through the core.
type APIError struct {
	kind       Kind
	statusCode int
	message    string
	details    map[string]any
	wrappedErr error
}

// New creates an APIError of the given kind with the default status for that kind.
func New(kind Kind, message string) *APIError {
	return &APIError{
		kind:       kind,
		statusCode: statusForKind[kind],
		message:    message,
	}
}

// WithDetail attaches a single detail key/value to the error.
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

// Wrap attaches an underlying error for logging without changing the message shown to callers.
func (e *APIError) Wrap(err error) *APIError {
	e.wrappedErr = err
	return e
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.wrappedErr != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrappedErr)
	}
	return e.message
}

// StatusCode returns the HTTP status code for this error.
func (e *APIError) StatusCode() int { return e.statusCode }

// Kind returns the error kind.
func (e *APIError) Kind() Kind { return e.kind }

// Details returns additional error details, possibly nil.
func (e *APIError) Details() map[string]any { return e.details }

// Unwrap returns the wrapped error, if any.
func (e *APIError) Unwrap() error { return e.wrappedErr }

// NotFound creates a NotFound error: user/database absent, or file missing.
func NotFound(resource string) *APIError {
	return New(KindNotFound, fmt.Sprintf("%s not found", resource))
}

// AuthFailed creates an AuthFailed error: unknown user or password mismatch.
func AuthFailed() *APIError {
	return New(KindAuthFailed, "invalid username or password")
}

// Forbidden creates a Forbidden error: user acting on another user's database.
func Forbidden(message string) *APIError {
	return New(KindForbidden, message)
}

// Conflict creates a Conflict error: duplicate user or database name.
func Conflict(message string) *APIError {
	return New(KindConflict, message)
}

// BadRequest creates a BadRequest error: malformed input.
func BadRequest(message string) *APIError {
	return New(KindBadRequest, message)
}

// Corrupt creates a Corrupt error: database file does not parse as a JSON array of objects.
func Corrupt(path string) *APIError {
	return New(KindCorrupt, fmt.Sprintf("database file %q is corrupt", path))
}

// IOError creates an IO error, wrapping the underlying disk error.
func IOError(message string, err error) *APIError {
	return New(KindIO, message).Wrap(err)
}
