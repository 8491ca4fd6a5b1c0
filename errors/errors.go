// Package errors provides the error taxonomy for multipart upload operations.
//
// Every failure surfaced by the manager wraps exactly one of the sentinel
// errors below, so callers can branch with errors.Is or the IsX helpers.
// Backend-specific failures are translated into this taxonomy at the adapter
// boundary; nothing above the adapters sees an AWS or MinIO error type.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a multipart operation error with context about the
// operation that failed. It wraps one of the sentinel errors (possibly
// together with the backend's own error) for errors.Is checks.
type Error struct {
	// Op is the operation that failed (e.g., "createSession", "statObject")
	Op string

	// Backend names the storage backend involved (if applicable)
	Backend string

	// Key is the object key (if applicable)
	Key string

	// UploadID is the multipart upload session (if applicable)
	UploadID string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	prefix := "multipart." + e.Op
	if e.Backend != "" {
		prefix = e.Backend + ": " + prefix
	}
	switch {
	case e.Key != "" && e.UploadID != "":
		return fmt.Sprintf("%s %s (upload %s): %v", prefix, e.Key, e.UploadID, e.Err)
	case e.Key != "":
		return fmt.Sprintf("%s %s: %v", prefix, e.Key, e.Err)
	default:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBackend adds backend context to an existing error.
func (e *Error) WithBackend(backend string) *Error {
	e.Backend = backend
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithUploadID adds upload session context to an existing error.
func (e *Error) WithUploadID(uploadID string) *Error {
	e.UploadID = uploadID
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// Translate wraps a backend error under the given sentinel while keeping the
// backend error reachable through errors.As.
func Translate(op string, sentinel, cause error) *Error {
	if cause == nil {
		return NewError(op, sentinel)
	}
	return NewError(op, fmt.Errorf("%w: %w", sentinel, cause))
}

// Sentinel errors for multipart operation failures.
var (
	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("multipart: object not found")

	// ErrBackendUnavailable indicates a network, authentication or server
	// failure while reaching the object store
	ErrBackendUnavailable = errors.New("multipart: backend unavailable")

	// ErrInvalidKey indicates the object key violates the backend naming rules
	ErrInvalidKey = errors.New("multipart: invalid object key")

	// ErrUnsupportedBackend indicates the storage configuration has no matching adapter
	ErrUnsupportedBackend = errors.New("multipart: unsupported storage backend")

	// ErrPartSizeConstraint indicates a part (or the whole object) is outside
	// the backend's size bounds
	ErrPartSizeConstraint = errors.New("multipart: part size constraint violated")

	// ErrInvalidInput indicates a caller-supplied argument is malformed
	ErrInvalidInput = errors.New("multipart: invalid input")
)

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsBackendUnavailable checks if an error indicates the backend could not be reached.
func IsBackendUnavailable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

// IsInvalidKey checks if an error indicates the object key was rejected.
func IsInvalidKey(err error) bool {
	return errors.Is(err, ErrInvalidKey)
}

// IsUnsupportedBackend checks if an error indicates no adapter matches the storage.
func IsUnsupportedBackend(err error) bool {
	return errors.Is(err, ErrUnsupportedBackend)
}

// IsPartSizeConstraint checks if an error indicates a part size violation.
func IsPartSizeConstraint(err error) bool {
	return errors.Is(err, ErrPartSizeConstraint)
}

// IsInvalidInput checks if an error indicates invalid caller input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
