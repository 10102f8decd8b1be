// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so handlers can map it to a transport
// status and callers can decide whether a retry makes sense.
type Kind string

const (
	KindValidation             Kind = "VALIDATION_ERROR"
	KindUnauthorized           Kind = "UNAUTHORIZED"
	KindInvalidTransition      Kind = "INVALID_TRANSITION"
	KindConcurrentModification Kind = "CONCURRENT_MODIFICATION"
	KindNoCandidates           Kind = "NO_CANDIDATES"
	KindNotFound               Kind = "NOT_FOUND"
	KindUnavailable            Kind = "REPOSITORY_UNAVAILABLE"
	KindExtractionFailed       Kind = "EXTRACTION_FAILED"
	KindInvalidFingerprint     Kind = "INVALID_FINGERPRINT"
	KindInternal               Kind = "INTERNAL_ERROR"
)

// Error carries a kind, the offending field or state where one
// applies, and a caller-facing message. It is the only error type the
// service layer returns for business failures.
type Error struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// InvalidTransition surfaces the current status so the caller can
// reconcile a stale view.
func InvalidTransition(current, attempted string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Field:   "status",
		Message: fmt.Sprintf("cannot move from %s to %s", current, attempted),
	}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not an
// *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status the transport layer
// should respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindNoCandidates, KindInvalidFingerprint, KindExtractionFailed:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusForbidden
	case KindInvalidTransition, KindConcurrentModification:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
