package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for propagation and transport mapping
type Kind string

const (
	KindValidation              Kind = "VALIDATION_ERROR"
	KindAuthorization           Kind = "FORBIDDEN"
	KindNotFound                Kind = "NOT_FOUND"
	KindPrecondition            Kind = "PRECONDITION_FAILED"
	KindConflict                Kind = "CONFLICT"
	KindCollaboratorUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindVerificationFailed      Kind = "VERIFICATION_FAILED"
	KindInternal                Kind = "INTERNAL"
)

// Reason names the specific precondition that blocked an operation
type Reason string

const (
	ReasonPaymentIncomplete  Reason = "PAYMENT_INCOMPLETE"
	ReasonAlreadySent        Reason = "ALREADY_SENT"
	ReasonNoHospitalsFound   Reason = "NO_HOSPITALS_FOUND"
	ReasonDispatchInProgress Reason = "DISPATCH_IN_PROGRESS"
	ReasonPaymentFinalized   Reason = "PAYMENT_FINALIZED"
	ReasonInvalidTransition  Reason = "INVALID_TRANSITION"
)

// Sentinels for errors.Is checks
var (
	ErrValidation              = errors.New("validation error")
	ErrForbidden               = errors.New("forbidden")
	ErrNotFound                = errors.New("resource not found")
	ErrPrecondition            = errors.New("precondition failed")
	ErrConflict                = errors.New("conflict")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrVerificationFailed      = errors.New("verification failed")
)

// Error carries a kind, an optional precondition reason and the wrapped cause
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind, and other *Error values with equal kind and reason
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind && (t.Reason == "" || e.Reason == t.Reason)
	}
	return target == sentinelFor(e.Kind)
}

// Code is the machine-readable code exposed to clients
func (e *Error) Code() string {
	if e.Reason != "" {
		return string(e.Reason)
	}
	return string(e.Kind)
}

// HTTPStatus maps the kind to a transport status
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindVerificationFailed:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindPrecondition:
		switch e.Reason {
		case ReasonNoHospitalsFound:
			return http.StatusNotFound
		case ReasonDispatchInProgress:
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindCollaboratorUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// WithDetail attaches a key/value to the error and returns it
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func sentinelFor(k Kind) error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindAuthorization:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindPrecondition:
		return ErrPrecondition
	case KindConflict:
		return ErrConflict
	case KindCollaboratorUnavailable:
		return ErrCollaboratorUnavailable
	case KindVerificationFailed:
		return ErrVerificationFailed
	}
	return nil
}

// Validation creates a validation rejection
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Forbidden creates an authorization rejection
func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NotFound creates a not found error for the named resource
func NotFound(resource, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{"resource": resource, "id": id},
	}
}

// Precondition creates a precondition rejection with a specific reason
func Precondition(reason Reason, message string) *Error {
	return &Error{Kind: KindPrecondition, Reason: reason, Message: message}
}

// Conflict creates a conflict error
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unavailable wraps a collaborator failure
func Unavailable(collaborator string, err error) *Error {
	return &Error{
		Kind:    KindCollaboratorUnavailable,
		Message: fmt.Sprintf("%s unavailable", collaborator),
		Err:     err,
	}
}

// VerificationFailed creates a verification failure
func VerificationFailed(message string) *Error {
	return &Error{Kind: KindVerificationFailed, Message: message}
}

// Internal wraps an unexpected error
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// As extracts an *Error from err, if any
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasReason reports whether err is a precondition rejection with the given reason
func HasReason(err error, reason Reason) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == KindPrecondition && appErr.Reason == reason
}
