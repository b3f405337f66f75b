package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies the failures the core surfaces to callers.
type ErrorKind string

const (
	KindUnauthorized      ErrorKind = "unauthorized"
	KindForbidden         ErrorKind = "forbidden"
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindValidation        ErrorKind = "validation"
	KindRateLimited       ErrorKind = "rate_limited"
	KindInternal          ErrorKind = "internal"
)

// AppError is the structured application error. ConflictID carries the id of
// the conflicting reservation for overlap rejections; CorrelationID is set on
// internal errors and echoed in the response and the matching audit event.
type AppError struct {
	Kind          ErrorKind `json:"kind"`
	Message       string    `json:"message"`
	Details       string    `json:"details,omitempty"`
	ConflictID    int64     `json:"conflict_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Cause         error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

func NewAppError(kind ErrorKind, message, details string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Details: details, Cause: cause}
}

func ErrUnauthorized(details string) *AppError {
	return NewAppError(KindUnauthorized, "Authentication required", details, nil)
}

func ErrForbidden(details string) *AppError {
	return NewAppError(KindForbidden, "Insufficient permissions", details, nil)
}

func ErrNotFound(resource string, id int64) *AppError {
	return NewAppError(KindNotFound, "Resource not found", fmt.Sprintf("%s %d", resource, id), nil)
}

// ErrReservationConflict carries the id of the reservation the candidate
// interval collides with.
func ErrReservationConflict(conflictID int64) *AppError {
	err := NewAppError(KindConflict, "Vehicle already reserved for this period", fmt.Sprintf("conflicting reservation %d", conflictID), nil)
	err.ConflictID = conflictID
	return err
}

func ErrInvalidTransition(from, to string) *AppError {
	return NewAppError(KindInvalidTransition, "Reservation state transition not permitted", fmt.Sprintf("%s -> %s", from, to), nil)
}

func ErrAlreadyCancelled(id int64) *AppError {
	return NewAppError(KindInvalidTransition, "Reservation is already cancelled", fmt.Sprintf("reservation %d", id), nil)
}

func ErrValidation(field, details string) *AppError {
	return NewAppError(KindValidation, fmt.Sprintf("Invalid value for %s", field), details, nil)
}

func ErrRateLimited(details string) *AppError {
	return NewAppError(KindRateLimited, "Too many attempts. Please try again later.", details, nil)
}

func ErrInternal(correlationID string, cause error) *AppError {
	err := NewAppError(KindInternal, "Internal error", "reference "+correlationID, cause)
	err.CorrelationID = correlationID
	return err
}

// HTTPStatus maps an error to the status code of its kind. Unclassified
// errors map to 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidTransition, KindValidation:
		return http.StatusUnprocessableEntity
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// KindOf extracts the error kind, defaulting to internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
