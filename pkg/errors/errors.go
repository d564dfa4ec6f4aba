package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/noah-isme/timetable-solver/internal/solvererr"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"status"`
	Fields  map[string]any `json:"fields,omitempty"`
	Err     error          `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrFinalized          = New("FINALIZED", http.StatusConflict, "resource finalized")
	ErrInvalidWeights     = New("INVALID_WEIGHTS", http.StatusBadRequest, "invalid component weights")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Predefined errors for the solver's closed infeasibility taxonomy
// (solvererr.Kind), one HTTP-aware Error per Kind so handlers never branch
// on the string value directly.
var (
	ErrCapacityShortfall = New("CAPACITY_SHORTFALL", http.StatusUnprocessableEntity, "no room of the required type has sufficient capacity")
	ErrNoQualifiedStaff  = New("NO_QUALIFIED_STAFF", http.StatusUnprocessableEntity, "no staff member is qualified for a required session")
	ErrNoSchedule        = New("NO_SCHEDULE", http.StatusUnprocessableEntity, "no consistent schedule exists for the given academic structure")
	ErrInvalidInput      = New("INVALID_INPUT", http.StatusUnprocessableEntity, "the academic structure violates a relational invariant")
)

// FromSolverError translates a *solvererr.Infeasible into the HTTP error
// envelope, preserving its Fields for the response body and falling back to
// FromError for anything else (including context.DeadlineExceeded/Canceled,
// which callers should check for before reaching here).
func FromSolverError(err error) *Error {
	var infeasible *solvererr.Infeasible
	if !errors.As(err, &infeasible) {
		return FromError(err)
	}

	var base *Error
	switch infeasible.Kind {
	case solvererr.CapacityShortfall:
		base = ErrCapacityShortfall
	case solvererr.NoQualifiedStaff:
		base = ErrNoQualifiedStaff
	case solvererr.NoSchedule:
		base = ErrNoSchedule
	case solvererr.InvalidInput:
		base = ErrInvalidInput
	default:
		base = ErrInternal
	}
	wrapped := Wrap(infeasible, base.Code, base.Status, infeasible.Detail)
	wrapped.Fields = infeasible.Fields
	return wrapped
}
