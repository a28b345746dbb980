package booking

import (
	"errors"
	"fmt"
)

// Error kinds. Typed errors below match them through errors.Is.
var (
	ErrValidation        = errors.New("booking: validation failed")
	ErrUnauthorized      = errors.New("booking: unauthorized")
	ErrIllegalTransition = errors.New("booking: illegal transition")
	ErrConflict          = errors.New("booking: date conflict")
	ErrNotFound          = errors.New("booking: not found")
	ErrConcurrentUpdate  = errors.New("booking: concurrent update detected")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func InvalidCause(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: err.Error(), Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "booking: invalid input: " + e.Reason
	}
	return fmt.Sprintf("booking: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *ValidationError) Unwrap() error        { return e.Err }

// AuthorizationError is never downgraded to validation or not-found.
type AuthorizationError struct {
	PrincipalID string
	PropertyID  string
	Reason      string
}

func (e *AuthorizationError) Error() string {
	msg := "booking: unauthorized"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.PropertyID != "" {
		msg += " (property " + e.PropertyID + ")"
	}
	return msg
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrUnauthorized }

// IllegalTransitionError carries the status that forbade the requested action.
type IllegalTransitionError struct {
	BookingID BookingID
	Current   Status
	Action    Action
	Reason    string
}

func (e *IllegalTransitionError) Error() string {
	msg := fmt.Sprintf("booking: cannot %s booking %s: current status is %s", e.Action.Describe(), e.BookingID, e.Current)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *IllegalTransitionError) Is(target error) bool { return target == ErrIllegalTransition }

// ConflictError names the existing booking whose dates collide.
type ConflictError struct {
	Conflict Conflict
}

func (e *ConflictError) Error() string {
	return "booking: dates conflict with " + e.Conflict.Description()
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError covers unresolvable booking and property ids.
type NotFoundError struct {
	Kind string
	ID   string
}

func BookingNotFound(id BookingID) *NotFoundError {
	return &NotFoundError{Kind: "booking", ID: string(id)}
}

func PropertyNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "property", ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("booking: %s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
