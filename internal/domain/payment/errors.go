package payment

import (
	"fmt"
	"strconv"
)

// ErrNotFound indicates a missing payment
type ErrNotFound struct {
	PaymentID int64
}

func (e ErrNotFound) Error() string {
	return "payment not found: " + strconv.FormatInt(e.PaymentID, 10)
}

// Is implements the errors.Is interface for ErrNotFound
func (e ErrNotFound) Is(target error) bool {
	t, ok := target.(ErrNotFound)
	if !ok {
		return false
	}
	// A zero target PaymentID matches any ErrNotFound
	if t.PaymentID == 0 {
		return true
	}
	return e.PaymentID == t.PaymentID
}

// ErrStaleState indicates the payment was concurrently modified between read
// and update. The caller may retry once after re-reading current state.
type ErrStaleState struct {
	PaymentID int64
}

func (e ErrStaleState) Error() string {
	return "payment state is stale, concurrent modification detected: " + strconv.FormatInt(e.PaymentID, 10)
}

// Is implements the errors.Is interface for ErrStaleState
func (e ErrStaleState) Is(target error) bool {
	t, ok := target.(ErrStaleState)
	if !ok {
		return false
	}
	if t.PaymentID == 0 {
		return true
	}
	return e.PaymentID == t.PaymentID
}

// ErrInvalidTransition indicates the current status does not permit the event
type ErrInvalidTransition struct {
	PaymentID int64
	Status    Status
	Event     Event
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("payment %d: cannot %s while %s", e.PaymentID, e.Event, e.Status)
}

// ErrUnauthorized indicates the actor is not allowed to perform the event on
// the payment in its current stage
type ErrUnauthorized struct {
	PaymentID int64
	ActorID   int64
	Event     Event
}

func (e ErrUnauthorized) Error() string {
	return fmt.Sprintf("actor %d is not authorized to %s payment %d", e.ActorID, e.Event, e.PaymentID)
}

// ErrValidation indicates malformed input, surfaced directly to the caller
type ErrValidation struct {
	Reason string
}

func (e ErrValidation) Error() string {
	return "validation failed: " + e.Reason
}
