package booking

import (
	"errors"
	"fmt"
)

// Stable machine-readable error codes assigned by the reservation
// coordinator. Handlers map them to HTTP statuses; nothing below this layer
// leaks storage errors to clients.
const (
	CodeSlotTaken       = "slot_taken"
	CodeOutOfWindow     = "out_of_window"
	CodeTooLateToCancel = "too_late_to_cancel"
	CodeInvalidSchedule = "invalid_schedule"
	CodeKeyInUse        = "idempotency_key_in_use"
	CodeKeyReused       = "idempotency_key_reused"
)

type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewSlotTakenError() error {
	return &BookingError{
		Code:    CodeSlotTaken,
		Message: "the requested slot was just taken; fetch availability again",
	}
}

func NewOutOfWindowError(msg string) error {
	return &BookingError{
		Code:    CodeOutOfWindow,
		Message: msg,
	}
}

func NewTooLateToCancelError(msg string) error {
	return &BookingError{
		Code:    CodeTooLateToCancel,
		Message: msg,
	}
}

func NewInvalidScheduleError(msg string) error {
	return &BookingError{
		Code:    CodeInvalidSchedule,
		Message: msg,
	}
}

func NewKeyInUseError() error {
	return &BookingError{
		Code:    CodeKeyInUse,
		Message: "another request with this idempotency key is in flight; retry shortly",
	}
}

func NewKeyReusedError() error {
	return &BookingError{
		Code:    CodeKeyReused,
		Message: "idempotency key was already used with a different payload",
	}
}

// AsBookingError unwraps err into a *BookingError when possible.
func AsBookingError(err error) (*BookingError, bool) {
	var be *BookingError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
