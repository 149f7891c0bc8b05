package models

import "errors"

// ErrorKind classifies a checkout failure for propagation policy:
// validation failures never reach the network, stale data forces a
// re-fetch of the affected resource, network failures are user-retryable,
// and payment declines return to method selection.
type ErrorKind string

const (
	ErrKindValidation      ErrorKind = "validation"
	ErrKindAuthRequired    ErrorKind = "auth_required"
	ErrKindStaleData       ErrorKind = "stale_data"
	ErrKindNetwork         ErrorKind = "network"
	ErrKindPaymentDeclined ErrorKind = "payment_declined"
	ErrKindConflict        ErrorKind = "conflict" // concurrent transition or ownership violation
	ErrKindNotFound        ErrorKind = "not_found"
)

// BookingError is a classified checkout failure carried from the gateway
// or state machine up to the HTTP surface
type BookingError struct {
	Kind       ErrorKind
	Message    string
	TakenSeats []string // populated for stale-data seat conflicts
	Err        error
}

func (e *BookingError) Error() string {
	return e.Message
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a client-side validation failure
func NewValidationError(message string) *BookingError {
	return &BookingError{Kind: ErrKindValidation, Message: message}
}

// NewAuthRequiredError builds a refused transition that needs a login
func NewAuthRequiredError(message string) *BookingError {
	return &BookingError{Kind: ErrKindAuthRequired, Message: message}
}

// NewStaleDataError builds a concurrent-modification rejection
func NewStaleDataError(message string, takenSeats []string) *BookingError {
	return &BookingError{Kind: ErrKindStaleData, Message: message, TakenSeats: takenSeats}
}

// NewNetworkError builds a transient, user-retryable transport failure
func NewNetworkError(message string, cause error) *BookingError {
	return &BookingError{Kind: ErrKindNetwork, Message: message, Err: cause}
}

// NewPaymentDeclinedError builds a terminal payment failure that returns
// the session to method selection
func NewPaymentDeclinedError(message string) *BookingError {
	return &BookingError{Kind: ErrKindPaymentDeclined, Message: message}
}

// NewConflictError builds a concurrency or ownership rejection
func NewConflictError(message string) *BookingError {
	return &BookingError{Kind: ErrKindConflict, Message: message}
}

// NewNotFoundError builds a missing-resource failure
func NewNotFoundError(message string) *BookingError {
	return &BookingError{Kind: ErrKindNotFound, Message: message}
}

// KindOf extracts the error kind, defaulting unclassified errors to network
func KindOf(err error) ErrorKind {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ErrKindNetwork
}

// AsBookingError unwraps err into a BookingError if it is one
func AsBookingError(err error) (*BookingError, bool) {
	var be *BookingError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
