package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutState is a step in the checkout flow
type CheckoutState string

const (
	StateSearch       CheckoutState = "search"
	StateResults      CheckoutState = "results"
	StateSeats        CheckoutState = "seats"
	StatePayment      CheckoutState = "payment"
	StateConfirmation CheckoutState = "confirmation"
	StateAborted      CheckoutState = "aborted"
)

// IsTerminal reports whether no further transition is defined from the state
func (s CheckoutState) IsTerminal() bool {
	return s == StateConfirmation || s == StateAborted
}

// Predecessor returns the state back() navigates to. Terminal states and
// the initial search step have no predecessor.
func (s CheckoutState) Predecessor() (CheckoutState, bool) {
	switch s {
	case StateResults:
		return StateSearch, true
	case StateSeats:
		return StateResults, true
	case StatePayment:
		return StateSeats, true
	}
	return "", false
}

// PaymentSnapshot is the externally visible view of a payment attempt
type PaymentSnapshot struct {
	BookingID        string        `json:"booking_id"`
	Status           PaymentStatus `json:"status"`
	Method           PaymentMethod `json:"method,omitempty"`
	RemainingSeconds int           `json:"remaining_seconds"`
	ExpiresAt        time.Time     `json:"expires_at"`
	TransactionID    string        `json:"transaction_id,omitempty"`
}

// CheckoutSnapshot is the externally visible view of a checkout session,
// returned after every transition and on state queries
type CheckoutSnapshot struct {
	SessionID     uuid.UUID         `json:"session_id"`
	State         CheckoutState     `json:"state"`
	UserID        *uuid.UUID        `json:"user_id,omitempty"`
	Criteria      *SearchCriteria   `json:"criteria,omitempty"`
	Results       []RouteOption     `json:"results,omitempty"`
	SelectedRoute *RouteOption      `json:"selected_route,omitempty"`
	SeatLayout    *SeatLayout       `json:"seat_layout,omitempty"`
	SelectedSeats []string          `json:"selected_seats,omitempty"`
	Passengers    []PassengerDetail `json:"passengers,omitempty"`
	Booking       *Booking          `json:"booking,omitempty"`
	Payment       *PaymentSnapshot  `json:"payment,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
