package models

import (
	"errors"
	"fmt"
)

// BookingStatus represents the backend-reported status of a booking
type BookingStatus string

const (
	BookingPendingPayment BookingStatus = "pending_payment"
	BookingPaid           BookingStatus = "paid"
	BookingCancelled      BookingStatus = "cancelled"
)

// BookingDraft is the user-assembled booking request sent to the backend.
// A draft is sent at most once - retries build a new draft from the
// current session state.
type BookingDraft struct {
	RouteID          string            `json:"route_id"`
	SelectedSeats    []string          `json:"selected_seats"`
	PassengerDetails []PassengerDetail `json:"passenger_details"`
	Date             string            `json:"date"`
}

// NewBookingDraft snapshots the selection and manifest into an immutable
// draft. The selection must be full and the manifest complete.
func NewBookingDraft(routeID, date string, selection *SelectionSet, manifest *PassengerManifest, passengerCount int) (BookingDraft, error) {
	if routeID == "" {
		return BookingDraft{}, errors.New("route is required")
	}
	if selection.Len() != passengerCount {
		return BookingDraft{}, fmt.Errorf("please select %d seat(s)", passengerCount)
	}
	if !manifest.IsComplete(selection) {
		return BookingDraft{}, errors.New("incomplete passenger details")
	}

	return BookingDraft{
		RouteID:          routeID,
		SelectedSeats:    selection.Seats(),
		PassengerDetails: manifest.Ordered(selection),
		Date:             date,
	}, nil
}

// Booking is a backend-accepted booking awaiting or past payment
type Booking struct {
	ID         string        `json:"id"`
	Reference  string        `json:"booking_reference"`
	Status     BookingStatus `json:"status"`
	RouteID    string        `json:"route_id,omitempty"`
	Seats      []string      `json:"seats,omitempty"`
	Date       string        `json:"date,omitempty"`
	TotalPrice float64       `json:"total_price,omitempty"`
}
