package services

import (
	"github.com/sirupsen/logrus"
	"github.com/tesvanthan/ticketbooking/internal/gateway"
	"github.com/tesvanthan/ticketbooking/internal/models"
)

// Listing scopes for a user's booking history
const (
	ScopeAll      = ""
	ScopeUpcoming = "upcoming"
	ScopePast     = "past"
)

// BookingService serves the authenticated booking listings outside the
// checkout flow
type BookingService struct {
	api    gateway.API
	logger *logrus.Logger
}

// NewBookingService creates the booking listing service
func NewBookingService(api gateway.API, logger *logrus.Logger) *BookingService {
	return &BookingService{api: api, logger: logger}
}

// List returns the caller's bookings for a scope
func (s *BookingService) List(token, scope string) ([]models.Booking, error) {
	switch scope {
	case ScopeAll, ScopeUpcoming, ScopePast:
	default:
		return nil, models.NewValidationError("unknown booking scope")
	}

	bookings, err := s.api.ListBookings(token, scope)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"scope": scope,
		"count": len(bookings),
	}).Debug("Bookings listed")

	return bookings, nil
}
