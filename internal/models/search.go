package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TransportType represents the mode of transport being searched
type TransportType string

const (
	TransportBus     TransportType = "bus"
	TransportFerry   TransportType = "ferry"
	TransportPrivate TransportType = "private"
	TransportAirport TransportType = "airport"
)

// IsValid checks if the transport type is one of the supported modes
func (t TransportType) IsValid() bool {
	switch t {
	case TransportBus, TransportFerry, TransportPrivate, TransportAirport:
		return true
	}
	return false
}

// DateLayout is the wire format for travel dates
const DateLayout = "2006-01-02"

// SearchCriteria holds the parameters of a route search.
// It is immutable once created - downstream steps read it, never modify it.
type SearchCriteria struct {
	Origin         string        `json:"origin"`
	Destination    string        `json:"destination"`
	Date           string        `json:"date"` // YYYY-MM-DD
	PassengerCount int           `json:"passengers"`
	TransportType  TransportType `json:"transport_type"`
}

// NewSearchCriteria validates and builds search criteria
func NewSearchCriteria(origin, destination, date string, passengers int, transport TransportType) (SearchCriteria, error) {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)

	if origin == "" {
		return SearchCriteria{}, errors.New("origin is required")
	}
	if destination == "" {
		return SearchCriteria{}, errors.New("destination is required")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return SearchCriteria{}, fmt.Errorf("invalid travel date %q: expected YYYY-MM-DD", date)
	}
	if passengers < 1 {
		return SearchCriteria{}, errors.New("passenger count must be at least 1")
	}
	if !transport.IsValid() {
		return SearchCriteria{}, fmt.Errorf("invalid transport type: %s (must be bus, ferry, private, or airport)", transport)
	}

	return SearchCriteria{
		Origin:         origin,
		Destination:    destination,
		Date:           date,
		PassengerCount: passengers,
		TransportType:  transport,
	}, nil
}

// RouteOption is a single result returned by a route search.
// Read-only in the checkout flow.
type RouteOption struct {
	ID             string   `json:"id"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	DepartureTime  string   `json:"departure_time"`
	ArrivalTime    string   `json:"arrival_time"`
	Duration       string   `json:"duration,omitempty"`
	Price          float64  `json:"price"`
	VehicleType    string   `json:"vehicle_type,omitempty"`
	Company        string   `json:"company"`
	Amenities      []string `json:"amenities,omitempty"`
	AvailableSeats int      `json:"available_seats"`
	TotalSeats     int      `json:"total_seats,omitempty"`
}

// Destination is a popular destination entry for the landing widgets
type Destination struct {
	Name        string  `json:"name"`
	Country     string  `json:"country,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	PriceFrom   float64 `json:"price_from,omitempty"`
	RouteCount  int     `json:"route_count,omitempty"`
	Description string  `json:"description,omitempty"`
}
