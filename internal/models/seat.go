package models

// Seat represents a single seat in a vehicle layout for a route+date
type Seat struct {
	SeatID        string  `json:"seat_id"` // e.g. "3A"
	SeatNumber    int     `json:"seat_number,omitempty"`
	SeatType      string  `json:"seat_type,omitempty"` // window, aisle
	Row           int     `json:"row"`
	Position      string  `json:"position"` // column letter A-D
	IsAvailable   bool    `json:"is_available"`
	PriceModifier float64 `json:"price_modifier"`
}

// SeatLayout is the seat inventory fetched for a route on a given date.
// Availability may go stale between fetch and booking submission - the
// backend rejects stale holds and the layout is re-fetched.
type SeatLayout struct {
	RouteID string `json:"route_id"`
	Date    string `json:"date"`
	Seats   []Seat `json:"seats"`
}

// Seat looks up a seat by id
func (l *SeatLayout) Seat(seatID string) (Seat, bool) {
	for _, s := range l.Seats {
		if s.SeatID == seatID {
			return s, true
		}
	}
	return Seat{}, false
}

// IsAvailable reports whether the seat exists and is currently available
func (l *SeatLayout) IsAvailable(seatID string) bool {
	s, ok := l.Seat(seatID)
	return ok && s.IsAvailable
}

// ToggleOutcome is the result of a seat toggle
type ToggleOutcome int

const (
	ToggleIgnored ToggleOutcome = iota // unavailable seat or capacity reached
	ToggleAdded
	ToggleRemoved
)

// SelectionSet is an ordered set of selected seat ids. Insertion order
// determines the passenger-index association, so order is preserved.
type SelectionSet struct {
	seats []string
}

// NewSelectionSet creates an empty selection
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{}
}

// Len returns the number of selected seats
func (s *SelectionSet) Len() int {
	return len(s.seats)
}

// Contains checks whether a seat is currently selected
func (s *SelectionSet) Contains(seatID string) bool {
	for _, id := range s.seats {
		if id == seatID {
			return true
		}
	}
	return false
}

// Seats returns the selected seat ids in insertion order
func (s *SelectionSet) Seats() []string {
	out := make([]string, len(s.seats))
	copy(out, s.seats)
	return out
}

// Toggle applies the seat click rules:
//   - a selected seat is always removed
//   - an unselected available seat is appended while len < maxSelectable
//   - anything else is silently ignored (capacity guard, unavailable seat)
func (s *SelectionSet) Toggle(seatID string, seatAvailable bool, maxSelectable int) ToggleOutcome {
	if s.Contains(seatID) {
		s.Remove(seatID)
		return ToggleRemoved
	}
	if !seatAvailable {
		return ToggleIgnored
	}
	if len(s.seats) >= maxSelectable {
		return ToggleIgnored
	}
	s.seats = append(s.seats, seatID)
	return ToggleAdded
}

// Remove drops a seat from the selection, preserving the order of the rest
func (s *SelectionSet) Remove(seatID string) bool {
	for i, id := range s.seats {
		if id == seatID {
			s.seats = append(s.seats[:i], s.seats[i+1:]...)
			return true
		}
	}
	return false
}
