package models

import "strings"

// PassengerDetail holds the traveller information collected for one seat
type PassengerDetail struct {
	SeatNumber string `json:"seat_number"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"` // optional
}

// IsComplete reports whether the detail is submittable: first name, last
// name, and a plausible email are required; phone is optional.
func (d PassengerDetail) IsComplete() bool {
	if strings.TrimSpace(d.FirstName) == "" {
		return false
	}
	if strings.TrimSpace(d.LastName) == "" {
		return false
	}
	email := strings.TrimSpace(d.Email)
	if email == "" || !strings.Contains(email, "@") {
		return false
	}
	return true
}

// PassengerManifest collects one PassengerDetail per selected seat, keyed
// by seat id. Removing a seat from the selection drops its detail without
// shifting the others.
type PassengerManifest struct {
	details map[string]PassengerDetail
}

// NewPassengerManifest creates an empty manifest
func NewPassengerManifest() *PassengerManifest {
	return &PassengerManifest{details: make(map[string]PassengerDetail)}
}

// Set stores the detail for a seat, stamping the seat id onto the record
func (m *PassengerManifest) Set(seatID string, detail PassengerDetail) {
	detail.SeatNumber = seatID
	m.details[seatID] = detail
}

// Get returns the detail entered for a seat, if any
func (m *PassengerManifest) Get(seatID string) (PassengerDetail, bool) {
	d, ok := m.details[seatID]
	return d, ok
}

// Remove drops the detail for a seat
func (m *PassengerManifest) Remove(seatID string) {
	delete(m.details, seatID)
}

// Len returns the number of entered details
func (m *PassengerManifest) Len() int {
	return len(m.details)
}

// Prune drops details for seats no longer in the selection and returns
// the seat ids that were removed
func (m *PassengerManifest) Prune(selection *SelectionSet) []string {
	var removed []string
	for seatID := range m.details {
		if !selection.Contains(seatID) {
			delete(m.details, seatID)
			removed = append(removed, seatID)
		}
	}
	return removed
}

// IsComplete reports whether every selected seat has a complete detail.
// Incompleteness is reported as a single aggregate outcome - callers
// surface one "incomplete passenger details" failure, not per-field errors.
func (m *PassengerManifest) IsComplete(selection *SelectionSet) bool {
	for _, seatID := range selection.Seats() {
		d, ok := m.details[seatID]
		if !ok || !d.IsComplete() {
			return false
		}
	}
	return true
}

// Ordered returns the details in selection (insertion) order, one per
// selected seat. Seats without a detail yield a zero-valued placeholder.
func (m *PassengerManifest) Ordered(selection *SelectionSet) []PassengerDetail {
	seats := selection.Seats()
	out := make([]PassengerDetail, 0, len(seats))
	for _, seatID := range seats {
		d, ok := m.details[seatID]
		if !ok {
			d = PassengerDetail{SeatNumber: seatID}
		}
		out = append(out, d)
	}
	return out
}
