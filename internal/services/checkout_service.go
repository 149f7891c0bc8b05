package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tesvanthan/ticketbooking/internal/gateway"
	"github.com/tesvanthan/ticketbooking/internal/models"
)

// CheckoutConfig holds the tunables of the checkout flow
type CheckoutConfig struct {
	PaymentExpiry time.Duration // payment deadline after booking creation
	SessionTTL    time.Duration // idle time before an abandoned session is swept
	MaxSeats      int           // hard cap on selectable seats per session
}

// CheckoutSession is one user's journey through the checkout flow. All
// reads and transitions go through the session mutex; the inFlight flag
// additionally serializes backend submissions so that at most one is
// outstanding per session at any moment.
type CheckoutSession struct {
	ID uuid.UUID

	mu       sync.Mutex
	state    models.CheckoutState
	inFlight bool

	userID *uuid.UUID
	device string

	criteria *models.SearchCriteria
	results  []models.RouteOption
	route    *models.RouteOption
	layout   *models.SeatLayout

	selection *models.SelectionSet
	manifest  *models.PassengerManifest

	booking *models.Booking
	payment *PaymentSession

	createdAt time.Time
	updatedAt time.Time
}

// Expirable reports whether the sweeper may remove the session: it is
// terminal, or has been idle longer than the TTL
func (s *CheckoutSession) Expirable(ttl time.Duration, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	return s.state.IsTerminal() || now.Sub(s.updatedAt) > ttl
}

// Release stops any resources the session owns
func (s *CheckoutSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payment != nil {
		s.payment.Cancel()
	}
}

// snapshot builds the external view. Caller must hold the session lock.
func (s *CheckoutSession) snapshot() *models.CheckoutSnapshot {
	snap := &models.CheckoutSnapshot{
		SessionID:     s.ID,
		State:         s.state,
		UserID:        s.userID,
		Criteria:      s.criteria,
		Results:       s.results,
		SelectedRoute: s.route,
		SeatLayout:    s.layout,
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
	if s.booking != nil {
		// Copied so a snapshot handed to a caller stays stable while the
		// session's booking is updated in place
		booking := *s.booking
		snap.Booking = &booking
	}
	if s.selection != nil {
		snap.SelectedSeats = s.selection.Seats()
	}
	if s.manifest != nil && s.selection != nil {
		snap.Passengers = s.manifest.Ordered(s.selection)
	}
	if s.payment != nil {
		snap.Payment = s.payment.Snapshot()
	}
	return snap
}

func (s *CheckoutSession) touch() {
	s.updatedAt = time.Now()
}

// CheckoutService drives checkout sessions through the flow, delegating
// all persistent effects to the ticketing backend
type CheckoutService struct {
	api    gateway.API
	store  *SessionStore
	config CheckoutConfig
	logger *logrus.Logger
}

// NewCheckoutService creates the checkout orchestrator
func NewCheckoutService(api gateway.API, store *SessionStore, config CheckoutConfig, logger *logrus.Logger) *CheckoutService {
	if config.MaxSeats <= 0 {
		config.MaxSeats = 10
	}
	return &CheckoutService{
		api:    api,
		store:  store,
		config: config,
		logger: logger,
	}
}

// ===== SESSION LIFECYCLE =====

// CreateSession starts a new checkout at the search step. Anonymous
// sessions are allowed; authentication is enforced at route selection.
func (s *CheckoutService) CreateSession(userID *uuid.UUID, device string) *models.CheckoutSnapshot {
	now := time.Now()
	session := &CheckoutSession{
		ID:        uuid.New(),
		state:     models.StateSearch,
		userID:    userID,
		device:    device,
		createdAt: now,
		updatedAt: now,
	}
	s.store.Put(session)

	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"device":     device,
		"anonymous":  userID == nil,
	}).Info("Checkout session created")

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.snapshot()
}

// GetSession returns the current view of a session
func (s *CheckoutService) GetSession(id uuid.UUID, userID *uuid.UUID) (*models.CheckoutSnapshot, error) {
	session, err := s.acquire(id, userID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()
	return session.snapshot(), nil
}

// Cancel aborts a session from any non-terminal state and releases its
// payment countdown
func (s *CheckoutService) Cancel(id uuid.UUID, userID *uuid.UUID) (*models.CheckoutSnapshot, error) {
	session, err := s.acquire(id, userID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	if session.inFlight {
		return nil, models.NewConflictError("another request for this session is still in progress")
	}
	if session.state.IsTerminal() {
		return session.snapshot(), nil
	}

	if session.payment != nil {
		session.payment.Cancel()
	}
	session.state = models.StateAborted
	session.touch()

	s.logger.WithField("session_id", session.ID).Info("Checkout session cancelled")
	return session.snapshot(), nil
}

// ===== SEARCH AND ROUTE SELECTION =====

// SubmitSearch validates the criteria, queries the backend for routes and
// moves the session to the results step. Re-searching from the results
// step replaces the previous results.
func (s *CheckoutService) SubmitSearch(id uuid.UUID, userID *uuid.UUID, origin, destination, date string, passengers int, transport models.TransportType) (*models.CheckoutSnapshot, error) {
	criteria, err := models.NewSearchCriteria(origin, destination, date, passengers, transport)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	session, err := s.beginSubmission(id, userID, models.StateSearch, models.StateResults)
	if err != nil {
		return nil, err
	}

	routes, err := s.api.SearchRoutes(criteria)

	session.mu.Lock()
	defer s.endSubmission(session)

	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"session_id": session.ID,
			"error":      err.Error(),
		}).Warn("Route search failed")
		return nil, err
	}

	session.criteria = &criteria
	session.results = routes
	session.route = nil
	session.layout = nil
	session.selection = nil
	session.manifest = nil
	session.state = models.StateResults
	session.touch()

	return session.snapshot(), nil
}

// SelectRoute picks a route from the results, fetches its seat layout and
// moves the session to the seats step. Seat selection and everything after
// it require an authenticated user.
func (s *CheckoutService) SelectRoute(id uuid.UUID, userID *uuid.UUID, routeID string) (*models.CheckoutSnapshot, error) {
	if userID == nil {
		return nil, models.NewAuthRequiredError("please log in to select seats")
	}

	session, err := s.beginSubmission(id, userID, models.StateResults)
	if err != nil {
		return nil, err
	}

	var route *models.RouteOption
	session.mu.Lock()
	for i := range session.results {
		if session.results[i].ID == routeID {
			route = &session.results[i]
			break
		}
	}
	if route == nil {
		defer s.endSubmission(session)
		return nil, models.NewValidationError("selected route is not in the current results")
	}
	date := session.criteria.Date
	session.mu.Unlock()

	layout, err := s.api.GetSeatLayout(routeID, date)

	session.mu.Lock()
	defer s.endSubmission(session)

	if err != nil {
		return nil, err
	}

	session.userID = userID
	session.route = route
	session.layout = layout
	session.selection = models.NewSelectionSet()
	session.manifest = models.NewPassengerManifest()
	session.state = models.StateSeats
	session.touch()

	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"route_id":   routeID,
		"seats":      len(layout.Seats),
	}).Info("Route selected")

	return session.snapshot(), nil
}

// ===== SEAT SELECTION AND PASSENGERS =====

// ToggleSeat applies a seat click. Unavailable seats and clicks past the
// selection cap are ignored rather than rejected; deselecting a seat also
// drops its passenger detail.
func (s *CheckoutService) ToggleSeat(id uuid.UUID, userID *uuid.UUID, seatID string) (*models.CheckoutSnapshot, error) {
	session, err := s.acquire(id, userID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	if err := s.requireState(session, models.StateSeats); err != nil {
		return nil, err
	}

	max := session.criteria.PassengerCount
	if max > s.config.MaxSeats {
		max = s.config.MaxSeats
	}

	outcome := session.selection.Toggle(seatID, session.layout.IsAvailable(seatID), max)
	if outcome == models.ToggleRemoved {
		session.manifest.Remove(seatID)
	}
	if outcome != models.ToggleIgnored {
		session.touch()
	}

	return session.snapshot(), nil
}

// SetPassenger records the passenger detail for a selected seat
func (s *CheckoutService) SetPassenger(id uuid.UUID, userID *uuid.UUID, seatID string, detail models.PassengerDetail) (*models.CheckoutSnapshot, error) {
	session, err := s.acquire(id, userID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	if err := s.requireState(session, models.StateSeats); err != nil {
		return nil, err
	}
	if !session.selection.Contains(seatID) {
		return nil, models.NewValidationError("seat is not selected")
	}

	session.manifest.Set(seatID, detail)
	session.touch()
	return session.snapshot(), nil
}

// ===== BOOKING SUBMISSION =====

// Confirm submits the assembled booking draft to the backend exactly once.
// On a seat conflict the layout is re-fetched, the taken seats are pruned
// from the selection and manifest, and the session stays on the seats step
// for the user to pick replacements.
func (s *CheckoutService) Confirm(id uuid.UUID, userID *uuid.UUID, token string) (*models.CheckoutSnapshot, error) {
	if userID == nil || token == "" {
		return nil, models.NewAuthRequiredError("please log in to book")
	}

	session, err := s.beginSubmission(id, userID, models.StateSeats)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	draft, err := models.NewBookingDraft(session.route.ID, session.criteria.Date, session.selection, session.manifest, session.criteria.PassengerCount)
	if err != nil {
		defer s.endSubmission(session)
		return nil, models.NewValidationError(err.Error())
	}
	session.mu.Unlock()

	booking, err := s.api.CreateBooking(token, draft)

	if err != nil {
		if be, ok := models.AsBookingError(err); ok && be.Kind == models.ErrKindStaleData {
			return s.handleSeatConflict(session, be)
		}
		session.mu.Lock()
		defer s.endSubmission(session)
		return nil, err
	}

	session.mu.Lock()
	defer s.endSubmission(session)

	session.booking = booking
	session.payment = NewPaymentSession(booking.ID, s.config.PaymentExpiry, func() {
		s.expirePayment(session)
	})
	session.payment.Start()
	session.state = models.StatePayment
	session.touch()

	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"booking_id": booking.ID,
		"reference":  booking.Reference,
	}).Info("Booking confirmed, payment window opened")

	return session.snapshot(), nil
}

// handleSeatConflict re-fetches the layout after a stale-seat rejection
// and prunes seats that were taken out from under the user. The stale-data
// error is still returned so the surface can report which seats were lost.
func (s *CheckoutService) handleSeatConflict(session *CheckoutSession, conflict *models.BookingError) (*models.CheckoutSnapshot, error) {
	session.mu.Lock()
	routeID := session.route.ID
	date := session.criteria.Date
	session.mu.Unlock()

	layout, fetchErr := s.api.GetSeatLayout(routeID, date)

	session.mu.Lock()
	defer s.endSubmission(session)

	if fetchErr == nil {
		session.layout = layout
		for _, seatID := range session.selection.Seats() {
			if !layout.IsAvailable(seatID) {
				session.selection.Remove(seatID)
			}
		}
		session.manifest.Prune(session.selection)
	}
	session.touch()

	s.logger.WithFields(logrus.Fields{
		"session_id":  session.ID,
		"taken_seats": conflict.TakenSeats,
	}).Warn("Seat conflict on booking submission")

	return nil, conflict
}

// ===== PAYMENT =====

// SelectPaymentMethod records the chosen payment method
func (s *CheckoutService) SelectPaymentMethod(id uuid.UUID, userID *uuid.UUID, method models.PaymentMethod) (*models.CheckoutSnapshot, error) {
	session, err := s.acquire(id, userID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	if err := s.requireState(session, models.StatePayment); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, models.NewValidationError("unsupported payment method")
	}
	if err := session.payment.SelectMethod(method); err != nil {
		return nil, err
	}

	session.touch()
	return session.snapshot(), nil
}

// SubmitPayment processes the payment for the pending booking exactly
// once. A success stands even if the deadline passed while processing; a
// failure returns the session to method selection with the method kept; a
// failure after the deadline aborts the session.
func (s *CheckoutService) SubmitPayment(id uuid.UUID, userID *uuid.UUID, token string, data models.PaymentData) (*models.CheckoutSnapshot, error) {
	if userID == nil || token == "" {
		return nil, models.NewAuthRequiredError("please log in to pay")
	}

	session, err := s.beginSubmission(id, userID, models.StatePayment)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	payment := session.payment
	bookingID := session.booking.ID
	session.mu.Unlock()

	if err := payment.BeginSubmit(data); err != nil {
		session.mu.Lock()
		defer s.endSubmission(session)
		return nil, err
	}

	cardData := payment.Data()
	result, payErr := s.api.ProcessPayment(token, gateway.PaymentRequest{
		BookingID:     bookingID,
		PaymentMethod: payment.Method(),
		CardDetails:   &cardData,
	})

	expired := payment.CompleteSubmit(result, payErr)

	session.mu.Lock()
	defer s.endSubmission(session)

	switch {
	case payErr == nil:
		session.booking.Status = models.BookingPaid
		session.state = models.StateConfirmation
		session.touch()
		payment.Cancel()

		s.logger.WithFields(logrus.Fields{
			"session_id": session.ID,
			"booking_id": bookingID,
			"reference":  session.booking.Reference,
		}).Info("Payment succeeded, checkout complete")

		return session.snapshot(), nil

	case expired:
		session.state = models.StateAborted
		session.touch()

		s.logger.WithFields(logrus.Fields{
			"session_id": session.ID,
			"booking_id": bookingID,
		}).Warn("Payment failed after deadline, session aborted")

		return nil, models.NewConflictError("payment time expired")

	default:
		session.touch()
		s.logger.WithFields(logrus.Fields{
			"session_id": session.ID,
			"booking_id": bookingID,
			"error":      payErr.Error(),
		}).Warn("Payment attempt failed")
		return nil, payErr
	}
}

// expirePayment is the payment countdown callback. It aborts the session
// if it is still on the payment step.
func (s *CheckoutService) expirePayment(session *CheckoutSession) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.state != models.StatePayment {
		return
	}
	session.state = models.StateAborted
	session.touch()

	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
	}).Info("Payment window expired, session aborted")
}

// ===== NAVIGATION =====

// Back navigates one step backwards. Leaving the payment step discards
// the pending booking and its countdown; the seat selection and passenger
// details survive so the user can resubmit.
func (s *CheckoutService) Back(id uuid.UUID, userID *uuid.UUID) (*models.CheckoutSnapshot, error) {
	session, err := s.acquire(id, userID)
	if err != nil {
		return nil, err
	}
	defer session.mu.Unlock()

	if session.inFlight {
		return nil, models.NewConflictError("another request for this session is still in progress")
	}

	prev, ok := session.state.Predecessor()
	if !ok {
		return nil, models.NewConflictError("cannot go back from this step")
	}

	switch session.state {
	case models.StatePayment:
		session.payment.Cancel()
		session.payment = nil
		session.booking = nil
	case models.StateSeats:
		session.route = nil
		session.layout = nil
		session.selection = nil
		session.manifest = nil
	case models.StateResults:
		session.results = nil
	}

	session.state = prev
	session.touch()
	return session.snapshot(), nil
}

// ===== GUARDS =====

// acquire looks up the session, checks ownership and returns it locked
func (s *CheckoutService) acquire(id uuid.UUID, userID *uuid.UUID) (*CheckoutSession, error) {
	session, ok := s.store.Get(id)
	if !ok {
		return nil, models.NewNotFoundError("checkout session not found")
	}

	session.mu.Lock()
	if session.userID != nil {
		if userID == nil || *userID != *session.userID {
			session.mu.Unlock()
			return nil, models.NewConflictError("session belongs to another user")
		}
	}
	return session, nil
}

// requireState rejects a transition attempted from the wrong step.
// Caller must hold the session lock.
func (s *CheckoutService) requireState(session *CheckoutSession, want ...models.CheckoutState) error {
	for _, w := range want {
		if session.state == w {
			return nil
		}
	}
	if session.state.IsTerminal() {
		return models.NewConflictError("checkout session is closed")
	}
	return models.NewConflictError("operation not allowed in the current step")
}

// beginSubmission locks the session, validates the step and claims the
// in-flight slot, then unlocks so the backend call can run without holding
// the session. The caller must re-lock and defer endSubmission.
func (s *CheckoutService) beginSubmission(id uuid.UUID, userID *uuid.UUID, states ...models.CheckoutState) (*CheckoutSession, error) {
	session, err := s.acquire(id, userID)
	if err != nil {
		return nil, err
	}

	if session.inFlight {
		session.mu.Unlock()
		return nil, models.NewConflictError("another request for this session is still in progress")
	}
	if err := s.requireState(session, states...); err != nil {
		session.mu.Unlock()
		return nil, err
	}

	session.inFlight = true
	session.mu.Unlock()
	return session, nil
}

// endSubmission releases the in-flight slot and the session lock
func (s *CheckoutService) endSubmission(session *CheckoutSession) {
	session.inFlight = false
	session.mu.Unlock()
}
