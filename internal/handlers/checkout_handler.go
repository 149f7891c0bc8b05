package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tesvanthan/ticketbooking/internal/middleware"
	"github.com/tesvanthan/ticketbooking/internal/models"
	"github.com/tesvanthan/ticketbooking/internal/services"
	"github.com/tesvanthan/ticketbooking/internal/utils"
	"github.com/tesvanthan/ticketbooking/pkg/validator"
)

// CheckoutHandler exposes the checkout session flow over HTTP
type CheckoutHandler struct {
	checkoutService *services.CheckoutService
	contacts        *validator.ContactValidator
	logger          *logrus.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *services.CheckoutService, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		contacts:        validator.NewContactValidator(),
		logger:          logger,
	}
}

// statusForError maps the checkout error taxonomy onto HTTP statuses
func statusForError(err error) int {
	switch models.KindOf(err) {
	case models.ErrKindValidation:
		return http.StatusBadRequest
	case models.ErrKindAuthRequired:
		return http.StatusUnauthorized
	case models.ErrKindPaymentDeclined:
		return http.StatusPaymentRequired
	case models.ErrKindNotFound:
		return http.StatusNotFound
	case models.ErrKindStaleData, models.ErrKindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// respondError renders a classified failure. Stale-seat conflicts carry
// the taken seat ids so the client can highlight them.
func (h *CheckoutHandler) respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if be, ok := models.AsBookingError(err); ok {
		body["kind"] = string(be.Kind)
		if len(be.TakenSeats) > 0 {
			body["taken_seats"] = be.TakenSeats
		}
	}
	c.JSON(statusForError(err), body)
}

// sessionID parses the session id path parameter
func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return uuid.Nil, false
	}
	return id, true
}

// ============================================================================
// SESSION LIFECYCLE - POST /api/v1/checkout, GET/POST /api/v1/checkout/:session_id/...
// ============================================================================

// CreateSession starts a new checkout session at the search step
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	device := utils.ParseUserAgent(c.GetHeader("User-Agent"))
	snapshot := h.checkoutService.CreateSession(middleware.GetUserID(c), device.Summary())
	c.JSON(http.StatusCreated, snapshot)
}

// GetSession returns the current session snapshot
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	snapshot, err := h.checkoutService.GetSession(id, middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Cancel aborts the session
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	snapshot, err := h.checkoutService.Cancel(id, middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Back navigates one step backwards in the flow
func (h *CheckoutHandler) Back(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	snapshot, err := h.checkoutService.Back(id, middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ============================================================================
// SEARCH AND ROUTE SELECTION
// ============================================================================

// SearchRequest is the payload for the session search step
type SearchRequest struct {
	Origin        string `json:"origin" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	Date          string `json:"date" binding:"required"`
	Passengers    int    `json:"passengers" binding:"required,min=1"`
	TransportType string `json:"transport_type"`
}

// SubmitSearch runs the search step of a session
func (h *CheckoutHandler) SubmitSearch(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	transport := models.TransportType(req.TransportType)
	if req.TransportType == "" {
		transport = models.TransportBus
	}

	snapshot, err := h.checkoutService.SubmitSearch(id, middleware.GetUserID(c), req.Origin, req.Destination, req.Date, req.Passengers, transport)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SelectRouteRequest picks one of the search results
type SelectRouteRequest struct {
	RouteID string `json:"route_id" binding:"required"`
}

// SelectRoute selects a route and enters the seat selection step
func (h *CheckoutHandler) SelectRoute(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req SelectRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	snapshot, err := h.checkoutService.SelectRoute(id, middleware.GetUserID(c), req.RouteID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ============================================================================
// SEATS AND PASSENGERS
// ============================================================================

// ToggleSeatRequest is a single seat click
type ToggleSeatRequest struct {
	SeatID string `json:"seat_id" binding:"required"`
}

// ToggleSeat selects or deselects a seat
func (h *CheckoutHandler) ToggleSeat(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req ToggleSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	snapshot, err := h.checkoutService.ToggleSeat(id, middleware.GetUserID(c), req.SeatID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// PassengerRequest is the per-seat passenger form payload
type PassengerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone"`
}

// SetPassenger records the passenger details for a selected seat
func (h *CheckoutHandler) SetPassenger(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	seatID := c.Param("seat_id")
	if seatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seat id is required"})
		return
	}

	var req PassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	email, err := h.contacts.ValidateEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	phone, err := h.contacts.ValidatePhone(req.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.checkoutService.SetPassenger(id, middleware.GetUserID(c), seatID, models.PassengerDetail{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Phone:     phone,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ============================================================================
// BOOKING CONFIRMATION AND PAYMENT
// ============================================================================

// Confirm submits the booking draft to the ticketing backend
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	snapshot, err := h.checkoutService.Confirm(id, middleware.GetUserID(c), middleware.GetBearerToken(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// PaymentMethodRequest picks the payment method
type PaymentMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

// SelectPaymentMethod records the chosen payment method
func (h *CheckoutHandler) SelectPaymentMethod(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	snapshot, err := h.checkoutService.SelectPaymentMethod(id, middleware.GetUserID(c), models.PaymentMethod(req.Method))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// PaymentRequest carries the payment details for submission
type PaymentRequest struct {
	CardNumber     string `json:"card_number"`
	ExpiryDate     string `json:"expiry_date"`
	CVV            string `json:"cvv"`
	CardHolderName string `json:"card_holder_name"`
}

// SubmitPayment processes the payment for the pending booking
func (h *CheckoutHandler) SubmitPayment(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	snapshot, err := h.checkoutService.SubmitPayment(id, middleware.GetUserID(c), middleware.GetBearerToken(c), models.PaymentData{
		CardNumber:     req.CardNumber,
		ExpiryDate:     req.ExpiryDate,
		CVV:            req.CVV,
		CardHolderName: req.CardHolderName,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
