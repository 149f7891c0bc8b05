package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tesvanthan/ticketbooking/internal/middleware"
	"github.com/tesvanthan/ticketbooking/internal/services"
)

// BookingHandler exposes the authenticated booking listings
type BookingHandler struct {
	bookingService *services.BookingService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// List returns all of the caller's bookings - GET /api/v1/bookings
func (h *BookingHandler) List(c *gin.Context) {
	h.list(c, services.ScopeAll)
}

// ListUpcoming returns bookings with a future travel date - GET /api/v1/bookings/upcoming
func (h *BookingHandler) ListUpcoming(c *gin.Context) {
	h.list(c, services.ScopeUpcoming)
}

// ListPast returns bookings already travelled - GET /api/v1/bookings/past
func (h *BookingHandler) ListPast(c *gin.Context) {
	h.list(c, services.ScopePast)
}

func (h *BookingHandler) list(c *gin.Context, scope string) {
	token := middleware.GetBearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookings, err := h.bookingService.List(token, scope)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}
