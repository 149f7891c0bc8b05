package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tesvanthan/ticketbooking/internal/models"
	"github.com/tesvanthan/ticketbooking/internal/services"
)

// SearchHandler exposes the stateless browse endpoints
type SearchHandler struct {
	searchService *services.SearchService
	logger        *logrus.Logger
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService *services.SearchService, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// Search runs a one-off route search - POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	transport := models.TransportType(req.TransportType)
	if req.TransportType == "" {
		transport = models.TransportBus
	}

	routes, err := h.searchService.Search(req.Origin, req.Destination, req.Date, req.Passengers, transport)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"routes": routes,
		"count":  len(routes),
	})
}

// PopularDestinations returns the landing-page destinations - GET /api/v1/destinations/popular
func (h *SearchHandler) PopularDestinations(c *gin.Context) {
	destinations, err := h.searchService.PopularDestinations()
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"destinations": destinations})
}

// Suggestions returns autocomplete matches - GET /api/v1/suggestions?q=
func (h *SearchHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.searchService.Suggestions(c.Query("q"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
