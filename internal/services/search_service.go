package services

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tesvanthan/ticketbooking/internal/gateway"
	"github.com/tesvanthan/ticketbooking/internal/models"
)

// SearchService serves the stateless browse endpoints that do not belong
// to a checkout session: one-off route searches, the popular destination
// widgets and origin/destination autocomplete
type SearchService struct {
	api    gateway.API
	logger *logrus.Logger
}

// NewSearchService creates the browse service
func NewSearchService(api gateway.API, logger *logrus.Logger) *SearchService {
	return &SearchService{api: api, logger: logger}
}

// Search runs a one-off route search without touching any session
func (s *SearchService) Search(origin, destination, date string, passengers int, transport models.TransportType) ([]models.RouteOption, error) {
	criteria, err := models.NewSearchCriteria(origin, destination, date, passengers, transport)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.api.SearchRoutes(criteria)
}

// PopularDestinations returns the landing-page destination list
func (s *SearchService) PopularDestinations() ([]models.Destination, error) {
	return s.api.PopularDestinations()
}

// Suggestions returns autocomplete matches for a partial place name.
// Queries shorter than two characters return nothing rather than hitting
// the backend.
func (s *SearchService) Suggestions(query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []string{}, nil
	}
	return s.api.RouteSuggestions(query)
}
