package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tesvanthan/ticketbooking/internal/models"
)

// API is the surface of the remote ticketing backend consumed by the
// checkout flow. All user-scoped calls carry the caller's bearer token.
// Every method performs exactly one HTTP call - retries are always an
// explicit user action upstream.
type API interface {
	SearchRoutes(criteria models.SearchCriteria) ([]models.RouteOption, error)
	GetSeatLayout(routeID, date string) (*models.SeatLayout, error)
	CreateBooking(token string, draft models.BookingDraft) (*models.Booking, error)
	ProcessPayment(token string, req PaymentRequest) (*models.PaymentResult, error)
	ListBookings(token, scope string) ([]models.Booking, error)
	PopularDestinations() ([]models.Destination, error)
	RouteSuggestions(query string) ([]string, error)
}

// Config holds the backend connection settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks JSON over HTTP to the ticketing backend
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// NewClient creates a backend API client
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// PaymentRequest is the payload for the backend payment endpoint
type PaymentRequest struct {
	BookingID     string               `json:"booking_id"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	CardDetails   *models.PaymentData  `json:"card_details,omitempty"`
}

// errorBody covers the error shapes the backend returns
type errorBody struct {
	Detail     string   `json:"detail"`
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	TakenSeats []string `json:"taken_seats"`
}

func (b errorBody) text(fallback string) string {
	switch {
	case b.Detail != "":
		return b.Detail
	case b.Message != "":
		return b.Message
	case b.Error != "":
		return b.Error
	}
	return fallback
}

// SearchRoutes posts the search criteria and returns matching routes
func (c *Client) SearchRoutes(criteria models.SearchCriteria) ([]models.RouteOption, error) {
	var routes []models.RouteOption
	if err := c.do(http.MethodPost, "/search", "", criteria, &routes); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"origin":      criteria.Origin,
		"destination": criteria.Destination,
		"date":        criteria.Date,
		"results":     len(routes),
	}).Debug("Route search completed")

	return routes, nil
}

// GetSeatLayout fetches the seat inventory for a route on a date
func (c *Client) GetSeatLayout(routeID, date string) (*models.SeatLayout, error) {
	path := fmt.Sprintf("/seats/%s?date=%s", url.PathEscape(routeID), url.QueryEscape(date))

	var payload struct {
		RouteID    string        `json:"route_id"`
		SeatLayout []models.Seat `json:"seat_layout"`
	}
	if err := c.do(http.MethodGet, path, "", nil, &payload); err != nil {
		return nil, err
	}

	return &models.SeatLayout{
		RouteID: routeID,
		Date:    date,
		Seats:   payload.SeatLayout,
	}, nil
}

// CreateBooking submits a booking draft. Seat conflicts map to a
// stale-data error carrying the taken seat ids.
func (c *Client) CreateBooking(token string, draft models.BookingDraft) (*models.Booking, error) {
	var booking models.Booking
	if err := c.do(http.MethodPost, "/bookings", token, draft, &booking); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"reference":  booking.Reference,
		"route_id":   draft.RouteID,
		"seats":      draft.SelectedSeats,
	}).Info("Booking created")

	return &booking, nil
}

// ProcessPayment submits a payment for a booking. A backend decline is
// reported as a payment error, not a transport failure.
func (c *Client) ProcessPayment(token string, req PaymentRequest) (*models.PaymentResult, error) {
	var result models.PaymentResult
	if err := c.do(http.MethodPost, "/payments/process", token, req, &result); err != nil {
		return nil, err
	}

	if !result.Succeeded() {
		return nil, models.NewPaymentDeclinedError("payment was declined, please try again")
	}

	c.logger.WithFields(logrus.Fields{
		"booking_id":     req.BookingID,
		"method":         req.PaymentMethod,
		"transaction_id": result.TransactionID,
	}).Info("Payment processed")

	return &result, nil
}

// ListBookings returns the user's bookings. Scope is "", "upcoming" or "past".
func (c *Client) ListBookings(token, scope string) ([]models.Booking, error) {
	path := "/bookings"
	if scope != "" {
		path += "/" + url.PathEscape(scope)
	}

	var bookings []models.Booking
	if err := c.do(http.MethodGet, path, token, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// PopularDestinations returns the landing-page destination list
func (c *Client) PopularDestinations() ([]models.Destination, error) {
	var payload struct {
		Destinations []models.Destination `json:"destinations"`
	}
	if err := c.do(http.MethodGet, "/destinations/popular", "", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Destinations, nil
}

// RouteSuggestions returns autocomplete suggestions for a partial query
func (c *Client) RouteSuggestions(query string) ([]string, error) {
	var payload struct {
		Suggestions []string `json:"suggestions"`
	}
	path := "/suggestions?q=" + url.QueryEscape(query)
	if err := c.do(http.MethodGet, path, "", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Suggestions, nil
}

// do performs a single JSON request and decodes the response into out.
// Failure classification follows the checkout error taxonomy.
func (c *Client) do(method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.NewNetworkError("backend is unreachable, please try again", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.NewNetworkError("failed to read backend response", err)
	}

	if resp.StatusCode >= 400 {
		return c.classify(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return models.NewNetworkError("failed to parse backend response", err)
		}
	}
	return nil
}

// classify maps backend HTTP failures onto the checkout error taxonomy
func (c *Client) classify(status int, data []byte) error {
	var body errorBody
	// Best effort - an unparsable error body falls back to status text
	_ = json.Unmarshal(data, &body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return models.NewAuthRequiredError(body.text("authentication required"))
	case status == http.StatusConflict:
		return models.NewStaleDataError(body.text("selected seats are no longer available"), body.TakenSeats)
	case status == http.StatusPaymentRequired:
		return models.NewPaymentDeclinedError(body.text("payment was declined"))
	case status == http.StatusNotFound:
		return models.NewNotFoundError(body.text("resource not found"))
	case status >= 500:
		return models.NewNetworkError(body.text(fmt.Sprintf("backend error (status %d)", status)), nil)
	default:
		msg := body.text(fmt.Sprintf("request rejected (status %d)", status))
		// The sample backend signals taken seats with a 400 as well
		if len(body.TakenSeats) > 0 || strings.Contains(strings.ToLower(msg), "no longer available") {
			return models.NewStaleDataError(msg, body.TakenSeats)
		}
		return models.NewValidationError(msg)
	}
}
