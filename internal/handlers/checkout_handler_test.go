package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tesvanthan/ticketbooking/internal/gateway"
	"github.com/tesvanthan/ticketbooking/internal/middleware"
	"github.com/tesvanthan/ticketbooking/internal/models"
	"github.com/tesvanthan/ticketbooking/internal/services"
	"github.com/tesvanthan/ticketbooking/pkg/jwt"
)

// fakeBackend is a canned ticketing backend for handler tests
type fakeBackend struct {
	bookingErr error
}

func (f *fakeBackend) SearchRoutes(c models.SearchCriteria) ([]models.RouteOption, error) {
	return []models.RouteOption{{ID: "route-1", Origin: c.Origin, Destination: c.Destination, Price: 15, Company: "Giant Ibis", AvailableSeats: 30}}, nil
}

func (f *fakeBackend) GetSeatLayout(routeID, date string) (*models.SeatLayout, error) {
	return &models.SeatLayout{RouteID: routeID, Date: date, Seats: []models.Seat{
		{SeatID: "1A", Row: 1, Position: "A", IsAvailable: true},
		{SeatID: "1B", Row: 1, Position: "B", IsAvailable: true},
	}}, nil
}

func (f *fakeBackend) CreateBooking(token string, draft models.BookingDraft) (*models.Booking, error) {
	if f.bookingErr != nil {
		return nil, f.bookingErr
	}
	return &models.Booking{ID: "booking-1", Reference: "BMB123456", Status: models.BookingPendingPayment, Seats: draft.SelectedSeats}, nil
}

func (f *fakeBackend) ProcessPayment(token string, req gateway.PaymentRequest) (*models.PaymentResult, error) {
	return &models.PaymentResult{Status: "success", BookingID: req.BookingID, TransactionID: "tx-1"}, nil
}

func (f *fakeBackend) ListBookings(token, scope string) ([]models.Booking, error) {
	return []models.Booking{{ID: "booking-1", Reference: "BMB123456", Status: models.BookingPaid}}, nil
}

func (f *fakeBackend) PopularDestinations() ([]models.Destination, error) {
	return []models.Destination{{Name: "Siem Reap", Country: "Cambodia"}}, nil
}

func (f *fakeBackend) RouteSuggestions(q string) ([]string, error) {
	return []string{"Siem Reap"}, nil
}

type testEnv struct {
	router *gin.Engine
	token  string
}

func setupEnv(t *testing.T, backend gateway.API) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwtService := jwt.NewService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	token, err := jwtService.GenerateAccessToken(uuid.New(), "sok@example.com", []string{"user"})
	require.NoError(t, err)

	store := services.NewSessionStore()
	checkoutService := services.NewCheckoutService(backend, store, services.CheckoutConfig{
		PaymentExpiry: 8 * time.Minute,
		SessionTTL:    time.Hour,
		MaxSeats:      10,
	}, logger)

	checkoutHandler := NewCheckoutHandler(checkoutService, logger)
	searchHandler := NewSearchHandler(services.NewSearchService(backend, logger), logger)
	bookingHandler := NewBookingHandler(services.NewBookingService(backend, logger), logger)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.POST("/search", searchHandler.Search)
	v1.GET("/destinations/popular", searchHandler.PopularDestinations)
	v1.GET("/suggestions", searchHandler.Suggestions)

	checkout := v1.Group("/checkout")
	checkout.Use(middleware.OptionalAuthMiddleware(jwtService))
	checkout.POST("", checkoutHandler.CreateSession)
	checkout.GET("/:session_id", checkoutHandler.GetSession)
	checkout.POST("/:session_id/search", checkoutHandler.SubmitSearch)
	checkout.POST("/:session_id/route", checkoutHandler.SelectRoute)
	checkout.POST("/:session_id/seats/toggle", checkoutHandler.ToggleSeat)
	checkout.PUT("/:session_id/passengers/:seat_id", checkoutHandler.SetPassenger)
	checkout.POST("/:session_id/confirm", checkoutHandler.Confirm)
	checkout.POST("/:session_id/payment/method", checkoutHandler.SelectPaymentMethod)
	checkout.POST("/:session_id/payment", checkoutHandler.SubmitPayment)
	checkout.POST("/:session_id/back", checkoutHandler.Back)
	checkout.POST("/:session_id/cancel", checkoutHandler.Cancel)

	bookings := v1.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtService))
	bookings.GET("", bookingHandler.List)

	return testEnv{router: router, token: token}
}

func (e testEnv) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) models.CheckoutSnapshot {
	t.Helper()
	var snap models.CheckoutSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	env := setupEnv(t, &fakeBackend{})

	// Create session
	w := env.do(t, http.MethodPost, "/api/v1/checkout", nil, true)
	require.Equal(t, http.StatusCreated, w.Code)
	snap := decodeSnapshot(t, w)
	base := "/api/v1/checkout/" + snap.SessionID.String()
	assert.Equal(t, models.StateSearch, snap.State)

	// Search
	w = env.do(t, http.MethodPost, base+"/search", gin.H{
		"origin": "Phnom Penh", "destination": "Siem Reap", "date": "2026-09-15", "passengers": 2,
	}, true)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeSnapshot(t, w)
	assert.Equal(t, models.StateResults, snap.State)
	require.NotEmpty(t, snap.Results)

	// Select route
	w = env.do(t, http.MethodPost, base+"/route", gin.H{"route_id": "route-1"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeSnapshot(t, w)
	assert.Equal(t, models.StateSeats, snap.State)

	// Pick seats and enter passengers
	w = env.do(t, http.MethodPost, base+"/seats/toggle", gin.H{"seat_id": "1A"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, base+"/seats/toggle", gin.H{"seat_id": "1B"}, true)
	require.Equal(t, http.StatusOK, w.Code)

	passenger := gin.H{"first_name": "Sok", "last_name": "Dara", "email": "sok@example.com"}
	w = env.do(t, http.MethodPut, base+"/passengers/1A", passenger, true)
	require.Equal(t, http.StatusOK, w.Code)
	passenger = gin.H{"first_name": "Chan", "last_name": "Thy", "email": "chan@example.com"}
	w = env.do(t, http.MethodPut, base+"/passengers/1B", passenger, true)
	require.Equal(t, http.StatusOK, w.Code)

	// Confirm booking
	w = env.do(t, http.MethodPost, base+"/confirm", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeSnapshot(t, w)
	assert.Equal(t, models.StatePayment, snap.State)
	require.NotNil(t, snap.Booking)
	assert.Equal(t, "BMB123456", snap.Booking.Reference)

	// Pay
	w = env.do(t, http.MethodPost, base+"/payment/method", gin.H{"method": "credit_card"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, base+"/payment", gin.H{
		"card_number": "4111111111111111", "expiry_date": "12/27", "cvv": "123", "card_holder_name": "SOK DARA",
	}, true)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeSnapshot(t, w)
	assert.Equal(t, models.StateConfirmation, snap.State)
	assert.Equal(t, models.BookingPaid, snap.Booking.Status)
}

func TestSelectRouteWithoutAuthReturns401(t *testing.T) {
	env := setupEnv(t, &fakeBackend{})

	w := env.do(t, http.MethodPost, "/api/v1/checkout", nil, false)
	require.Equal(t, http.StatusCreated, w.Code)
	snap := decodeSnapshot(t, w)
	base := "/api/v1/checkout/" + snap.SessionID.String()

	w = env.do(t, http.MethodPost, base+"/search", gin.H{
		"origin": "Phnom Penh", "destination": "Siem Reap", "date": "2026-09-15", "passengers": 1,
	}, false)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, base+"/route", gin.H{"route_id": "route-1"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSeatConflictReturns409WithTakenSeats(t *testing.T) {
	backend := &fakeBackend{bookingErr: models.NewStaleDataError("seats no longer available", []string{"1B"})}
	env := setupEnv(t, backend)

	w := env.do(t, http.MethodPost, "/api/v1/checkout", nil, true)
	snap := decodeSnapshot(t, w)
	base := "/api/v1/checkout/" + snap.SessionID.String()

	env.do(t, http.MethodPost, base+"/search", gin.H{
		"origin": "Phnom Penh", "destination": "Siem Reap", "date": "2026-09-15", "passengers": 2,
	}, true)
	env.do(t, http.MethodPost, base+"/route", gin.H{"route_id": "route-1"}, true)
	env.do(t, http.MethodPost, base+"/seats/toggle", gin.H{"seat_id": "1A"}, true)
	env.do(t, http.MethodPost, base+"/seats/toggle", gin.H{"seat_id": "1B"}, true)
	env.do(t, http.MethodPut, base+"/passengers/1A", gin.H{"first_name": "Sok", "last_name": "Dara", "email": "sok@example.com"}, true)
	env.do(t, http.MethodPut, base+"/passengers/1B", gin.H{"first_name": "Chan", "last_name": "Thy", "email": "chan@example.com"}, true)

	w = env.do(t, http.MethodPost, base+"/confirm", nil, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "stale_data", body["kind"])
	assert.Contains(t, body, "taken_seats")
}

func TestInvalidSessionIDReturns400(t *testing.T) {
	env := setupEnv(t, &fakeBackend{})
	w := env.do(t, http.MethodGet, "/api/v1/checkout/not-a-uuid", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownSessionReturns404(t *testing.T) {
	env := setupEnv(t, &fakeBackend{})
	w := env.do(t, http.MethodGet, "/api/v1/checkout/"+uuid.NewString(), nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBrowseEndpoints(t *testing.T) {
	env := setupEnv(t, &fakeBackend{})

	w := env.do(t, http.MethodPost, "/api/v1/search", gin.H{
		"origin": "Phnom Penh", "destination": "Siem Reap", "date": "2026-09-15", "passengers": 1,
	}, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "route-1")

	w = env.do(t, http.MethodGet, "/api/v1/destinations/popular", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Siem Reap")

	w = env.do(t, http.MethodGet, "/api/v1/suggestions?q=Siem", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Siem Reap")
}

func TestBookingListRequiresAuth(t *testing.T) {
	env := setupEnv(t, &fakeBackend{})

	w := env.do(t, http.MethodGet, "/api/v1/bookings", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/bookings", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BMB123456")
}
