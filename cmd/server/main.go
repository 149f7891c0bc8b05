package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tesvanthan/ticketbooking/internal/config"
	"github.com/tesvanthan/ticketbooking/internal/gateway"
	"github.com/tesvanthan/ticketbooking/internal/handlers"
	"github.com/tesvanthan/ticketbooking/internal/middleware"
	"github.com/tesvanthan/ticketbooking/internal/services"
	"github.com/tesvanthan/ticketbooking/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Ticket Booking Checkout Service")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	backendAPI := gateway.NewClient(gateway.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, logger)

	sessionStore := services.NewSessionStore()
	checkoutService := services.NewCheckoutService(backendAPI, sessionStore, services.CheckoutConfig{
		PaymentExpiry: time.Duration(cfg.Checkout.PaymentExpirySeconds) * time.Second,
		SessionTTL:    cfg.Checkout.SessionTTL,
		MaxSeats:      cfg.Checkout.MaxSeats,
	}, logger)
	searchService := services.NewSearchService(backendAPI, logger)
	bookingService := services.NewBookingService(backendAPI, logger)

	// Initialize and start the session sweeper
	expirationService := services.NewSessionExpirationService(sessionStore, cfg.Checkout.SessionTTL, logger)
	if err := expirationService.Start(); err != nil {
		logger.Fatalf("Failed to start session expiration service: %v", err)
	}

	logger.Info("Services initialized")

	// Initialize handlers
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, logger)
	searchHandler := handlers.NewSearchHandler(searchService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"version":  version,
			"sessions": sessionStore.Count(),
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Stateless browse endpoints (public)
		v1.POST("/search", searchHandler.Search)
		v1.GET("/destinations/popular", searchHandler.PopularDestinations)
		v1.GET("/suggestions", searchHandler.Suggestions)

		// Checkout session flow. Anonymous users can search and browse
		// results; seat selection onwards requires a valid token.
		checkout := v1.Group("/checkout")
		checkout.Use(middleware.OptionalAuthMiddleware(jwtService))
		{
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
		}

		// Booking listings (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.GET("", bookingHandler.List)
			bookings.GET("/upcoming", bookingHandler.ListUpcoming)
			bookings.GET("/past", bookingHandler.ListPast)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop the session sweeper
	expirationService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		// Log auth presence, never the token itself
		fields["has_auth"] = c.GetHeader("Authorization") != ""

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Request completed")
		case c.Writer.Status() >= 400:
			entry.Warn("Request completed")
		default:
			entry.Info("Request completed")
		}
	}
}
