package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Services bundles the business operations the HTTP API exposes.
type Services struct {
	Bookings domain.BookingService
	Items    domain.ItemService
	Requests domain.RequestService
	Users    domain.UserService
}

// Pinger reports whether a dependency is ready to serve traffic.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HTTPServer exposes the ShareIt JSON API.
type HTTPServer struct {
	cfg       *config.Config
	svc       Services
	limiter   domain.RateLimiter
	readiness Pinger
	logger    *zerolog.Logger
	router    chi.Router
	server    *http.Server
}

// NewHTTPServer wires the router. limiter and readiness may be nil.
func NewHTTPServer(cfg *config.Config, svc Services, limiter domain.RateLimiter, readiness Pinger, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:       cfg,
		svc:       svc,
		limiter:   limiter,
		readiness: readiness,
		logger:    logging.Component(logger, "http"),
	}
	srv.router = srv.routes()

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadHeaderTimeoutMs) * time.Millisecond,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutMs) * time.Millisecond,
	}

	return srv
}

func (s *HTTPServer) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(s.recoverMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", s.handleCreateBooking)
			r.Get("/", s.handleBookingsByBooker)
			r.Get("/owner", s.handleBookingsByOwner)
			r.Get("/{bookingId}", s.handleGetBooking)
			r.Patch("/{bookingId}", s.handleApproveBooking)
		})

		r.Route("/items", func(r chi.Router) {
			r.Post("/", s.handleCreateItem)
			r.Get("/", s.handleItemsByOwner)
			r.Get("/search", s.handleSearchItems)
			r.Get("/{itemId}", s.handleGetItem)
			r.Patch("/{itemId}", s.handleUpdateItem)
			r.Post("/{itemId}/comment", s.handleAddComment)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", s.handleCreateRequest)
			r.Get("/", s.handleRequestsByRequestor)
			r.Get("/all", s.handleAllRequests)
			r.Get("/{requestId}", s.handleGetRequest)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.handleCreateUser)
			r.Get("/", s.handleGetUsers)
			r.Get("/{userId}", s.handleGetUser)
			r.Patch("/{userId}", s.handleUpdateUser)
			r.Delete("/{userId}", s.handleDeleteUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Handler returns the root handler, mainly for httptest.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readiness != nil {
		if err := s.readiness.PingContext(r.Context()); err != nil {
			logging.FromContext(r.Context(), s.logger).Error().Err(err).Msg("readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
