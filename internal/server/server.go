// Package server is a mock CAM backend. It serves the CAM, CMDB and IAM
// envelope conventions from in-memory fixtures, accepts remote log batches
// and can inject faults, so clients can be exercised without the real
// services.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/Havens-blog/e-cam-web/internal/telemetry"
)

// DefaultAddr is where the mock listens unless configured otherwise.
const DefaultAddr = "127.0.0.1:8080"

// Options tunes the mock backend.
type Options struct {
	Addr string

	// Tokens, when set, are the only accepted bearer tokens.
	Tokens []string

	// RateLimit caps requests per second to the CAM routes. Zero disables it.
	RateLimit rate.Limit
	Burst     int

	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
}

// Server is the mock backend.
type Server struct {
	Router    *chi.Mux
	Addr      string
	Fixtures  *Fixtures
	Collector *Collector
	Faults    *Faults

	logger *slog.Logger
	srv    *http.Server
}

// New builds the router. Call Start to listen, or mount Router in an
// httptest server.
func New(logger *slog.Logger, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	s := &Server{
		Router:    chi.NewRouter(),
		Addr:      opts.Addr,
		Fixtures:  NewFixtures(),
		Collector: &Collector{},
		Faults:    newFaults(),
		logger:    logger,
	}
	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	r := s.Router
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(opts.Timeout))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return telemetry.Handler(next, "cam-mock")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/logs", s.Collector)

		r.Route("/cam", func(r chi.Router) {
			if len(opts.Tokens) > 0 {
				r.Use(AuthMiddleware(opts.Tokens))
			}
			if opts.RateLimit > 0 {
				burst := max(opts.Burst, 1)
				r.Use(RateLimitMiddleware(rate.NewLimiter(opts.RateLimit, burst)))
			}
			r.Use(s.Faults.Middleware)

			s.camRoutes(r)
			s.cmdbRoutes(r)
			r.Route("/iam", s.iamRoutes)
		})
	})

	return s
}

// Start listens on Addr until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting mock backend", slog.String("addr", s.Addr))
	return ignoreClosed(s.srv.ListenAndServe())
}

// Serve accepts connections on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("starting mock backend", slog.String("addr", l.Addr().String()))
	return ignoreClosed(s.srv.Serve(l))
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
