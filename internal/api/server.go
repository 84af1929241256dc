// Package api serves the bookkeeping operations over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cleared-dev/hgb/internal/accounts"
	"github.com/cleared-dev/hgb/internal/bilanz"
	"github.com/cleared-dev/hgb/internal/metrics"
	"github.com/cleared-dev/hgb/internal/posting"
)

const shutdownTimeout = 5 * time.Second

// Options wires a Server. Accounts, Posting and Bilanz are required.
type Options struct {
	Accounts       *accounts.Service
	Posting        *posting.Processor
	Bilanz         *bilanz.Aggregator
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer // serves /metrics when set
	AllowedOrigins []string
	Version        string

	// Persist runs after every successful mutation, e.g. to rewrite the
	// accounts CSV.
	Persist func(ctx context.Context) error
}

// Server is the HTTP front end.
type Server struct {
	accounts *accounts.Service
	posting  *posting.Processor
	bilanz   *bilanz.Aggregator
	log      *zap.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	origins  []string
	version  string
	persist  func(ctx context.Context) error
}

// New creates a Server.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		accounts: opts.Accounts,
		posting:  opts.Posting,
		bilanz:   opts.Bilanz,
		log:      log,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		origins:  origins,
		version:  opts.Version,
		persist:  opts.Persist,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", s.handleCreateAccount)
			r.Get("/", s.handleListAccounts)

			r.Post("/transaction", s.handleTransaction)
			r.Post("/transaction/preview", s.handlePreview)

			r.Get("/standard/search", s.handleSearchStandard)
			r.Post("/standard/starter-pack", s.handleStarterPack)
			r.Get("/standard/{number}", s.handleGetStandard)
			r.Post("/standard/{number}", s.handleCreateStandard)

			r.Get("/{number}", s.handleGetAccount)
			r.Get("/{number}/balance", s.handleBalance)
			r.Post("/{number}/debit", s.handleDebit)
			r.Post("/{number}/credit", s.handleCredit)
		})

		r.Route("/bilanz", func(r chi.Router) {
			r.Get("/", s.handleBilanz)
			r.Get("/validate", s.handleValidate)
			r.Get("/summary", s.handleSummary)
			r.Get("/account/{number}/resolution", s.handleResolution)
		})

		r.Get("/categories", s.handleCategories)
	})
	return r
}

// observe logs each request and records its latency by route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		s.metrics.ObserveRequest(route, status, d)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", d),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
