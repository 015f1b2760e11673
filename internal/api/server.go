// Package api exposes the lookup flows and the record store over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/datastore"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/lookup"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/ratelimit"
	"github.com/bjtill/Vinyl-Record-Collection-Database/internal/record"
)

// Lookup runs the metadata flows behind the search and release endpoints.
type Lookup interface {
	Barcode(ctx context.Context, barcode, token string) (record.Record, error)
	Title(ctx context.Context, query, token string) ([]lookup.Candidate, error)
	Release(ctx context.Context, releaseID int, barcode, token string) (record.Record, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        datastore.Store
	lookup       Lookup
	defaultToken string
	limiter      *ratelimit.Limiter
	staticDir    string
	corsOrigins  []string
	router       *chi.Mux
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultToken sets the Discogs token used when a request carries none.
func WithDefaultToken(token string) Option {
	return func(s *Server) { s.defaultToken = token }
}

// WithLookupLimiter throttles the search and release endpoints.
func WithLookupLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// WithStaticDir serves the browser client from dir at /.
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithLogger sets the logger used for request and error logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store datastore.Store, lookup Lookup, opts ...Option) *Server {
	s := &Server{
		store:       store,
		lookup:      lookup,
		corsOrigins: []string{"*"},
		router:      chi.NewRouter(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.throttleLookups)
			r.Post("/search/barcode", s.handleSearchBarcode)
			r.Post("/search/title", s.handleSearchTitle)
			r.Post("/release/{id}", s.handleGetRelease)
		})

		r.Route("/records", func(r chi.Router) {
			r.Get("/", s.handleListRecords)
			r.Post("/", s.handleCreateRecord)
			r.Get("/{id}", s.handleGetRecord)
			r.Put("/{id}", s.handleUpdateRecord)
			r.Delete("/{id}", s.handleDeleteRecord)
		})

		r.Get("/stats", s.handleStats)
	})

	if s.staticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
	}
}
