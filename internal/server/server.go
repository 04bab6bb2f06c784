// Package server exposes batch validation and run history over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hakim/domainvet/internal/logger"
	"github.com/hakim/domainvet/internal/models"
	"github.com/hakim/domainvet/internal/pipeline"
)

// DefaultMaxDomains caps the size of a single /v1/validate request.
const DefaultMaxDomains = 1000

// Store is the run-history contract used by the handlers.
type Store interface {
	pipeline.StoreInterface
	GetRun(id string) (*models.RunMeta, error)
	ListRuns(inputFile string) ([]*models.RunMeta, error)
	GetResults(runID string) ([]models.ValidationResult, error)
}

// Deps carries everything the handlers need.
type Deps struct {
	Validator pipeline.Validator

	// Store may be nil; history endpoints then answer 503.
	Store Store

	Profile    string
	Batch      pipeline.BatchConfig
	Notify     *pipeline.NotifyConfig
	MaxDomains int
	Logger     logger.Logger
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// New builds the HTTP server (router, middlewares, route registration).
func New(addr string, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	if d.MaxDomains <= 0 {
		d.MaxDomains = DefaultMaxDomains
	}

	s := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{http: s, logger: d.Logger}
}

// NewRouter registers every route on a fresh chi router.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	if d.MaxDomains <= 0 {
		d.MaxDomains = DefaultMaxDomains
	}
	h := &handlers{deps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLog(d.Logger))

	r.Get("/healthz", h.healthz)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", h.validate)
		r.Get("/runs", h.listRuns)
		r.Get("/runs/{id}", h.getRun)
	})

	return r
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.http.Shutdown(ctx)
}
