// Package server provides the HTTP front-end for snfront: the results page, the redirect
// endpoint and the JSON API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/snfront/internal/config"
	"github.com/hyperjump/snfront/internal/search"
	"github.com/hyperjump/snfront/internal/sites"
	"github.com/hyperjump/snfront/internal/storage"
)

// Info describes the wiring reported by the status endpoint.
type Info struct {
	APIBaseURL   string
	CacheBackend string
	Version      string
}

// Server is the HTTP server for the snfront front-end.
type Server struct {
	service  *search.Service
	sites    *sites.Registry
	queryLog storage.QueryLog
	config   *config.ServerConfig
	info     Info
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. queryLog may be nil.
func NewServer(
	service *search.Service,
	registry *sites.Registry,
	queryLog storage.QueryLog,
	cfg *config.ServerConfig,
	info Info,
	logger *zap.Logger,
) *Server {
	return &Server{
		service:  service,
		sites:    registry,
		queryLog: queryLog,
		config:   cfg,
		info:     info,
		logger:   logger,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Route("/sn/{site}", func(r chi.Router) {
		r.Get("/", s.handlePage)
		r.Get("/go", s.handleGo)
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sn/{site}/search", s.handleSearch)
		r.Get("/sn/{site}/suggest", s.handleSuggest)
		r.Get("/sn/{site}/chat", s.handleChat)
		r.Get("/sites", s.handleSites)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
