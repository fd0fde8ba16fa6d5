// Package server exposes the analysis service over HTTP. Every analysis route
// takes a multipart upload in the "file" field.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ademuri/streaming-history-tools/internal/logging"
	"github.com/ademuri/streaming-history-tools/internal/service"
)

const (
	DefaultLimit          = 30
	DefaultMaxUploadBytes = 64 << 20
)

type Config struct {
	Addr string

	// DefaultLimit applies when a request has no limit parameter.
	DefaultLimit int

	MaxUploadBytes int64

	// CORSOrigins defaults to allowing every origin.
	CORSOrigins []string

	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int
}

type Server struct {
	svc *service.Service
	cfg Config
}

func New(svc *service.Service, cfg Config) *Server {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return &Server{svc: svc, cfg: cfg}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogging)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/analyze", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}
		r.Use(recordMetrics)

		r.Post("/", s.handleSummary)
		s.periodRoutes(r, "/top-songs", s.topSongs)
		s.periodRoutes(r, "/top-artists", s.topArtists)
		s.periodRoutes(r, "/top-albums", s.topAlbums)
		s.periodRoutes(r, "/weekdays", s.weekdays)
		r.Post("/played-songs/date/{date}", s.handlePlayedSongs)
		r.Post("/explore", s.handleExplore)
	})

	return r
}

// periodRoutes registers a query for all time, a year, a month of a year and
// a month of every year.
func (s *Server) periodRoutes(r chi.Router, path string, q periodQuery) {
	h := s.handlePeriod(q)
	r.Post(path, h)
	r.Post(path+"/year/{year}", h)
	r.Post(path+"/year/{year}/month/{month}", h)
	r.Post(path+"/month/{month}", h)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.cfg.Addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logging.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
