// Package server exposes detection over HTTP. This is the caller side of
// the detect package: it owns caching and persistence, translates results
// for clients, and never reaches into the detector's internals.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brownzinoart/weready/internal/data/cache"
	"github.com/brownzinoart/weready/internal/data/history"
	"github.com/brownzinoart/weready/internal/detect"
	"github.com/brownzinoart/weready/internal/shared/util"
)

// DetectService is the single inbound operation this server needs.
type DetectService interface {
	Detect(ctx context.Context, source string, lang detect.Language) (*detect.Result, error)
}

type Server struct {
	service  DetectService
	cache    *cache.Cache   // optional
	store    *history.Store // optional
	limiters *util.LimiterRegistry
	server   *http.Server
}

func New(addr string, service DetectService, resultCache *cache.Cache, store *history.Store) *Server {
	s := &Server{
		service:  service,
		cache:    resultCache,
		store:    store,
		limiters: util.NewLimiterRegistry(20, 40),
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/detect", s.handleDetect)
		r.Get("/reports", s.handleReports)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", s.handleHealth)

	return r
}

// rateLimit applies a per-client token bucket keyed on the remote IP.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiters.Get(host).Allow(1) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Start() error {
	slog.Info("api server starting", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
