// Package httpadapter serves a generated site for local preview.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/festival-map/internal/domain"
)

// MapURL is the map page's directory. The file server answers requests for
// index.html with a redirect to it.
var MapURL = "/" + path.Dir(domain.MapPagePath) + "/"

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 30 * time.Second
	idleTimeout  = 60 * time.Second
)

// Server serves the output root together with health, readiness and
// metrics endpoints.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer serves siteDir at / and exposes /healthz, /readyz and /metrics.
// The bare root redirects to the map page.
func NewServer(addr, siteDir string, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /{$}", http.RedirectHandler(MapURL, http.StatusFound))
	mux.Handle("GET /", siteHandler(http.FileServer(http.Dir(siteDir))))

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		logger: logger,
	}
}

// siteHandler disables caching so a rebuilt site shows up on reload, and
// labels GeoJSON documents with their registered media type.
func siteHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		if path.Ext(r.URL.Path) == ".geojson" {
			w.Header().Set("Content-Type", "application/geo+json")
		}
		next.ServeHTTP(w, r)
	})
}

// Start listens until Shutdown. It returns http.ErrServerClosed after a
// graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("preview server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown drains open connections until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// ServeHTTP routes a single request; tests use it without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.srv.Handler.ServeHTTP(w, r)
}
