// Package httpapi exposes the query adapter to the dashboard over HTTP.
// Every data endpoint returns a JSON envelope with an explicit status;
// internal query failures become an empty payload with status "failed" and
// HTTP 200, matching the adapter's never-propagate policy.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/obs-infancia/sinanetl/internal/query"
)

// Server wires the dashboard endpoints to a query adapter.
type Server struct {
	adapter *query.Adapter
	logger  *zap.Logger
}

func New(adapter *query.Adapter, logger *zap.Logger) *Server {
	return &Server{adapter: adapter, logger: logger}
}

// Router builds the chi mux with logging, recovery and metrics middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/cases", s.handleCases)
		r.Get("/years", s.handleYears)
		r.Get("/ufs", s.handleUFs)
		r.Get("/municipios", s.handleMunicipalities)
		r.Get("/aggregate", s.handleAggregate)
	})
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then drains with a
// short grace period.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("http server listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		httpRequests.WithLabelValues(r.URL.Path, strconv.Itoa(ww.Status())).Inc()
		httpDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
