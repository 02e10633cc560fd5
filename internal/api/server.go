// Package api exposes the read-only HTTP interface for the collected
// trend data.
package api

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stromning/scholartrend/internal/chart"
	"github.com/stromning/scholartrend/internal/dataset"
	"github.com/stromning/scholartrend/internal/scholar"
)

// Server serves the dataset and chart over HTTP.
type Server struct {
	router   chi.Router
	store    dataset.Store
	renderer *chart.Renderer
	clock    scholar.Clock
	logger   *zap.Logger
}

// NewServer wires routes and middleware.
func NewServer(store dataset.Store, renderer *chart.Renderer, clock scholar.Clock, logger *zap.Logger) *Server {
	s := &Server{
		store:    store,
		renderer: renderer,
		clock:    clock,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Get("/counts", s.getCounts)
		r.Get("/chart.png", s.getChart)
		r.Get("/data.csv", s.getCSV)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getCounts(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Load(r.Context())
	if err != nil {
		s.logger.Error("Failed to load dataset", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load dataset")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Load(r.Context())
	if err != nil {
		s.logger.Error("Failed to load dataset", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load dataset")
		return
	}
	if len(d) == 0 {
		writeError(w, http.StatusNotFound, "no data collected yet")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := s.renderer.Render(d, s.clock.Now(), w); err != nil {
		// Headers are already out; all we can do is log.
		s.logger.Error("Failed to render chart", zap.Error(err))
	}
}

func (s *Server) getCSV(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Load(r.Context())
	if err != nil {
		s.logger.Error("Failed to load dataset", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load dataset")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	writer := csv.NewWriter(w)
	records := [][]string{{"year", "count"}}
	for _, row := range d {
		records = append(records, []string{strconv.Itoa(row.Year), strconv.Itoa(row.Count)})
	}
	if err := writer.WriteAll(records); err != nil {
		s.logger.Error("Failed to write CSV response", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; encoding errors have nowhere to go.
	_ = json.NewEncoder(w).Encode(payload) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
