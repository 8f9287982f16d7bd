package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/fatality-map-service/internal/domain"
	"github.com/couchcryptid/fatality-map-service/internal/leaflet"
	"github.com/couchcryptid/fatality-map-service/internal/mapview"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the map page, the layer API and the health, readiness and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        *mapview.Service
	logger     *slog.Logger
}

// LayerResponse is the body of GET /api/layer.
type LayerResponse struct {
	Index int                `json:"index"`
	Year  domain.Year        `json:"year"`
	Layer domain.SymbolLayer `json:"layer"`
}

// NewServer creates an HTTP server backed by svc.
func NewServer(addr string, svc *mapview.Service, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/years", s.handleYears)
	mux.HandleFunc("GET /api/layer", s.handleLayer)
	mux.HandleFunc("GET /api/legend", s.handleLegend)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleIndex runs a fresh session against a live page. A dataset that failed
// to load yields a tile-only map, not an error page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	doc := leaflet.NewDocument(leaflet.Live)
	session := s.svc.NewSession(doc, doc)
	if err := session.Start(r.Context()); err != nil {
		if !errors.Is(err, mapview.ErrNotReady) {
			s.logger.Error("start session", "error", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.logger.Warn("serving tile-only map", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := doc.WriteHTML(w); err != nil {
		s.logger.Error("write page", "error", err)
	}
}

func (s *Server) handleYears(w http.ResponseWriter, _ *http.Request) {
	seq, err := s.svc.Sequence()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string][]domain.Year{"years": seq.Years()})
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.svc.Legend())
}

func (s *Server) handleLayer(w http.ResponseWriter, r *http.Request) {
	seq, err := s.svc.Sequence()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	q := r.URL.Query()
	index := 0
	if v := q.Get("index"); v != "" {
		index, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("index must be an integer"))
			return
		}
	}
	if _, err := seq.Year(index); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	step, err := domain.ParseStep(q.Get("step"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	index = seq.Apply(index, step)
	year, _ := seq.Year(index)

	filter := domain.Unbounded()
	if q.Has("min") {
		filter.Min = domain.ParseIntegerInput(q.Get("min"))
	}
	if q.Has("max") {
		filter.Max = domain.ParseIntegerInput(q.Get("max"))
	}

	layer, err := s.svc.BuildLayer(r.Context(), year, filter)
	if err != nil {
		s.logger.Error("build layer", "year", year, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, LayerResponse{Index: index, Year: year, Layer: layer})
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
