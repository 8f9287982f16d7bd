// Package mapview composes the dataset, the symbol layer builder and the map
// controls into sessions drawn on a canvas.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/fatality-map-service/internal/canvas"
	"github.com/couchcryptid/fatality-map-service/internal/config"
	"github.com/couchcryptid/fatality-map-service/internal/dataset"
	"github.com/couchcryptid/fatality-map-service/internal/domain"
	"github.com/couchcryptid/fatality-map-service/internal/observability"
)

var (
	// ErrNotReady is returned while the dataset has not been loaded.
	ErrNotReady = errors.New("dataset has not been loaded")

	// ErrAlreadyLoaded is returned by a second call to Load.
	ErrAlreadyLoaded = errors.New("dataset already loaded")
)

// LayerSink receives every layer the service builds.
type LayerSink interface {
	PublishLayer(ctx context.Context, layer domain.SymbolLayer) error
}

// Service owns the loaded dataset and builds layers from it. It is safe for
// concurrent use once loaded; the collection is never modified.
type Service struct {
	loader   dataset.Loader
	geocoder domain.Geocoder
	sink     LayerSink
	view     config.MapView
	logger   *slog.Logger
	metrics  *observability.Metrics

	loadMu     sync.Mutex
	ready      atomic.Bool
	collection *domain.FeatureCollection
	seq        domain.Sequence
	builder    *domain.LayerBuilder
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithGeocoder enables the geocoding fallback for features without a point.
func WithGeocoder(g domain.Geocoder) Option {
	return func(s *Service) { s.geocoder = g }
}

// WithLayerSink publishes every built layer to sink.
func WithLayerSink(sink LayerSink) Option {
	return func(s *Service) { s.sink = sink }
}

// NewService creates a Service in the Loading state.
func NewService(loader dataset.Loader, view config.MapView, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		loader:  loader,
		view:    view,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches, validates and indexes the dataset. It succeeds at most once;
// a failed load may be retried by the caller.
func (s *Service) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.ready.Load() {
		return ErrAlreadyLoaded
	}

	start := time.Now()
	fc, err := s.loader.Load(ctx)
	if err != nil {
		s.metrics.DatasetLoadErrors.Inc()
		return fmt.Errorf("load dataset: %w", err)
	}
	if err := domain.ValidateSchema(fc); err != nil {
		s.metrics.DatasetLoadErrors.Inc()
		return fmt.Errorf("load dataset: %w", err)
	}
	years, err := domain.YearsFromCollection(fc)
	if err != nil {
		s.metrics.DatasetLoadErrors.Inc()
		return fmt.Errorf("load dataset: %w", err)
	}
	seq, err := domain.NewSequence(years)
	if err != nil {
		s.metrics.DatasetLoadErrors.Inc()
		return fmt.Errorf("load dataset: no year attributes: %w", err)
	}

	s.collection = fc
	s.seq = seq
	s.builder = domain.NewLayerBuilder(fc, s.geocoder, s.logger)
	s.ready.Store(true)

	s.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	s.metrics.DatasetFeatures.Set(float64(len(fc.Features)))
	s.metrics.DatasetYears.Set(float64(seq.Len()))
	s.metrics.DatasetLoaded.Set(1)
	s.logger.Info("dataset loaded",
		"features", len(fc.Features),
		"years", seq.Len(),
		"first_year", years[0],
		"last_year", years[len(years)-1],
	)
	return nil
}

// CheckReadiness returns nil once the dataset is loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return ErrNotReady
	}
	return nil
}

// Sequence returns the year domain.
func (s *Service) Sequence() (domain.Sequence, error) {
	if !s.ready.Load() {
		return domain.Sequence{}, ErrNotReady
	}
	return s.seq, nil
}

// View returns the configured map view.
func (s *Service) View() config.MapView { return s.view }

// Legend returns the legend shown on every session.
func (s *Service) Legend() domain.Legend { return s.view.Legend }

// BuildLayer builds the symbol layer for year and filter, records metrics and
// hands the layer to the sink. Sink failures are logged, never returned.
func (s *Service) BuildLayer(ctx context.Context, year domain.Year, filter domain.FilterRange) (domain.SymbolLayer, error) {
	if !s.ready.Load() {
		return domain.SymbolLayer{}, ErrNotReady
	}
	if _, ok := s.seq.Index(year); !ok {
		return domain.SymbolLayer{}, fmt.Errorf("unknown year %q", year)
	}

	start := time.Now()
	layer, err := s.builder.Build(ctx, year, filter)
	if err != nil {
		return domain.SymbolLayer{}, err
	}

	s.metrics.LayersBuilt.Inc()
	s.metrics.LayerBuildDuration.Observe(time.Since(start).Seconds())
	s.metrics.LayerMarkers.Observe(float64(len(layer.Markers)))
	for reason, n := range layer.Excluded {
		s.metrics.FeaturesExcluded.WithLabelValues(string(reason)).Add(float64(n))
	}
	s.logger.Debug("layer built",
		"layer_id", layer.ID,
		"year", year,
		"markers", len(layer.Markers),
	)

	if s.sink != nil {
		if err := s.sink.PublishLayer(ctx, layer); err != nil {
			s.metrics.LayerPublishErrors.Inc()
			s.logger.Warn("publish layer failed", "layer_id", layer.ID, "error", err)
		}
	}
	return layer, nil
}

// NewSession binds a session to a canvas. panel may be nil, in which case the
// session runs without sequence controls or filter inputs.
func (s *Service) NewSession(c canvas.Canvas, panel canvas.Panel) *Session {
	return &Session{
		svc:    s,
		canvas: c,
		panel:  panel,
		logger: s.logger,
	}
}
