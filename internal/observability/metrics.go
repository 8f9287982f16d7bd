package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Dataset metrics.
	DatasetLoaded       prometheus.Gauge
	DatasetFeatures     prometheus.Gauge
	DatasetYears        prometheus.Gauge
	DatasetLoadDuration prometheus.Histogram
	DatasetLoadErrors   prometheus.Counter

	// Layer metrics.
	LayersBuilt        prometheus.Counter
	LayerBuildDuration prometheus.Histogram
	LayerMarkers       prometheus.Histogram
	FeaturesExcluded   *prometheus.CounterVec // labels: reason={missing_value,out_of_range,no_location}
	LayerPublishErrors prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatasetLoaded,
		m.DatasetFeatures,
		m.DatasetYears,
		m.DatasetLoadDuration,
		m.DatasetLoadErrors,
		m.LayersBuilt,
		m.LayerBuildDuration,
		m.LayerMarkers,
		m.FeaturesExcluded,
		m.LayerPublishErrors,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fatality_map",
			Name:      "dataset_loaded",
			Help:      "1 once the dataset has been loaded and validated, 0 before.",
		}),
		DatasetFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fatality_map",
			Name:      "dataset_features",
			Help:      "Number of features in the loaded dataset.",
		}),
		DatasetYears: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fatality_map",
			Name:      "dataset_years",
			Help:      "Number of years in the loaded dataset.",
		}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fatality_map",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of the dataset fetch, parse and validation.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 15},
		}),
		DatasetLoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fatality_map",
			Name:      "dataset_load_errors_total",
			Help:      "Total failed dataset loads.",
		}),
		LayersBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fatality_map",
			Name:      "layers_built_total",
			Help:      "Total symbol layers built.",
		}),
		LayerBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fatality_map",
			Name:      "layer_build_duration_seconds",
			Help:      "Duration of a symbol layer build.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		LayerMarkers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fatality_map",
			Name:      "layer_markers",
			Help:      "Number of markers per built layer.",
			Buckets:   []float64{0, 1, 5, 10, 20, 30, 40, 50, 60},
		}),
		FeaturesExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fatality_map",
			Name:      "features_excluded_total",
			Help:      "Features left off a layer, by reason.",
		}, []string{"reason"}),
		LayerPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fatality_map",
			Name:      "layer_publish_errors_total",
			Help:      "Total failures publishing built layers.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fatality_map",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fatality_map",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fatality_map",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fatality_map",
			Name:      "geocode_enabled",
			Help:      "1 when geocoding fallback is enabled, 0 otherwise.",
		}),
	}
}
