package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the picker.
type Metrics struct {
	// Remote places service.
	RemoteRequests *prometheus.CounterVec   // labels: op={list_places,list_user_places,replace_user_places}, outcome={success,remote_error,decode_error,transport_error}
	RemoteDuration *prometheus.HistogramVec // labels: op

	// Fetch lifecycle.
	Fetches *prometheus.CounterVec // labels: resource={catalog,user_places}, outcome={success,error,stale}

	// Optimistic updates.
	Updates        *prometheus.CounterVec // labels: op={select,remove}, outcome={committed,rolled_back,noop}
	UpdatesWaiting prometheus.Gauge

	// Location lookups.
	LocationLookups *prometheus.CounterVec // labels: outcome={success,error,timeout}

	// Geocoding.
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	ChangeEventsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RemoteRequests,
		m.RemoteDuration,
		m.Fetches,
		m.Updates,
		m.UpdatesWaiting,
		m.LocationLookups,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.ChangeEventsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RemoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "place_picker",
			Name:      "remote_requests_total",
			Help:      "Requests to the remote places service by operation and outcome.",
		}, []string{"op", "outcome"}),
		RemoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "place_picker",
			Name:      "remote_request_duration_seconds",
			Help:      "Remote places service round-trip duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"op"}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "place_picker",
			Name:      "fetches_total",
			Help:      "Settled fetch invocations by resource and outcome.",
		}, []string{"resource", "outcome"}),
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "place_picker",
			Name:      "optimistic_updates_total",
			Help:      "Picked-places updates by operation and outcome.",
		}, []string{"op", "outcome"}),
		UpdatesWaiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "place_picker",
			Name:      "updates_waiting",
			Help:      "Picked-places updates queued behind the one in flight.",
		}),
		LocationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "place_picker",
			Name:      "location_lookups_total",
			Help:      "Current-position lookups by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "place_picker",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "place_picker",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ChangeEventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "place_picker",
			Name:      "change_events_published_total",
			Help:      "Picked-places change events sent to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}
