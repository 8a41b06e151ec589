package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the alert monitor
type Metrics struct {
	CyclesTotal       prometheus.Counter
	CycleDuration     prometheus.Histogram
	FetchesTotal      *prometheus.CounterVec   // labels: source, outcome={success,error}
	FetchDuration     *prometheus.HistogramVec // labels: source
	AlertsTotal       *prometheus.CounterVec   // labels: source, severity
	MonitorRunning    prometheus.Gauge
	SourcesConfigured prometheus.Gauge

	HTTPRequests *prometheus.CounterVec   // labels: method, path, status
	HTTPDuration *prometheus.HistogramVec // labels: method, path
	registry     *prometheus.Registry
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherwatch",
			Name:      "cycles_total",
			Help:      "Total completed polling passes.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weatherwatch",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one complete polling pass.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherwatch",
			Name:      "fetches_total",
			Help:      "Feed fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weatherwatch",
			Name:      "fetch_duration_seconds",
			Help:      "Feed fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherwatch",
			Name:      "alerts_total",
			Help:      "Classified alerts by source and severity.",
		}, []string{"source", "severity"}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weatherwatch",
			Name:      "monitor_running",
			Help:      "1 when the monitor loop is active, 0 when shut down.",
		}),
		SourcesConfigured: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weatherwatch",
			Name:      "sources_configured",
			Help:      "Number of registered feed sources.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherwatch",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path, and status.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weatherwatch",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "path"}),
	}
}

// New creates Metrics registered on their own registry, so the handler
// serves only this application's collectors.
func New() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.FetchesTotal,
		m.FetchDuration,
		m.AlertsTotal,
		m.MonitorRunning,
		m.SourcesConfigured,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// NewForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewForTesting() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	return m
}

// Handler returns the scrape handler for this instance's registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Global metrics instance
var defaultMetrics = NewForTesting()

// Init installs a registered default instance. Call once at startup.
func Init() {
	defaultMetrics = New()
}

// Handler returns the metrics handler for the default instance
func Handler() http.Handler {
	return defaultMetrics.Handler()
}

// RecordCycle records one completed polling pass
func RecordCycle(duration time.Duration) {
	defaultMetrics.CyclesTotal.Inc()
	defaultMetrics.CycleDuration.Observe(duration.Seconds())
}

// RecordFetch records one feed fetch attempt
func RecordFetch(source, outcome string, duration time.Duration) {
	defaultMetrics.FetchesTotal.WithLabelValues(source, outcome).Inc()
	defaultMetrics.FetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordAlert records one classified alert
func RecordAlert(source, severity string) {
	defaultMetrics.AlertsTotal.WithLabelValues(source, severity).Inc()
}

// SetMonitorRunning flags whether the monitor loop is active
func SetMonitorRunning(running bool) {
	if running {
		defaultMetrics.MonitorRunning.Set(1)
		return
	}
	defaultMetrics.MonitorRunning.Set(0)
}

// SetSourcesConfigured records the registry size
func SetSourcesConfigured(n int) {
	defaultMetrics.SourcesConfigured.Set(float64(n))
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	defaultMetrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	defaultMetrics.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
