package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Extension dispatch metrics
	DispatchTotal    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec

	// Lifecycle metrics
	LifecycleTotal *prometheus.CounterVec

	// Repository index metrics
	IndexFetchTotal *prometheus.CounterVec

	// State gauges
	InstalledSources  prometheus.Gauge
	SourcesWithUpdate prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yomikata_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yomikata_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yomikata_extension_dispatch_total",
				Help: "Total number of extension dispatch calls",
			},
			[]string{"operation", "status"},
		),
		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yomikata_extension_dispatch_duration_seconds",
				Help:    "Extension dispatch call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		LifecycleTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yomikata_extension_lifecycle_total",
				Help: "Total number of extension lifecycle operations",
			},
			[]string{"operation", "status"},
		),

		IndexFetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yomikata_index_fetch_total",
				Help: "Total number of repository index fetches",
			},
			[]string{"status"},
		),

		InstalledSources: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "yomikata_installed_sources",
				Help: "Number of currently installed sources",
			},
		),
		SourcesWithUpdate: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "yomikata_sources_with_update",
				Help: "Number of installed sources with a newer repository version",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DispatchTotal,
		m.DispatchDuration,
		m.LifecycleTotal,
		m.IndexFetchTotal,
		m.InstalledSources,
		m.SourcesWithUpdate,
	)

	return m
}

// Handler returns the /metrics endpoint handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordDispatch records one extension dispatch call
func (m *Metrics) RecordDispatch(operation string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DispatchTotal.WithLabelValues(operation, status).Inc()
	m.DispatchDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordIndexFetch records one repository index fetch outcome
func (m *Metrics) RecordIndexFetch(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.IndexFetchTotal.WithLabelValues(status).Inc()
}

// RecordLifecycle records one lifecycle operation
func (m *Metrics) RecordLifecycle(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.LifecycleTotal.WithLabelValues(operation, status).Inc()
}

// Middleware instruments HTTP handlers with request metrics. The route
// template should come from the router, not the raw URL, to keep label
// cardinality bounded.
func (m *Metrics) Middleware(routeTemplate func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			path := routeTemplate(r)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
