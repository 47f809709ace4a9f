package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, route pattern and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	// OptimizeSubmissions counts optimization submissions by outcome kind ("ok" on success).
	OptimizeSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimize_submissions_total", Help: "Route optimization submissions by outcome."},
		[]string{"outcome"},
	)
	// OptimizeLatency tracks optimizer round trips, cold starts included.
	OptimizeLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimize_latency_seconds", Help: "Optimizer round-trip latency in seconds.", Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 15, 30, 60, 120}},
	)
	// ColdStarts counts submissions that outlived the cold-start threshold.
	ColdStarts = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "optimize_cold_starts_total", Help: "Submissions that switched to the waking-up status."},
	)

	// GeocodeLookups counts geocode lookups by source (cache, provider) and result.
	GeocodeLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "geocode_lookups_total", Help: "Geocode lookups by source and result."},
		[]string{"source", "result"},
	)
)

var regOnce sync.Once

// Register adds all collectors to Registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizeSubmissions)
		Registry.MustRegister(OptimizeLatency)
		Registry.MustRegister(ColdStarts)
		Registry.MustRegister(GeocodeLookups)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
