package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satorbit_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satorbit_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	pipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satorbit_pipeline_runs_total",
			Help: "Pipeline runs by mode and outcome (ok, source_fetch, propagation, canceled).",
		},
		[]string{"mode", "outcome"},
	)

	pipelineDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satorbit_pipeline_duration_seconds",
			Help:    "Wall time of a full pipeline run in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"mode"},
	)

	trackedSatellites = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "satorbit_tracked_satellites",
			Help: "Satellites present in the most recent pipeline output, by mode.",
		},
		[]string{"mode"},
	)

	propagationErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satorbit_propagation_errors_total",
			Help: "Propagator calls that returned an error.",
		},
	)

	tleLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satorbit_tle_loads_total",
			Help: "Element-set loads by origin (cache, network) and outcome (ok, error).",
		},
		[]string{"origin", "outcome"},
	)

	tleDatasetCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "satorbit_tle_dataset_count",
			Help: "Number of element sets in the most recently loaded dataset.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		pipelineRunsTotal,
		pipelineDurationSeconds,
		trackedSatellites,
		propagationErrorsTotal,
		tleLoadsTotal,
		tleDatasetCount,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPipelineRun records one finished run. outcome is "ok" or a failure kind.
func RecordPipelineRun(mode, outcome string, duration time.Duration, results int) {
	pipelineRunsTotal.WithLabelValues(mode, outcome).Inc()
	pipelineDurationSeconds.WithLabelValues(mode).Observe(duration.Seconds())
	trackedSatellites.WithLabelValues(mode).Set(float64(results))
}

// IncPropagationErrors counts one failed propagator call.
func IncPropagationErrors() {
	propagationErrorsTotal.Inc()
}

// RecordTLELoad counts one element-set load attempt.
func RecordTLELoad(origin string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	tleLoadsTotal.WithLabelValues(origin, outcome).Inc()
}

// SetTLEDatasetCount publishes the size of the last loaded dataset.
func SetTLEDatasetCount(n int) {
	tleDatasetCount.Set(float64(n))
}

// knownRoutes are exported as-is; everything else collapses to "other" so
// scanners cannot blow up label cardinality.
var knownRoutes = map[string]bool{
	"/":              true,
	"/healthz":       true,
	"/readyz":        true,
	"/metrics":       true,
	"/api/v1/map":    true,
	"/api/v1/view":   true,
	"/api/v1/config": true,
}

func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := normalizeRoute(r.URL.Path)
		code := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
