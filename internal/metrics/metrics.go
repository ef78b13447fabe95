// Package metrics exposes Prometheus metrics for calculations and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iwvelando/calcmaster/internal/forecast"
	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so several recorders can coexist in one
// process, e.g. in tests.
type Recorder struct {
	registry *prometheus.Registry

	projections       *prometheus.CounterVec
	projectionPeriods *prometheus.HistogramVec
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewRecorder registers the calculation and HTTP metrics together with the
// Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "projections_total",
			Help:      "Number of projections computed, by calculator kind.",
		}, []string{"kind"}),
		projectionPeriods: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "projection_periods",
			Help:      "Number of reported periods per projection, by calculator kind.",
			Buckets:   []float64{1, 12, 36, 60, 120, 240, 360, 600},
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests served, by path and status code.",
		}, []string{"path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
	}

	r.registry.MustRegister(
		r.projections,
		r.projectionPeriods,
		r.requests,
		r.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: constants.MetricsNamespace}),
	)
	return r
}

// ObserveProjection records one computed projection.
func (r *Recorder) ObserveProjection(kind forecast.Kind, periods int) {
	if r == nil {
		return
	}
	r.projections.WithLabelValues(string(kind)).Inc()
	r.projectionPeriods.WithLabelValues(string(kind)).Observe(float64(periods))
}

// ObserveForecasts records every forecast in results.
func (r *Recorder) ObserveForecasts(results []forecast.Forecast) {
	for _, result := range results {
		r.ObserveProjection(result.Kind, len(result.Rows))
	}
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(path string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
