// Package metrics constructs the metrics the application will track.
package metrics

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests   *prometheus.CounterVec
	errors     prometheus.Counter
	panics     prometheus.Counter
	goroutines prometheus.Gauge
	latency    *prometheus.HistogramVec
	syncPasses *prometheus.CounterVec
	syncTime   prometheus.Histogram
}

var m = metrics{
	requests: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jhgestor_http_requests_total",
		Help: "Total number of handled HTTP requests.",
	}, []string{"method"}),
	errors: promauto.NewCounter(prometheus.CounterOpts{
		Name: "jhgestor_http_errors_total",
		Help: "Total number of requests answered with an error.",
	}),
	panics: promauto.NewCounter(prometheus.CounterOpts{
		Name: "jhgestor_http_panics_total",
		Help: "Total number of recovered handler panics.",
	}),
	goroutines: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jhgestor_goroutines",
		Help: "Number of goroutines sampled every hundred requests.",
	}),
	latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jhgestor_http_request_duration_seconds",
		Help:    "Handler latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"}),
	syncPasses: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jhgestor_sync_passes_total",
		Help: "Synchronization passes by outcome.",
	}, []string{"outcome"}),
	syncTime: promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jhgestor_sync_pass_duration_seconds",
		Help:    "Duration of completed synchronization passes.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}),
}

var requestCount atomic.Int64

// AddRequests increments the request metric and samples goroutines.
func AddRequests(ctx context.Context, method string, since time.Duration) {
	m.requests.WithLabelValues(method).Inc()
	m.latency.WithLabelValues(method).Observe(since.Seconds())

	if requestCount.Add(1)%100 == 0 {
		m.goroutines.Set(float64(runtime.NumGoroutine()))
	}
}

// AddErrors increments the errors metric.
func AddErrors(ctx context.Context) {
	m.errors.Inc()
}

// AddPanics increments the panics metric.
func AddPanics(ctx context.Context) {
	m.panics.Inc()
}

// =============================================================================

// SyncObserver records synchronization outcomes.
type SyncObserver struct{}

// PassFinished implements the syncbus observer.
func (SyncObserver) PassFinished(outcome string, took time.Duration) {
	m.syncPasses.WithLabelValues(outcome).Inc()
	if took > 0 {
		m.syncTime.Observe(took.Seconds())
	}
}
