// Package metrics exposes Prometheus collectors for the beacon service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal          *prometheus.CounterVec
	requestDurationSeconds *prometheus.HistogramVec
	configResolutionsTotal *prometheus.CounterVec
	eventsStoredTotal      prometheus.Counter
	notificationsTotal     *prometheus.CounterVec
	faultsTotal            *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		requestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_requests_total",
				Help: "Total number of handled requests, labeled by method and outcome.",
			},
			[]string{"method", "outcome"},
		)

		requestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "beacon_request_duration_seconds",
				Help:    "Histogram of request latencies, labeled by method.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method"},
		)

		configResolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_config_resolutions_total",
				Help: "Total number of project config resolutions, labeled by source.",
			},
			[]string{"source"},
		)

		eventsStoredTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "beacon_events_stored_total",
				Help: "Total number of access events written to the store.",
			},
		)

		notificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_notifications_total",
				Help: "Total number of notification attempts, labeled by status.",
			},
			[]string{"status"},
		)

		faultsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_faults_total",
				Help: "Total number of swallowed pipeline failures, labeled by stage.",
			},
			[]string{"stage"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one handled request.
func ObserveRequest(method, outcome string, duration time.Duration) {
	requestsTotal.WithLabelValues(method, outcome).Inc()
	requestDurationSeconds.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveResolution records a config resolution by source (cache, store,
// none).
func ObserveResolution(source string) {
	configResolutionsTotal.WithLabelValues(source).Inc()
}

// ObserveEventStored increments the stored-events counter.
func ObserveEventStored() {
	eventsStoredTotal.Inc()
}

// ObserveNotification records a notification attempt outcome.
func ObserveNotification(status string) {
	notificationsTotal.WithLabelValues(status).Inc()
}

// ObserveFault increments the fault counter for the given stage.
func ObserveFault(stage string) {
	faultsTotal.WithLabelValues(stage).Inc()
}
