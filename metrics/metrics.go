package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	CallbackTotal     *prometheus.CounterVec
	GraphRequests     *prometheus.CounterVec
	GraphLatency      *prometheus.HistogramVec
	ReconcileDuration prometheus.Histogram
	Errors            *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			CallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "facebook_callback_total",
				Help:      "Total OAuth callback requests by outcome.",
			}, []string{"outcome"}),
			GraphRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_requests_total",
				Help:      "Total Graph API requests by endpoint and status.",
			}, []string{"endpoint", "status"}),
			GraphLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_request_duration_seconds",
				Help:      "Latency distribution for Graph API requests.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"endpoint"}),
			ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reconcile_duration_seconds",
				Help:      "Latency distribution for asset reconciliation transactions.",
				Buckets:   prometheus.DefBuckets,
			}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.CallbackTotal,
			metricsInstance.GraphRequests,
			metricsInstance.GraphLatency,
			metricsInstance.ReconcileDuration,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
