package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// GARuns counts finished optimization runs by status
	GARuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ga_runs_total", Help: "Genetic algorithm runs by final status."},
		[]string{"status"},
	)
	// GARunDuration records wall time of completed runs
	GARunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "ga_run_duration_seconds", Help: "Genetic algorithm run duration in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300}},
	)
	// GAGenerations counts generations evolved across all runs
	GAGenerations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ga_generations_total", Help: "Generations evolved across all runs."},
	)
	// GABestDistanceRatio tracks final/initial best distance per run
	GABestDistanceRatio = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "ga_best_distance_ratio", Help: "Final best distance divided by initial best distance.", Buckets: []float64{0.25, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1}},
	)

	// WebhookDeliveries counts webhook delivery outcomes by event type and status
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
	// WebhookLatency tracks webhook delivery latencies in milliseconds
	WebhookLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"event_type", "status"},
	)
)

// RegisterDefault registers all collectors on Registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(GARuns)
		Registry.MustRegister(GARunDuration)
		Registry.MustRegister(GAGenerations)
		Registry.MustRegister(GABestDistanceRatio)
		Registry.MustRegister(WebhookDeliveries)
		Registry.MustRegister(WebhookLatency)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
