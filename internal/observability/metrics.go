package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec
	generationRequests *prometheus.CounterVec
	feedSubscribers    prometheus.Gauge
)

// RegisterMetrics initialises the HTTP collectors. Safe to call repeatedly.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codecoach_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codecoach_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0, 60.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codecoach_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		generationRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codecoach_generation_requests_total",
			Help: "Requests that reached a text-generation backed route.",
		}, []string{"route"})

		feedSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "codecoach_review_feed_subscribers",
			Help: "Open review feed streams.",
		})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, httpErrorsTotal, generationRequests, feedSubscribers)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// GenerationRequests counts requests admitted by the generation rate limiter.
func GenerationRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return generationRequests
}

// FeedSubscribers tracks open review feed streams.
func FeedSubscribers() prometheus.Gauge {
	RegisterMetrics()
	return feedSubscribers
}
