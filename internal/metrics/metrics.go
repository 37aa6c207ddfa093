// Package metrics exposes the Prometheus collectors of the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors plus the Go runtime ones.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "afrizone",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "afrizone",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"method", "route"},
	)

	ordersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "afrizone",
		Name:      "orders_created_total",
		Help:      "Total number of orders placed.",
	})

	reviewsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "afrizone",
		Name:      "reviews_submitted_total",
		Help:      "Total number of product reviews accepted.",
	})

	authFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "afrizone",
			Name:      "auth_failures_total",
			Help:      "Authentication failures by reason.",
		},
		[]string{"reason"},
	)
)

// Reasons reported by RecordAuthFailure.
const (
	ReasonMissingToken = "missing_token"
	ReasonInvalidToken = "invalid_token"
	ReasonUnknownUser  = "unknown_user"
	ReasonForbidden    = "forbidden"
	ReasonBadLogin     = "bad_credentials"
	ReasonRateLimited  = "rate_limited"
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		ordersCreated,
		reviewsSubmitted,
		authFailures,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRequest records one served request. route is the matched route
// template, never the raw path, to keep label cardinality bounded.
func RecordRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func RecordOrderCreated() {
	ordersCreated.Inc()
}

func RecordReviewSubmitted() {
	reviewsSubmitted.Inc()
}

func RecordAuthFailure(reason string) {
	authFailures.WithLabelValues(reason).Inc()
}
