// Package metrics exposes prometheus instrumentation for the HTTP surface
// and the checkout flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// ServerMetrics instruments the HTTP surface.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// CheckoutMetrics counts checkout flow outcomes.
type CheckoutMetrics struct {
	SessionsStarted    prometheus.Counter
	OrdersPlaced       prometheus.Counter
	SubmissionFailures prometheus.Counter
}

// NewServerMetrics registers and returns the HTTP metrics.
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"method", "path"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// NewCheckoutMetrics registers and returns the checkout metrics.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	started := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "sessions_started_total",
		Help:      "Checkout sessions initialized.",
	})
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "orders_placed_total",
		Help:      "Orders acknowledged by the order API.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "submission_failures_total",
		Help:      "Order submissions rejected or timed out.",
	})

	reg.MustRegister(started, placed, failures)
	return &CheckoutMetrics{
		SessionsStarted:    started,
		OrdersPlaced:       placed,
		SubmissionFailures: failures,
	}
}

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
