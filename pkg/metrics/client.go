package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics records storefront REST traffic. A nil *ClientMetrics is
// valid and records nothing.
type ClientMetrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	authExpired prometheus.Counter
}

// NewClientMetrics registers the client metrics on the provided registerer.
func NewClientMetrics(reg prometheus.Registerer, namespace string) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storefront_requests_total",
		Help:      "Storefront API requests by endpoint and response status.",
	}, []string{"endpoint", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "storefront_request_duration_seconds",
		Help:      "Latency of storefront API requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	authExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storefront_auth_expired_total",
		Help:      "Authenticated requests rejected with 401/403.",
	})
	reg.MustRegister(requests, duration, authExpired)
	return &ClientMetrics{
		requests:    requests,
		duration:    duration,
		authExpired: authExpired,
	}
}

// ObserveRequest records one finished request. status 0 means the request
// never got a response.
func (c *ClientMetrics) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	if c == nil || c.requests == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	c.requests.WithLabelValues(endpoint, statusLabel(status)).Inc()
	c.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// IncAuthExpired counts a forced logout.
func (c *ClientMetrics) IncAuthExpired() {
	if c == nil || c.authExpired == nil {
		return
	}
	c.authExpired.Inc()
}

func statusLabel(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

// Requests exposes the request counter for tests and exporters.
func (c *ClientMetrics) Requests() *prometheus.CounterVec {
	if c == nil {
		return nil
	}
	return c.requests
}

func (c *ClientMetrics) AuthExpired() prometheus.Counter {
	if c == nil {
		return nil
	}
	return c.authExpired
}
