// metrics/metrics.go
// Package metrics exposes Prometheus collectors for the API client.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
)

// ClientMetrics records request, retry and credential refresh activity.
// A nil *ClientMetrics is valid and records nothing.
type ClientMetrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	retries   prometheus.Counter
	refreshes *prometheus.CounterVec
	inFlight  prometheus.Gauge
}

// NewClientMetrics registers the client collectors on reg. A nil registerer yields a
// ClientMetrics that records nothing.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	m := &ClientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rxclient_requests_total",
			Help: "HTTP exchanges completed, by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rxclient_request_duration_seconds",
			Help:    "Duration of HTTP exchanges in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rxclient_retries_total",
			Help: "Requests replayed after a credential refresh.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rxclient_token_refresh_total",
			Help: "Credential refresh attempts, by outcome.",
		}, []string{"outcome"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rxclient_requests_in_flight",
			Help: "HTTP exchanges currently holding a concurrency permit.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.retries, m.refreshes, m.inFlight)
	return m
}

// ObserveRequest records a completed exchange. A statusCode of 0 denotes a transport failure.
func (m *ClientMetrics) ObserveRequest(method string, statusCode int, duration time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(duration.Seconds())
}

// IncRetry counts a replay after refresh.
func (m *ClientMetrics) IncRetry() {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.Inc()
}

// IncRefresh counts a refresh attempt with the given outcome.
func (m *ClientMetrics) IncRefresh(outcome string) {
	if m == nil || m.refreshes == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

// InFlightInc marks a permit as taken.
func (m *ClientMetrics) InFlightInc() {
	if m == nil || m.inFlight == nil {
		return
	}
	m.inFlight.Inc()
}

// InFlightDec marks a permit as returned.
func (m *ClientMetrics) InFlightDec() {
	if m == nil || m.inFlight == nil {
		return
	}
	m.inFlight.Dec()
}
