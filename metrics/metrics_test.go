// metrics/metrics_test.go
package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics(reg)

	m.ObserveRequest(http.MethodGet, http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, http.StatusOK, 30*time.Millisecond)
	m.ObserveRequest(http.MethodPost, 0, time.Millisecond)
	m.IncRetry()
	m.IncRefresh(RefreshSuccess)
	m.IncRefresh(RefreshFailure)
	m.IncRefresh(RefreshFailure)
	m.InFlightInc()
	m.InFlightInc()
	m.InFlightDec()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retries))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.refreshes.WithLabelValues(RefreshFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))

	count, err := testutil.GatherAndCount(reg, "rxclient_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNilClientMetricsIsNoop(t *testing.T) {
	var m *ClientMetrics
	assert.NotPanics(t, func() {
		m.ObserveRequest(http.MethodGet, http.StatusOK, time.Second)
		m.IncRetry()
		m.IncRefresh(RefreshSuccess)
		m.InFlightInc()
		m.InFlightDec()
	})

	unregistered := NewClientMetrics(nil)
	assert.NotPanics(t, func() { unregistered.IncRetry() })
}
