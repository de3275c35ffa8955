package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	m := New("test")

	m.ObserveSample("ETHUSDT", 2000)
	m.ObserveSample("ETHUSDT", 2021)
	m.ObserveRetry("ETHUSDT")
	m.ObserveWindow("ETHUSDT", 1.05)
	m.ObserveAlert("ETHUSDT", "increased")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.samples.WithLabelValues("ETHUSDT")))
	assert.Equal(t, 2021.0, testutil.ToFloat64(m.lastPrice.WithLabelValues("ETHUSDT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retries.WithLabelValues("ETHUSDT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.windows.WithLabelValues("ETHUSDT")))
	assert.InDelta(t, 1.05, testutil.ToFloat64(m.windowDrift.WithLabelValues("ETHUSDT")), 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.alerts.WithLabelValues("ETHUSDT", "increased")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSample("ETHUSDT", 1)
		m.ObserveFetchFailure("ETHUSDT")
		m.ObserveRetry("ETHUSDT")
		m.ObserveWindow("ETHUSDT", 1)
		m.ObserveAlert("ETHUSDT", "decreased")
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("test")
	m.ObserveFetchFailure("BTCUSDT")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_fetch_failures_total{symbol="BTCUSDT"} 1`)
}
