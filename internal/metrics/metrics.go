// Package metrics exposes Prometheus collectors for the monitoring loop.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Recorder receives loop events. A nil *Metrics is a valid no-op Recorder.
type Recorder interface {
	ObserveSample(symbol string, price float64)
	ObserveFetchFailure(symbol string)
	ObserveRetry(symbol string)
	ObserveWindow(symbol string, percentChange float64)
	ObserveAlert(symbol, direction string)
}

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	samples       *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	retries       *prometheus.CounterVec
	windows       *prometheus.CounterVec
	alerts        *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	windowDrift   *prometheus.GaugeVec
}

// New registers all collectors under namespace.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		samples: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Ticker samples received.",
		}, []string{"symbol"}),
		fetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Ticker fetches that failed after the retry budget.",
		}, []string{"symbol"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Ticker request attempts beyond the first.",
		}, []string{"symbol"}),
		windows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_evaluated_total",
			Help:      "Comparison windows that elapsed and were evaluated.",
		}, []string{"symbol"}),
		alerts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Drift alerts emitted.",
		}, []string{"symbol", "direction"}),
		lastPrice: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_price",
			Help:      "Most recent last traded price.",
		}, []string{"symbol"}),
		windowDrift: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_drift_percent",
			Help:      "Signed percent change of the last evaluated window.",
		}, []string{"symbol"}),
	}
}

func (m *Metrics) ObserveSample(symbol string, price float64) {
	if m == nil {
		return
	}
	m.samples.WithLabelValues(symbol).Inc()
	m.lastPrice.WithLabelValues(symbol).Set(price)
}

func (m *Metrics) ObserveFetchFailure(symbol string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(symbol).Inc()
}

func (m *Metrics) ObserveRetry(symbol string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(symbol).Inc()
}

func (m *Metrics) ObserveWindow(symbol string, percentChange float64) {
	if m == nil {
		return
	}
	m.windows.WithLabelValues(symbol).Inc()
	m.windowDrift.WithLabelValues(symbol).Set(percentChange)
}

func (m *Metrics) ObserveAlert(symbol, direction string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(symbol, direction).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("metrics listener started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var _ Recorder = (*Metrics)(nil)
