package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ticker-drift-alerts/internal/alerting"
	"ticker-drift-alerts/internal/drift"
	"ticker-drift-alerts/internal/fetcher"
	"ticker-drift-alerts/internal/market"
	"ticker-drift-alerts/internal/metrics"
	"ticker-drift-alerts/internal/sampler"
)

// Options carry the per-run monitoring parameters.
type Options struct {
	Symbol       string
	ThresholdPct float64
	Window       time.Duration
}

// Service orchestrates sampling, window tracking, evaluation, and reporting.
type Service struct {
	sampler   *sampler.Sampler
	state     *drift.MonitorState
	tracker   *drift.WindowTracker
	evaluator drift.Evaluator
	reporter  alerting.Reporter
	recorder  metrics.Recorder
	logger    zerolog.Logger
	symbol    string
}

// New constructs the monitoring service. recorder may be nil.
func New(opts Options, smp *sampler.Sampler, reporter alerting.Reporter, recorder metrics.Recorder, logger zerolog.Logger) *Service {
	state := drift.NewMonitorState(opts.ThresholdPct, opts.Window)
	if recorder == nil {
		recorder = (*metrics.Metrics)(nil)
	}

	return &Service{
		sampler:   smp,
		state:     state,
		tracker:   drift.NewWindowTracker(state),
		evaluator: state.Evaluator(),
		reporter:  reporter,
		recorder:  recorder,
		logger:    logger.With().Str("component", "service").Logger(),
		symbol:    opts.Symbol,
	}
}

// Run consumes samples until ctx is cancelled or a fatal error occurs.
func (s *Service) Run(ctx context.Context) error {
	if s.sampler == nil {
		return fmt.Errorf("sampler not configured")
	}

	s.logger.Info().
		Str("symbol", s.symbol).
		Float64("threshold_pct", s.state.ThresholdPercent).
		Dur("window", s.state.WindowDuration).
		Msg("monitoring started")

	err := s.sampler.Run(ctx, s.ProcessSample)
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) {
		s.recorder.ObserveFetchFailure(s.symbol)
	}
	return err
}

// ProcessSample 处理单个样本：窗口判断、阈值评估与输出。
func (s *Service) ProcessSample(ctx context.Context, sample market.Sample) error {
	s.recorder.ObserveSample(s.symbol, sample.Price)

	decision := s.tracker.Observe(sample)
	if decision.Elapsed {
		verdict, err := s.evaluator.Evaluate(decision.Reference, decision.Current)
		if err != nil {
			return fmt.Errorf("evaluate window: %w", err)
		}
		s.recorder.ObserveWindow(s.symbol, verdict.PercentChange)

		if verdict.Triggered {
			s.recorder.ObserveAlert(s.symbol, verdict.Direction)
			s.logger.Info().
				Str("direction", verdict.Direction).
				Float64("drift_pct", verdict.PercentChange).
				Float64("reference_price", decision.Reference.Price).
				Float64("price", sample.Price).
				Msg("drift threshold exceeded")
		} else {
			s.logger.Debug().Float64("drift_pct", verdict.PercentChange).Msg("window closed below threshold")
		}

		s.reporter.ReportAlert(verdict, decision.Current)
	}

	s.reporter.ReportSample(sample)
	return nil
}

// State exposes the run state for inspection.
func (s *Service) State() *drift.MonitorState {
	return s.state
}
