package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ticker-drift-alerts/internal/alerting"
	"ticker-drift-alerts/internal/config"
	"ticker-drift-alerts/internal/fetcher"
	"ticker-drift-alerts/internal/market"
	"ticker-drift-alerts/internal/metrics"
	"ticker-drift-alerts/internal/sampler"
	"ticker-drift-alerts/internal/service"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	// Out receives console reports. Defaults to stdout.
	Out io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger.With().Str("component", "app").Logger(),
		Out:    os.Stdout,
	}
}

// RunOptions override monitor settings from the command line.
type RunOptions struct {
	Symbol       string
	ThresholdPct *float64
	Window       time.Duration
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Symbol string
}

// resolveSymbol applies the allow-list with fallback to the default symbol.
func (a *App) resolveSymbol(override string) string {
	requested := a.Config.Monitor.Symbol
	if strings.TrimSpace(override) != "" {
		requested = override
	}
	symbol, ok := market.ResolveSymbol(requested, a.Config.Monitor.Symbols)
	if !ok {
		a.Logger.Warn().Str("requested", requested).Str("symbol", symbol).Msg("symbol not available; falling back to default")
	}
	return symbol
}

func (a *App) newFetcher(symbol string, rec metrics.Recorder) *fetcher.Ticker {
	cfg := a.Config.Binance
	return fetcher.NewTicker(fetcher.TickerOptions{
		BaseURL:   cfg.BaseURL,
		Symbol:    symbol,
		Timeout:   cfg.RequestTimeout,
		UserAgent: cfg.UserAgent,
		Retry: fetcher.RetryOptions{
			Attempts:    cfg.Retry.Attempts,
			BackoffBase: cfg.Retry.BackoffBase,
			BackoffMax:  cfg.Retry.BackoffMax,
			OnRetry: func(int) {
				if rec != nil {
					rec.ObserveRetry(symbol)
				}
			},
		},
	}, a.Logger)
}

func (a *App) newReporter() alerting.Reporter {
	if strings.EqualFold(a.Config.Report.Sink, config.SinkLog) {
		return alerting.NewLogReporter(a.Logger)
	}
	return alerting.NewConsoleReporter(a.Out)
}

// Run executes the long-running monitoring loop until SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.run(ctx, opts)
}

func (a *App) run(ctx context.Context, opts RunOptions) error {
	threshold := a.Config.Monitor.ThresholdPct
	if opts.ThresholdPct != nil {
		threshold = *opts.ThresholdPct
	}
	if threshold < 0 {
		return errors.New("threshold cannot be negative")
	}
	if opts.Window < 0 {
		return errors.New("window cannot be negative")
	}
	window := a.Config.Monitor.Window
	if opts.Window > 0 {
		window = opts.Window
	}

	symbol := a.resolveSymbol(opts.Symbol)
	logger := a.Logger.With().Str("run_id", uuid.NewString()).Str("symbol", symbol).Logger()

	var rec metrics.Recorder
	if addr := a.Config.Metrics.ListenAddr; addr != "" {
		m := metrics.New(a.Config.Metrics.Namespace)
		rec = m
		go func() {
			if err := m.Serve(ctx, addr, logger); err != nil {
				logger.Error().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	tk := a.newFetcher(symbol, rec)
	smp := sampler.New(tk, sampler.Options{}, logger)
	reporter := a.newReporter()

	svc := service.New(service.Options{
		Symbol:       symbol,
		ThresholdPct: threshold,
		Window:       window,
	}, smp, reporter, rec, logger)

	logger.Info().Str("endpoint", tk.Endpoint()).Msg("starting monitoring loop")
	err := svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("monitoring terminated with error")
		return err
	}

	reporter.ReportStopped()
	logger.Info().Msg("monitoring loop stopped")
	return nil
}
