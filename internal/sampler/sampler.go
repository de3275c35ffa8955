package sampler

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ticker-drift-alerts/internal/fetcher"
	"ticker-drift-alerts/internal/market"
)

// DefaultTickInterval is the minimum spacing between two fetches.
const DefaultTickInterval = 500 * time.Millisecond

// ErrExhausted is yielded when Samples is called on a sampler that already
// produced its sequence.
var ErrExhausted = errors.New("sampler: sequence already consumed")

// Options tune sampler behaviour.
type Options struct {
	// Interval defaults to DefaultTickInterval. It is not exposed through
	// configuration.
	Interval time.Duration
}

// SampleFunc receives each sample produced by Run.
type SampleFunc func(ctx context.Context, sample market.Sample) error

// Sampler drives the fetch loop at a fixed cadence.
type Sampler struct {
	fetcher  fetcher.TickerFetcher
	interval time.Duration
	logger   zerolog.Logger
	started  atomic.Bool
}

// New constructs a Sampler polling f.
func New(f fetcher.TickerFetcher, opts Options, logger zerolog.Logger) *Sampler {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Sampler{
		fetcher:  f,
		interval: interval,
		logger:   logger.With().Str("component", "sampler").Logger(),
	}
}

// Samples returns the lazy sample sequence. The sleep happens after each
// sample is handed to the consumer. A fetch failure is yielded once and ends
// the sequence; a cancelled context ends it without an error, including when
// the cancellation aborts an in-flight fetch.
func (s *Sampler) Samples(ctx context.Context) iter.Seq2[market.Sample, error] {
	return func(yield func(market.Sample, error) bool) {
		if !s.started.CompareAndSwap(false, true) {
			yield(market.Sample{}, ErrExhausted)
			return
		}

		for tick := uint64(1); ; tick++ {
			if ctx.Err() != nil {
				return
			}

			sample, err := s.fetcher.FetchTicker(ctx)
			if err != nil {
				if ctx.Err() != nil {
					s.logger.Debug().Uint64("tick", tick).Msg("fetch interrupted by shutdown")
					return
				}
				yield(market.Sample{}, err)
				return
			}

			s.logger.Debug().Uint64("tick", tick).Float64("price", sample.Price).Msg("sample fetched")
			if !yield(sample, nil) {
				return
			}

			if !s.sleep(ctx) {
				return
			}
		}
	}
}

// Run blocks, invoking fn for every sample until ctx is cancelled, a fetch
// fails, or fn returns an error. A clean stop returns ctx.Err().
func (s *Sampler) Run(ctx context.Context, fn SampleFunc) error {
	for sample, err := range s.Samples(ctx) {
		if err != nil {
			return err
		}
		if err := fn(ctx, sample); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (s *Sampler) sleep(ctx context.Context) bool {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
