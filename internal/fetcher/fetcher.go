package fetcher

import (
	"context"
	"fmt"

	"ticker-drift-alerts/internal/market"
)

// TickerFetcher retrieves a single ticker sample.
type TickerFetcher interface {
	FetchTicker(ctx context.Context) (market.Sample, error)
}

// FetchError reports a ticker fetch that could not produce a sample, either
// because the failure was not retryable or because the retry budget ran out.
type FetchError struct {
	Symbol     string
	StatusCode int
	// Retryable is true when the transport gave up, typically after spending
	// the retry budget on connection errors or 5xx responses.
	Retryable bool
	Err       error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s ticker (status %d): %v", e.Symbol, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s ticker: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
