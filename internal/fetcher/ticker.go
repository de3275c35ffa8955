package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ticker-drift-alerts/internal/market"
)

// TickerOptions parameterise the Binance 24h ticker fetcher.
type TickerOptions struct {
	BaseURL   string
	Symbol    string
	Timeout   time.Duration
	UserAgent string
	Retry     RetryOptions
	// Clock stamps samples. It must carry a monotonic reading; time.Now does.
	Clock func() time.Time
}

// Ticker fetches 24h ticker snapshots for one symbol.
type Ticker struct {
	opts     TickerOptions
	logger   zerolog.Logger
	client   *retryablehttp.Client
	endpoint string
	now      func() time.Time
}

// NewTicker constructs a ticker fetcher.
func NewTicker(opts TickerOptions, logger zerolog.Logger) *Ticker {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	symbol := market.NormalizeSymbol(opts.Symbol)
	if symbol == "" {
		symbol = market.DefaultSymbol
	}
	opts.Symbol = symbol

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	log := logger.With().Str("component", "ticker_fetcher").Str("symbol", symbol).Logger()

	return &Ticker{
		opts:     opts,
		logger:   log,
		client:   newRetryClient(opts.Retry, timeout, log),
		endpoint: market.TickerURL(opts.BaseURL, symbol),
		now:      now,
	}
}

// Endpoint returns the URL polled by FetchTicker.
func (t *Ticker) Endpoint() string {
	return t.endpoint
}

// FetchTicker performs one logical fetch. Transient failures are retried by
// the transport; every other failure returns a *FetchError straight away.
func (t *Ticker) FetchTicker(ctx context.Context) (market.Sample, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, t.endpoint, nil)
	if err != nil {
		return market.Sample{}, t.fail(0, false, err)
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(t.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "driftwatch/1.0")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return market.Sample{}, ctxErr
		}
		return market.Sample{}, t.fail(0, true, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return market.Sample{}, t.fail(resp.StatusCode, false, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return market.Sample{}, t.fail(resp.StatusCode, false, parseHTTPError(resp.StatusCode, payload))
	}

	sample, err := t.decode(payload)
	if err != nil {
		return market.Sample{}, t.fail(resp.StatusCode, false, err)
	}
	return sample, nil
}

func (t *Ticker) decode(payload []byte) (market.Sample, error) {
	var res tickerResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return market.Sample{}, fmt.Errorf("decode ticker: %w", err)
	}

	price, err := parseDecimalField("lastPrice", res.LastPrice)
	if err != nil {
		return market.Sample{}, err
	}
	if !price.IsPositive() {
		return market.Sample{}, fmt.Errorf("lastPrice must be positive, got %s", price.String())
	}
	change, err := parseDecimalField("priceChange", res.PriceChange)
	if err != nil {
		return market.Sample{}, err
	}
	changePct, err := parseDecimalField("priceChangePercent", res.PriceChangePercent)
	if err != nil {
		return market.Sample{}, err
	}

	sample := market.Sample{Symbol: t.opts.Symbol, Timestamp: t.now()}
	if sample.Price, err = finiteFloat("lastPrice", price); err != nil {
		return market.Sample{}, err
	}
	if sample.PriceChange, err = finiteFloat("priceChange", change); err != nil {
		return market.Sample{}, err
	}
	if sample.PriceChangePercent, err = finiteFloat("priceChangePercent", changePct); err != nil {
		return market.Sample{}, err
	}
	return sample, nil
}

func finiteFloat(name string, d decimal.Decimal) (float64, error) {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%s out of float64 range", name)
	}
	return f, nil
}

func (t *Ticker) fail(status int, retryable bool, err error) error {
	fe := &FetchError{Symbol: t.opts.Symbol, StatusCode: status, Retryable: retryable, Err: err}
	t.logger.Error().Err(err).Int("status", status).Bool("retry_budget_spent", retryable).Msg("ticker fetch failed")
	return fe
}

type tickerResponse struct {
	Symbol             string  `json:"symbol"`
	LastPrice          *string `json:"lastPrice"`
	PriceChange        *string `json:"priceChange"`
	PriceChangePercent *string `json:"priceChangePercent"`
}

type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func parseDecimalField(name string, raw *string) (decimal.Decimal, error) {
	if raw == nil {
		return decimal.Decimal{}, fmt.Errorf("missing field %s", name)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Msg != "" {
		return fmt.Errorf("binance api error (%d): %s (code %d)", status, apiErr.Msg, apiErr.Code)
	}
	if len(payload) > 0 {
		return fmt.Errorf("binance api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return errors.New("binance api error: " + http.StatusText(status))
}

var _ TickerFetcher = (*Ticker)(nil)
