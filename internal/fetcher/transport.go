package fetcher

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// RetryOptions parameterise the retrying transport.
type RetryOptions struct {
	// Attempts counts the first request, so 5 means one try plus four retries.
	Attempts    int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	// OnRetry is invoked before every attempt after the first.
	OnRetry func(attempt int)
}

var retryStatuses = map[int]struct{}{
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

func newRetryClient(opts RetryOptions, timeout time.Duration, logger zerolog.Logger) *retryablehttp.Client {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = 5
	}

	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = timeout
	client.RetryMax = attempts - 1
	client.RetryWaitMin = opts.BackoffBase
	client.RetryWaitMax = opts.BackoffMax
	if client.RetryWaitMax <= 0 {
		client.RetryWaitMax = 5 * time.Second
	}
	client.CheckRetry = checkRetry
	client.Backoff = exponentialBackoff
	client.Logger = leveledLogger{logger: logger}
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt == 0 {
			return
		}
		logger.Warn().Int("attempt", attempt+1).Str("url", req.URL.String()).Msg("retrying ticker request")
		if opts.OnRetry != nil {
			opts.OnRetry(attempt)
		}
	}
	return client
}

// checkRetry retries connection errors and 500/502/503/504 only. Everything
// else, including 429 and other 4xx, is returned to the caller untouched.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	_, retry := retryStatuses[resp.StatusCode]
	return retry, nil
}

// exponentialBackoff waits base*2^n before retry n, capped at ceiling.
func exponentialBackoff(base, ceiling time.Duration, attemptNum int, _ *http.Response) time.Duration {
	wait := float64(base) * math.Pow(2, float64(attemptNum))
	if wait > float64(ceiling) || math.IsInf(wait, 1) {
		return ceiling
	}
	return time.Duration(wait)
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Trace().Fields(keysAndValues).Msg(msg)
}

var _ retryablehttp.LeveledLogger = leveledLogger{}
