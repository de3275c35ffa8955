package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"ticker-drift-alerts/internal/drift"
	"ticker-drift-alerts/internal/market"
)

// SimulateOptions describe a synthetic comparison window.
type SimulateOptions struct {
	Symbol       string
	Reference    decimal.Decimal
	Current      decimal.Decimal
	ThresholdPct *float64
}

// SimulateAlert 用给定的参考价与当前价模拟一次窗口结束时的评估与输出，不访问网络。
func (a *App) SimulateAlert(ctx context.Context, opts SimulateOptions) (drift.Verdict, error) {
	if !opts.Reference.IsPositive() || !opts.Current.IsPositive() {
		return drift.Verdict{}, errors.New("reference and current prices must be positive")
	}
	if err := ctx.Err(); err != nil {
		return drift.Verdict{}, err
	}

	threshold := a.Config.Monitor.ThresholdPct
	if opts.ThresholdPct != nil {
		threshold = *opts.ThresholdPct
	}

	symbol := a.resolveSymbol(opts.Symbol)
	now := time.Now()
	reference := market.Sample{Symbol: symbol, Price: opts.Reference.InexactFloat64(), Timestamp: now.Add(-a.Config.Monitor.Window)}
	current := market.Sample{Symbol: symbol, Price: opts.Current.InexactFloat64(), Timestamp: now}

	verdict, err := drift.NewEvaluator(threshold).Evaluate(reference, current)
	if err != nil {
		return drift.Verdict{}, err
	}

	a.newReporter().ReportAlert(verdict, current)
	return verdict, nil
}

func formatFloat(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
