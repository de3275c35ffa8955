package drift

import (
	"errors"
	"fmt"
	"math"

	"ticker-drift-alerts/internal/market"
)

// ErrInvalidReference means a window was opened by a non-positive price,
// which only happens when upstream data is corrupt.
var ErrInvalidReference = errors.New("drift: reference price must be positive")

const (
	DirectionIncreased = "increased"
	DirectionDecreased = "decreased"
)

// Verdict is the result of comparing the two ends of a window.
type Verdict struct {
	Triggered     bool
	Direction     string
	PercentChange float64
	AbsPercent    float64
	ThresholdPct  float64
	Reference     market.Sample
	Current       market.Sample
}

// Evaluator compares window endpoints against a fixed threshold.
type Evaluator struct {
	thresholdPct float64
}

// NewEvaluator returns an evaluator for thresholdPct.
func NewEvaluator(thresholdPct float64) Evaluator {
	return Evaluator{thresholdPct: thresholdPct}
}

// Evaluate computes the percent change from reference to current. The
// verdict is triggered only when the absolute change is strictly above the
// threshold.
func (e Evaluator) Evaluate(reference, current market.Sample) (Verdict, error) {
	if reference.Price <= 0 || math.IsNaN(reference.Price) {
		return Verdict{}, fmt.Errorf("%w: got %v", ErrInvalidReference, reference.Price)
	}

	pct := PercentChange(reference.Price, current.Price)
	abs := math.Abs(pct)

	v := Verdict{
		PercentChange: pct,
		AbsPercent:    abs,
		ThresholdPct:  e.thresholdPct,
		Reference:     reference,
		Current:       current,
	}
	if abs > e.thresholdPct {
		v.Triggered = true
		if pct > 0 {
			v.Direction = DirectionIncreased
		} else {
			v.Direction = DirectionDecreased
		}
	}
	return v, nil
}

// PercentChange returns 100*(current-reference)/reference.
func PercentChange(reference, current float64) float64 {
	return 100 * (current - reference) / reference
}
