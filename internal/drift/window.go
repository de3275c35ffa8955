package drift

import (
	"time"

	"ticker-drift-alerts/internal/market"
)

// MonitorState is the mutable state of one monitoring run. It is owned by
// the loop and must not be shared across symbols or goroutines.
type MonitorState struct {
	reference    market.Sample
	hasReference bool

	ThresholdPercent float64
	WindowDuration   time.Duration
}

// NewMonitorState returns an empty state for a run.
func NewMonitorState(thresholdPct float64, window time.Duration) *MonitorState {
	return &MonitorState{ThresholdPercent: thresholdPct, WindowDuration: window}
}

// Evaluator returns an evaluator bound to the run's threshold.
func (s *MonitorState) Evaluator() Evaluator {
	return NewEvaluator(s.ThresholdPercent)
}

// Reference returns the sample that opened the current window.
func (s *MonitorState) Reference() (market.Sample, bool) {
	return s.reference, s.hasReference
}

// Decision is the outcome of observing one sample.
type Decision struct {
	Elapsed   bool
	Reference market.Sample
	Current   market.Sample
}

// WindowTracker decides when a comparison window has closed.
type WindowTracker struct {
	state *MonitorState
}

// NewWindowTracker binds a tracker to the loop's state.
func NewWindowTracker(state *MonitorState) *WindowTracker {
	return &WindowTracker{state: state}
}

// Observe records sample. The first sample of a run only opens a window.
// Once at least WindowDuration has passed since the reference, Observe
// returns an elapsed decision and the triggering sample becomes the new
// reference, so boundaries drift by whatever the last window overshot.
func (t *WindowTracker) Observe(sample market.Sample) Decision {
	if !t.state.hasReference {
		t.state.reference = sample
		t.state.hasReference = true
		return Decision{Current: sample}
	}

	ref := t.state.reference
	if sample.Timestamp.Sub(ref.Timestamp) < t.state.WindowDuration {
		return Decision{Reference: ref, Current: sample}
	}

	t.state.reference = sample
	return Decision{Elapsed: true, Reference: ref, Current: sample}
}
