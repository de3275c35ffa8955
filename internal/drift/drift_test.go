package drift

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticker-drift-alerts/internal/market"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleAt(price float64, offset time.Duration) market.Sample {
	return market.Sample{Symbol: "ETHUSDT", Price: price, Timestamp: epoch.Add(offset)}
}

func TestEvaluateScenarios(t *testing.T) {
	ev := NewEvaluator(1.0)

	up, err := ev.Evaluate(sampleAt(2000, 0), sampleAt(2021, time.Hour))
	require.NoError(t, err)
	assert.True(t, up.Triggered)
	assert.Equal(t, DirectionIncreased, up.Direction)
	assert.InDelta(t, 1.05, up.AbsPercent, 1e-9)

	flat, err := ev.Evaluate(sampleAt(2000, 0), sampleAt(2015, time.Hour))
	require.NoError(t, err)
	assert.False(t, flat.Triggered)
	assert.Empty(t, flat.Direction)
	assert.InDelta(t, 0.75, flat.PercentChange, 1e-9)

	down, err := ev.Evaluate(sampleAt(2000, 0), sampleAt(1970, time.Hour))
	require.NoError(t, err)
	assert.True(t, down.Triggered)
	assert.Equal(t, DirectionDecreased, down.Direction)
	assert.InDelta(t, -1.5, down.PercentChange, 1e-9)
	assert.InDelta(t, 1.5, down.AbsPercent, 1e-9)
}

func TestEvaluateThresholdIsStrict(t *testing.T) {
	ev := NewEvaluator(1.0)

	for _, current := range []float64{2020, 1980} {
		v, err := ev.Evaluate(sampleAt(2000, 0), sampleAt(current, time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1.0, v.AbsPercent)
		assert.False(t, v.Triggered, "恰好等于阈值不应告警: %v", current)
	}

	zero := NewEvaluator(0)
	v, err := zero.Evaluate(sampleAt(2000, 0), sampleAt(2000, time.Minute))
	require.NoError(t, err)
	assert.False(t, v.Triggered, "no change never triggers")
}

func TestEvaluateMatchesFormula(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		threshold := rng.Float64() * 5
		ref := 1 + rng.Float64()*5000
		cur := ref * (0.9 + rng.Float64()*0.2)

		ev := NewEvaluator(threshold)
		v, err := ev.Evaluate(sampleAt(ref, 0), sampleAt(cur, time.Second))
		require.NoError(t, err)

		pct := 100 * (cur - ref) / ref
		assert.Equal(t, math.Abs(pct) > threshold, v.Triggered)
		if v.Triggered {
			want := DirectionIncreased
			if cur < ref {
				want = DirectionDecreased
			}
			assert.Equal(t, want, v.Direction)
		}

		again, err := ev.Evaluate(sampleAt(ref, 0), sampleAt(cur, time.Second))
		require.NoError(t, err)
		assert.Equal(t, v, again, "evaluate must be idempotent")
	}
}

func TestEvaluateInvalidReference(t *testing.T) {
	ev := NewEvaluator(1.0)
	for _, price := range []float64{0, -1, math.NaN()} {
		_, err := ev.Evaluate(sampleAt(price, 0), sampleAt(2000, time.Hour))
		assert.True(t, errors.Is(err, ErrInvalidReference))
	}
}

func TestWindowTrackerFirstSampleContinues(t *testing.T) {
	for _, window := range []time.Duration{0, time.Nanosecond, time.Hour} {
		state := NewMonitorState(1, window)
		tracker := NewWindowTracker(state)

		first := sampleAt(2000, 0)
		d := tracker.Observe(first)
		assert.False(t, d.Elapsed)

		ref, ok := state.Reference()
		require.True(t, ok)
		assert.Equal(t, first, ref)
	}
}

func TestWindowTrackerNeverElapsesEarly(t *testing.T) {
	state := NewMonitorState(1, 10*time.Second)
	tracker := NewWindowTracker(state)

	tracker.Observe(sampleAt(2000, 0))
	for offset := time.Second; offset < 10*time.Second; offset += time.Second {
		d := tracker.Observe(sampleAt(2000, offset))
		assert.False(t, d.Elapsed, "offset %s", offset)
	}

	ref, _ := state.Reference()
	assert.Equal(t, epoch, ref.Timestamp, "reference unchanged while window open")
}

func TestWindowTrackerDriftingBoundaries(t *testing.T) {
	state := NewMonitorState(1, 5*time.Second)
	tracker := NewWindowTracker(state)

	// 11 samples every 500ms; sample 11 lands exactly at +5s.
	var samples []market.Sample
	for i := 0; i < 11; i++ {
		samples = append(samples, sampleAt(2000+float64(i), time.Duration(i)*500*time.Millisecond))
	}

	for i, s := range samples[:10] {
		assert.False(t, tracker.Observe(s).Elapsed, "sample %d", i+1)
	}

	d := tracker.Observe(samples[10])
	require.True(t, d.Elapsed)
	assert.Equal(t, samples[0], d.Reference)
	assert.Equal(t, samples[10], d.Current)

	ref, _ := state.Reference()
	assert.Equal(t, samples[10], ref, "triggering sample opens the next window")

	// An overshooting sample restarts from its own timestamp.
	late := sampleAt(3000, 10*time.Second+700*time.Millisecond)
	d = tracker.Observe(late)
	require.True(t, d.Elapsed)
	assert.Equal(t, samples[10], d.Reference)

	assert.False(t, tracker.Observe(sampleAt(3000, 15*time.Second+600*time.Millisecond)).Elapsed)
	assert.True(t, tracker.Observe(sampleAt(3000, 15*time.Second+700*time.Millisecond)).Elapsed)
}

func TestMonitorStateEvaluatorUsesRunThreshold(t *testing.T) {
	state := NewMonitorState(2, time.Minute)
	ev := state.Evaluator()

	v, err := ev.Evaluate(sampleAt(2000, 0), sampleAt(2030, time.Minute))
	require.NoError(t, err)
	assert.False(t, v.Triggered, "1.5%% 低于 2%% 阈值")
	assert.Equal(t, 2.0, v.ThresholdPct)

	v, err = ev.Evaluate(sampleAt(2000, 0), sampleAt(2050, time.Minute))
	require.NoError(t, err)
	assert.True(t, v.Triggered)
}
