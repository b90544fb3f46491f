package simulation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"montecarlo/errs"
	"montecarlo/experiment"
	"montecarlo/random"
	"montecarlo/stats"
)

// counting returns draws unchanged and counts its calls.
type counting struct {
	calls int
}

func (c *counting) Execute(rnd random.Source) (float64, error) {
	c.calls++
	return rnd.Float64(), nil
}

func failingAt(call int) experiment.Experiment {
	n := 0
	return experiment.Func(func(rnd random.Source) (float64, error) {
		n++
		if n == call {
			return 0, errors.New("boom")
		}
		return float64(n), nil
	})
}

// nanAt returns NaN on the given call with a nil error.
func nanAt(call int) experiment.Experiment {
	n := 0
	return experiment.Func(func(rnd random.Source) (float64, error) {
		n++
		if n == call {
			return math.NaN(), nil
		}
		return float64(n), nil
	})
}

func constant(v float64) experiment.Experiment {
	return experiment.Func(func(rnd random.Source) (float64, error) {
		rnd.Float64()
		return v, nil
	})
}

func TestRunFixed(t *testing.T) {
	t.Run("running the exact trial count", func(t *testing.T) {
		exp := &counting{}
		c := stats.NewCollector()

		got, err := RunFixed(exp, 1000, random.New(1), c)

		require.NoError(t, err)
		require.Equal(t, 1000, exp.calls, "Experiment should run exactly trialCount times")
		require.Equal(t, int64(1000), c.Count())
		require.Equal(t, int64(1000), got.Trials)
		require.Equal(t, Fixed, got.Reason)
		require.Equal(t, c.Snapshot(), got.Stats)
		require.Equal(t, "fixed", got.Metric.Mode)
		require.Equal(t, int64(1000), got.Metric.Trials)
	})

	t.Run("zero trials leaves the collector empty", func(t *testing.T) {
		c := stats.NewCollector()

		got, err := RunFixed(&counting{}, 0, random.New(1), c)

		require.NoError(t, err)
		require.Equal(t, int64(0), got.Trials)
		require.Equal(t, int64(0), c.Count())
	})

	t.Run("rejects a negative trial count", func(t *testing.T) {
		_, err := RunFixed(&counting{}, -1, random.New(1), stats.NewCollector())
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
	})

	t.Run("keeps observations committed before a failure", func(t *testing.T) {
		c := stats.NewCollector()

		got, err := RunFixed(failingAt(4), 10, random.New(1), c)

		require.ErrorIs(t, err, errs.ErrExperimentFailure, "Failures should be reported as experiment failures")
		require.Equal(t, int64(3), c.Count(), "Trials before the failure should stay observed")
		require.Equal(t, int64(3), got.Trials)
		require.Equal(t, Failed, got.Reason)
		mean, _ := c.Mean()
		require.Equal(t, 2.0, mean)
	})

	t.Run("rejecting non-finite outcomes", func(t *testing.T) {
		c := stats.NewCollector()

		got, err := RunFixed(nanAt(5), 10, random.New(1), c)

		require.ErrorIs(t, err, experiment.ErrNonFinite)
		require.ErrorIs(t, err, errs.ErrExperimentFailure)
		require.Equal(t, Failed, got.Reason)
		require.Equal(t, int64(4), c.Count(), "Only finite outcomes should be observed")
		mean, _ := c.Mean()
		require.Equal(t, 2.5, mean, "Mean should not be poisoned by NaN")
	})

	t.Run("deterministic under a fixed seed", func(t *testing.T) {
		exp, err := experiment.NewAcceptReject(0, 6, 2, experiment.Damped)
		require.NoError(t, err)

		run := func(seed uint64) (float64, float64) {
			c := stats.NewCollector()
			_, err := RunFixed(exp, 1_000_000, random.New(seed), c)
			require.NoError(t, err)
			mean, err := c.Mean()
			require.NoError(t, err)
			hw, err := c.HalfWidth(0.95)
			require.NoError(t, err)
			return mean, hw
		}

		mean1, hw1 := run(0x1350185)
		mean2, hw2 := run(0x1350185)
		mean3, hw3 := run(0x1350186)

		require.Equal(t, mean1, mean2, "Same seed should reproduce the mean bit for bit")
		require.Equal(t, hw1, hw2, "Same seed should reproduce the half-width bit for bit")
		require.NotEqual(t, mean1, mean3, "Different seeds should give different estimates")
		require.InDelta(t, mean1, mean3, 3*math.Sqrt(hw1*hw1+hw3*hw3), "Estimates should agree within statistical tolerance")
	})

	t.Run("gambler's ruin on a roulette wheel", func(t *testing.T) {
		exp, err := experiment.NewGamblersRuin(18.0/37.0, 5, 1_000_000)
		require.NoError(t, err)
		c := stats.NewCollector()

		_, err = RunFixed(exp, 100_000, random.New(0x1350185), c)
		require.NoError(t, err)

		mean, err := c.Mean()
		require.NoError(t, err)
		require.Greater(t, mean, 0.0)
		require.Less(t, mean, 0.5, "Disadvantaged player should double less than half the time")
		// Standard error is about 0.0016
		require.InDelta(t, exp.Exact(), mean, 0.01, "Estimate should match the closed form")
	})
}

func TestNewAdaptive(t *testing.T) {
	cases := []struct {
		name    string
		level   float64
		target  float64
		options []Option
	}{
		{"level of zero", 0, 0.1, nil},
		{"level of one", 1, 0.1, nil},
		{"non-positive target", 0.95, 0, nil},
		{"non-positive initial batch", 0.95, 0.1, []Option{WithInitialBatch(0)}},
		{"negative follow-up batch", 0.95, 0.1, []Option{WithFollowUpBatch(-5)}},
		{"shrinking batches", 0.95, 0.1, []Option{WithBatchGrowth(0.5)}},
		{"non-positive trial cap", 0.95, 0.1, []Option{WithTrialCap(0)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAdaptive(tc.level, tc.target, tc.options...)
			require.ErrorIs(t, err, errs.ErrInvalidArgument)
		})
	}

	t.Run("follow-up batch defaults to the initial batch", func(t *testing.T) {
		a, err := NewAdaptive(0.95, 0.1, WithInitialBatch(50))
		require.NoError(t, err)
		require.Equal(t, int64(50), a.followUpBatch)
	})
}

func TestRunUntilPrecision(t *testing.T) {
	t.Run("converging below the target", func(t *testing.T) {
		a, err := NewAdaptive(0.95, 0.01,
			WithInitialBatch(100), WithBatchGrowth(2), WithTrialCap(1_000_000), WithMetrics())
		require.NoError(t, err)
		c := stats.NewCollector()

		got, err := a.RunUntilPrecision(&counting{}, random.New(3), c)

		require.NoError(t, err)
		require.Equal(t, Converged, got.Reason)
		hw, err := c.HalfWidth(0.95)
		require.NoError(t, err)
		require.LessOrEqual(t, hw, 0.01, "Half-width should meet the target on convergence")
		// Uniform draws need about 3200 trials for a 0.01 half-width
		require.Less(t, got.Trials, int64(20_000))
		require.Equal(t, got.Trials, c.Count())
		require.Len(t, got.Batch, got.Batches, "Every batch should be recorded")
		require.True(t, got.Metric.Converged)
	})

	t.Run("batch schedule", func(t *testing.T) {
		a, err := NewAdaptive(0.95, 1e-9,
			WithInitialBatch(10), WithFollowUpBatch(5), WithBatchGrowth(2), WithTrialCap(40), WithMetrics())
		require.NoError(t, err)

		got, err := a.RunUntilPrecision(&counting{}, random.New(3), stats.NewCollector())

		require.NoError(t, err)
		sizes := []int64{}
		for _, b := range got.Batch {
			sizes = append(sizes, b.Size)
		}
		// 10, then 5, 10 and 20 truncated to the remaining 15
		require.Equal(t, []int64{10, 5, 10, 15}, sizes)
		require.Equal(t, int64(40), got.Batch[3].Trials)
		require.Equal(t, CapReached, got.Reason)
	})

	t.Run("stopping at the trial cap", func(t *testing.T) {
		a, err := NewAdaptive(0.95, 1e-9, WithInitialBatch(64), WithBatchGrowth(1.5), WithTrialCap(1000))
		require.NoError(t, err)
		c := stats.NewCollector()

		got, err := a.RunUntilPrecision(&counting{}, random.New(3), c)

		require.NoError(t, err)
		require.Equal(t, CapReached, got.Reason, "Cap exhaustion should be distinguishable from convergence")
		require.Equal(t, int64(1000), got.Trials, "Should run up to but not beyond the cap")
		require.Equal(t, int64(1000), c.Count())
	})

	t.Run("waiting for two observations before checking", func(t *testing.T) {
		a, err := NewAdaptive(0.95, 1, WithInitialBatch(1), WithBatchGrowth(1), WithTrialCap(10))
		require.NoError(t, err)

		got, err := a.RunUntilPrecision(constant(3), random.New(3), stats.NewCollector())

		require.NoError(t, err)
		require.Equal(t, Converged, got.Reason)
		require.Equal(t, int64(2), got.Trials, "A single observation has no half-width")
	})

	t.Run("continuing a non-empty collector", func(t *testing.T) {
		a, err := NewAdaptive(0.95, 0.5, WithInitialBatch(5), WithTrialCap(100))
		require.NoError(t, err)
		c := stats.NewCollector()
		for i := 0; i < 10; i++ {
			c.Observe(7)
		}

		got, err := a.RunUntilPrecision(constant(7), random.New(3), c)

		require.NoError(t, err)
		require.Equal(t, int64(5), got.Trials, "Only this run's trials should be reported")
		require.Equal(t, int64(15), c.Count())
	})

	t.Run("abandoning a batch on failure", func(t *testing.T) {
		a, err := NewAdaptive(0.95, 1e-9, WithInitialBatch(5), WithTrialCap(100))
		require.NoError(t, err)
		c := stats.NewCollector()

		got, err := a.RunUntilPrecision(failingAt(8), random.New(3), c)

		require.ErrorIs(t, err, errs.ErrExperimentFailure)
		require.Equal(t, Failed, got.Reason)
		require.Equal(t, int64(7), c.Count(), "Committed observations should remain")
		require.Equal(t, int64(7), got.Trials)
		require.Equal(t, 1, got.Batches, "Only the completed batch should count")
	})

	t.Run("failing on a non-finite outcome instead of spending the cap", func(t *testing.T) {
		a, err := NewAdaptive(0.95, 0.01, WithInitialBatch(100), WithTrialCap(50_000))
		require.NoError(t, err)
		c := stats.NewCollector()

		got, err := a.RunUntilPrecision(nanAt(150), random.New(3), c)

		require.ErrorIs(t, err, errs.ErrExperimentFailure)
		require.Equal(t, Failed, got.Reason)
		require.Equal(t, int64(149), got.Trials)
		require.Equal(t, int64(149), c.Count(), "Committed observations should remain")
		mean, err := c.Mean()
		require.NoError(t, err)
		require.False(t, math.IsNaN(mean))
	})

	t.Run("gambler's ruin to a target precision", func(t *testing.T) {
		exp, err := experiment.NewGamblersRuin(18.0/37.0, 5, 1_000_000)
		require.NoError(t, err)
		a, err := NewAdaptive(0.95, 0.005, WithInitialBatch(10_000), WithFollowUpBatch(5_000), WithTrialCap(1_000_000))
		require.NoError(t, err)
		c := stats.NewCollector()

		got, err := a.RunUntilPrecision(exp, random.New(0x1350185), c)

		require.NoError(t, err)
		require.Equal(t, Converged, got.Reason)
		ci, err := c.Interval(0.95)
		require.NoError(t, err)
		require.LessOrEqual(t, ci.HalfWidth, 0.005)
		require.InDelta(t, exp.Exact(), ci.Mean, 0.02)
	})
}

func TestStopReason(t *testing.T) {
	var zero StopReason
	require.Equal(t, Unknown, zero, "Zero value should not claim a completed run")
	require.Equal(t, "unknown", zero.String())
	require.Equal(t, "fixed", Fixed.String())
	require.Equal(t, "converged", Converged.String())
	require.Equal(t, "cap_reached", CapReached.String())
	require.Equal(t, "failed", Failed.String())
	require.Equal(t, "unknown", StopReason(42).String())
}
