package simulation

import (
	"errors"
	"fmt"
	"math"
	"time"

	"montecarlo/errs"
	"montecarlo/experiment"
	"montecarlo/experiments/metrics"
	"montecarlo/random"
	"montecarlo/stats"
)

// RunFixed executes exp exactly trials times, feeding every outcome to c.
// If a trial fails the run stops there; outcomes already observed stay in c.
func RunFixed(exp experiment.Experiment, trials int64, rnd random.Source, c *stats.Collector) (Result, error) {
	if trials < 0 {
		return Result{}, fmt.Errorf("trial count %d: %w", trials, errs.ErrInvalidArgument)
	}

	start := time.Now()
	done, err := runBatch(exp, trials, rnd, c)
	end := time.Now()

	reason := Fixed
	if err != nil {
		reason = Failed
	}
	result := Result{
		Trials:  done,
		Batches: 1,
		Stats:   c.Snapshot(),
		Elapsed: end.Sub(start),
		Reason:  reason,
		Metric: metrics.RunMetric{
			Mode:      "fixed",
			Trials:    done,
			Batches:   1,
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
		},
	}
	return result, err
}

// runBatch returns the number of trials committed to c.
func runBatch(exp experiment.Experiment, size int64, rnd random.Source, c *stats.Collector) (int64, error) {
	for i := int64(0); i < size; i++ {
		outcome, err := exp.Execute(rnd)
		if err != nil {
			if !errors.Is(err, errs.ErrExperimentFailure) {
				err = fmt.Errorf("%w: %w", errs.ErrExperimentFailure, err)
			}
			return i, fmt.Errorf("trial %d of %d: %w", i+1, size, err)
		}
		if math.IsNaN(outcome) || math.IsInf(outcome, 0) {
			return i, fmt.Errorf("trial %d of %d returned %v: %w", i+1, size, outcome, experiment.ErrNonFinite)
		}
		c.Observe(outcome)
	}
	return size, nil
}
