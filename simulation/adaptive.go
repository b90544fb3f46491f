package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"montecarlo/errs"
	"montecarlo/experiment"
	"montecarlo/experiments/metrics"
	"montecarlo/meta"
	"montecarlo/random"
	"montecarlo/stats"
)

type Option func(a *Adaptive)

// Adaptive runs trials in growing batches until the confidence interval
// half-width drops to the target or the trial cap is spent.
type Adaptive struct {
	level         float64
	target        float64
	initialBatch  int64
	followUpBatch int64
	growth        float64
	trialCap      int64
	metrics       metrics.Collector
}

func WithInitialBatch(size int64) Option {
	return func(a *Adaptive) {
		a.initialBatch = size
	}
}

// WithFollowUpBatch sets the size of the batch run after the initial one.
// Later batches scale it by the growth factor.
func WithFollowUpBatch(size int64) Option {
	return func(a *Adaptive) {
		a.followUpBatch = size
	}
}

func WithBatchGrowth(growth float64) Option {
	return func(a *Adaptive) {
		a.growth = growth
	}
}

func WithTrialCap(trials int64) Option {
	return func(a *Adaptive) {
		a.trialCap = trials
	}
}

func WithMetrics() Option {
	return func(a *Adaptive) {
		a.metrics = metrics.NewCollector()
	}
}

func NewAdaptive(level, target float64, options ...Option) (*Adaptive, error) {
	a := &Adaptive{ // Default values
		level:        level,
		target:       target,
		initialBatch: meta.InitialBatch,
		growth:       meta.BatchGrowth,
		trialCap:     meta.TrialCap,
		metrics:      metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(a)
	}
	if a.followUpBatch == 0 {
		a.followUpBatch = a.initialBatch
	}

	if _, err := stats.Z(a.level); err != nil {
		return nil, err
	}
	if !(a.target > 0) || math.IsInf(a.target, 0) {
		return nil, fmt.Errorf("target half-width %v must be positive: %w", a.target, errs.ErrInvalidArgument)
	}
	if a.initialBatch <= 0 || a.followUpBatch <= 0 {
		return nil, fmt.Errorf("batch sizes %d, %d must be positive: %w", a.initialBatch, a.followUpBatch, errs.ErrInvalidArgument)
	}
	if !(a.growth >= 1) || math.IsInf(a.growth, 0) {
		return nil, fmt.Errorf("batch growth %v must be at least 1: %w", a.growth, errs.ErrInvalidArgument)
	}
	if a.trialCap <= 0 {
		return nil, fmt.Errorf("trial cap %d must be positive: %w", a.trialCap, errs.ErrInvalidArgument)
	}
	return a, nil
}

type state int

const (
	sampling state = iota
	precisionCheck
	stopped
)

// RunUntilPrecision feeds trials into c until its half-width at the
// configured level is at most the target. Observations already in c count
// towards the precision but not towards the trial cap. The check only runs
// once c holds at least two observations.
func (a *Adaptive) RunUntilPrecision(exp experiment.Experiment, rnd random.Source, c *stats.Collector) (Result, error) {
	start := time.Now()
	a.metrics.Start("adaptive")

	var (
		trials  int64
		batches int
		reason  StopReason
		last    int64
		next    = a.initialBatch
		grown   = float64(a.followUpBatch)
	)

	for s := sampling; s != stopped; {
		switch s {
		case sampling:
			size := min(next, a.trialCap-trials)
			done, err := runBatch(exp, size, rnd, c)
			trials += done
			if err != nil {
				log.Error().Err(err).Msgf("abandoning batch %d after %d trials", batches+1, trials)
				return a.result(start, trials, batches, c, Failed), err
			}
			batches++
			last = size
			if batches == 1 {
				next = a.followUpBatch
			} else {
				grown *= a.growth
				next = batchSize(grown)
			}
			s = precisionCheck

		case precisionCheck:
			hw := math.Inf(1)
			if c.Count() >= 2 {
				hw, _ = c.HalfWidth(a.level)
			}
			mean, _ := c.Mean()
			a.metrics.AddBatch(last, trials, mean, hw)
			log.Debug().Msgf("batch %d: trials=%d mean=%g half-width=%g target=%g", batches, trials, mean, hw, a.target)

			switch {
			case hw <= a.target:
				reason = Converged
				s = stopped
			case trials >= a.trialCap:
				reason = CapReached
				log.Warn().Msgf("trial cap %d reached with half-width %g above target %g", a.trialCap, hw, a.target)
				s = stopped
			default:
				s = sampling
			}
		}
	}

	return a.result(start, trials, batches, c, reason), nil
}

func (a *Adaptive) result(start time.Time, trials int64, batches int, c *stats.Collector, reason StopReason) Result {
	metric, batch := a.metrics.Complete(trials, reason == Converged)
	return Result{
		Trials:  trials,
		Batches: batches,
		Stats:   c.Snapshot(),
		Elapsed: time.Since(start),
		Reason:  reason,
		Metric:  metric,
		Batch:   batch,
	}
}

func batchSize(grown float64) int64 {
	if grown >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Ceil(grown))
}
