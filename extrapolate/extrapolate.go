package extrapolate

import (
	"fmt"
	"math"
	"time"

	"montecarlo/errs"
	"montecarlo/simulation"
)

// Projection estimates the cost of reaching a target half-width, assuming
// the half-width shrinks as 1/√n and every trial costs the same time.
type Projection struct {
	TotalTrials      float64
	AdditionalTrials int64
	AdditionalTime   time.Duration
}

func Estimate(currentHalfWidth, targetHalfWidth float64, trials int64, elapsed time.Duration) (Projection, error) {
	if !(targetHalfWidth > 0) {
		return Projection{}, fmt.Errorf("target half-width %v must be positive: %w", targetHalfWidth, errs.ErrInvalidArgument)
	}
	if !(currentHalfWidth >= 0) || math.IsInf(currentHalfWidth, 0) {
		return Projection{}, fmt.Errorf("current half-width %v must be finite and non-negative: %w", currentHalfWidth, errs.ErrInvalidArgument)
	}
	if trials <= 0 {
		return Projection{}, fmt.Errorf("trial count %d must be positive: %w", trials, errs.ErrInvalidArgument)
	}
	if elapsed < 0 {
		return Projection{}, fmt.Errorf("elapsed time %v is negative: %w", elapsed, errs.ErrInvalidArgument)
	}
	return project(currentHalfWidth, targetHalfWidth, trials, float64(elapsed)/float64(trials)), nil
}

// project scales trials by the squared half-width ratio. perTrial is the
// cost of one trial in nanoseconds.
func project(currentHalfWidth, targetHalfWidth float64, trials int64, perTrial float64) Projection {
	ratio := currentHalfWidth / targetHalfWidth
	total := float64(trials) * ratio * ratio
	additional := math.Max(0, math.Ceil(total-float64(trials)))

	p := Projection{TotalTrials: total}
	if additional >= math.MaxInt64 {
		p.AdditionalTrials = math.MaxInt64
	} else {
		p.AdditionalTrials = int64(additional)
	}
	// n_extra / n can be far larger than any representable duration
	extra := perTrial * additional
	if extra >= math.MaxInt64 {
		p.AdditionalTime = time.Duration(math.MaxInt64)
	} else {
		p.AdditionalTime = time.Duration(extra)
	}
	return p
}

// FromResult projects a completed run towards target at the given level.
// Precision scales with every observation in the collector, while the cost
// of a trial comes from the trials this run timed.
func FromResult(result simulation.Result, level, target float64) (Projection, error) {
	current, err := result.Stats.HalfWidth(level)
	if err != nil {
		return Projection{}, err
	}
	if result.Trials <= 0 {
		return Projection{}, fmt.Errorf("run timed %d trials: %w", result.Trials, errs.ErrInvalidArgument)
	}
	if _, err := Estimate(current, target, result.Stats.Count(), result.Elapsed); err != nil {
		return Projection{}, err
	}
	return project(current, target, result.Stats.Count(), float64(result.Elapsed)/float64(result.Trials)), nil
}

func (p Projection) String() string {
	return fmt.Sprintf("total trials %.0f, additional trials %d, additional time %v", p.TotalTrials, p.AdditionalTrials, p.AdditionalTime)
}
