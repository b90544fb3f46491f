package experiment

import (
	"fmt"
	"math"

	"montecarlo/errs"
	"montecarlo/random"
)

// ErrStepBudgetExceeded is returned when a walk is not absorbed within MaxSteps.
var ErrStepBudgetExceeded = fmt.Errorf("step budget exceeded: %w", errs.ErrExperimentFailure)

// GamblersRuin bets one unit at a time with win probability P, starting
// from Stake, until the stake reaches 0 or doubles. The outcome is 1 when it
// doubles and 0 when it is ruined.
type GamblersRuin struct {
	P        float64
	Stake    int
	MaxSteps int
}

func NewGamblersRuin(p float64, stake, maxSteps int) (*GamblersRuin, error) {
	if !(p > 0 && p < 1) {
		return nil, invalid("win probability %v outside (0, 1)", p)
	}
	if stake < 1 {
		return nil, invalid("stake %d must be at least 1", stake)
	}
	if maxSteps < 1 {
		return nil, invalid("step budget %d must be at least 1", maxSteps)
	}
	return &GamblersRuin{P: p, Stake: stake, MaxSteps: maxSteps}, nil
}

func (g *GamblersRuin) Execute(rnd random.Source) (float64, error) {
	amount := g.Stake
	target := 2 * g.Stake

	for steps := 0; amount > 0 && amount < target; steps++ {
		if steps == g.MaxSteps {
			return 0, fmt.Errorf("stake %d after %d steps: %w", amount, steps, ErrStepBudgetExceeded)
		}
		if rnd.Float64() < g.P {
			amount++
		} else {
			amount--
		}
	}

	if amount == target {
		return 1, nil
	}
	return 0, nil
}

// Exact is the closed-form probability of doubling the stake before ruin.
func (g *GamblersRuin) Exact() float64 {
	if g.P == 0.5 {
		return 0.5
	}
	r := (1 - g.P) / g.P
	return 1 / (1 + math.Pow(r, float64(g.Stake)))
}
