package experiment

import (
	"fmt"
	"math"

	"montecarlo/errs"
	"montecarlo/random"
)

// Experiment is one stochastic trial. Execute must depend only on the draws
// it takes from rnd, so repeated calls are independent given independent draws.
type Experiment interface {
	Execute(rnd random.Source) (float64, error)
}

// Func adapts a plain function to Experiment.
type Func func(rnd random.Source) (float64, error)

func (f Func) Execute(rnd random.Source) (float64, error) {
	return f(rnd)
}

// ErrNonFinite is returned when a target function yields NaN or ±Inf.
var ErrNonFinite = fmt.Errorf("non-finite value: %w", errs.ErrExperimentFailure)

// Damped is the reference target e^(-x/8)·|sin(πx/2)|·√(6-x), defined on [0, 6].
func Damped(x float64) float64 {
	return math.Exp(-x/8) * math.Abs(math.Sin(math.Pi*x/2)) * math.Sqrt(6-x)
}

func evaluate(g func(float64) float64, x float64) (float64, error) {
	gx := g(x)
	if math.IsNaN(gx) || math.IsInf(gx, 0) {
		return 0, fmt.Errorf("g(%v) = %v: %w", x, gx, ErrNonFinite)
	}
	return gx, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errs.ErrInvalidArgument)
}
