package stats

import (
	"fmt"
	"math"

	"montecarlo/errs"
)

type ConfidenceInterval struct {
	Level     float64
	Mean      float64
	HalfWidth float64
}

func (ci ConfidenceInterval) Lower() float64 {
	return ci.Mean - ci.HalfWidth
}

func (ci ConfidenceInterval) Upper() float64 {
	return ci.Mean + ci.HalfWidth
}

func (ci ConfidenceInterval) Contains(x float64) bool {
	return ci.Lower() <= x && x <= ci.Upper()
}

// Z returns the two-sided standard normal quantile for a confidence level,
// e.g. Z(0.95) ≈ 1.95996.
func Z(level float64) (float64, error) {
	if !(level > 0 && level < 1) {
		return 0, fmt.Errorf("confidence level %v outside (0, 1): %w", level, errs.ErrInvalidArgument)
	}
	return math.Sqrt2 * math.Erfinv(level), nil
}
