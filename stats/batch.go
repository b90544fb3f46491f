package stats

import (
	"fmt"

	"montecarlo/errs"
)

// Batch formulas over a stored sample. They exist to compare against the
// collector: NaiveVariance loses precision when the mean dwarfs the spread.

func TwoPassVariance(xs []float64) (mean float64, variance float64, err error) {
	if len(xs) < 2 {
		return 0, 0, fmt.Errorf("variance of %d values: %w", len(xs), errs.ErrInsufficientData)
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))

	acc := 0.0
	for _, x := range xs {
		acc += (x - mean) * (x - mean)
	}
	return mean, acc / float64(len(xs)-1), nil
}

// NaiveVariance uses the one-pass sum and sum-of-squares formula.
func NaiveVariance(xs []float64) (float64, error) {
	if len(xs) < 2 {
		return 0, fmt.Errorf("variance of %d values: %w", len(xs), errs.ErrInsufficientData)
	}
	sum, sumsq := 0.0, 0.0
	for _, x := range xs {
		sum += x
		sumsq += x * x
	}
	n := float64(len(xs))
	mean := sum / n
	return (sumsq - n*mean*mean) / (n - 1), nil
}

func WelfordVariance(xs []float64) (float64, error) {
	var c Collector
	for _, x := range xs {
		c.Observe(x)
	}
	return c.Variance()
}
