package stats

import (
	"fmt"
	"math"

	"montecarlo/errs"
)

// Collector accumulates count, running mean and the sum of squared
// deviations from the mean (Welford). The zero value is an empty collector.
type Collector struct {
	n    int64
	mean float64
	m2   float64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Observe(x float64) {
	c.n++
	delta := x - c.mean
	c.mean += delta / float64(c.n)
	delta2 := x - c.mean
	c.m2 += delta * delta2
}

func (c *Collector) Count() int64 {
	return c.n
}

func (c *Collector) Mean() (float64, error) {
	if c.n == 0 {
		return 0, fmt.Errorf("mean of 0 observations: %w", errs.ErrInsufficientData)
	}
	return c.mean, nil
}

// Variance returns the sample variance m2/(n-1).
func (c *Collector) Variance() (float64, error) {
	if c.n < 2 {
		return 0, fmt.Errorf("variance of %d observations: %w", c.n, errs.ErrInsufficientData)
	}
	return c.m2 / float64(c.n-1), nil
}

func (c *Collector) StdDev() (float64, error) {
	v, err := c.Variance()
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// StandardError returns sqrt(variance/n).
func (c *Collector) StandardError() (float64, error) {
	v, err := c.Variance()
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v / float64(c.n)), nil
}

// HalfWidth returns the half-width of the two-sided normal confidence
// interval around the mean at the given level.
func (c *Collector) HalfWidth(level float64) (float64, error) {
	z, err := Z(level)
	if err != nil {
		return 0, err
	}
	se, err := c.StandardError()
	if err != nil {
		return 0, err
	}
	return z * se, nil
}

func (c *Collector) Interval(level float64) (ConfidenceInterval, error) {
	hw, err := c.HalfWidth(level)
	if err != nil {
		return ConfidenceInterval{}, err
	}
	return ConfidenceInterval{Level: level, Mean: c.mean, HalfWidth: hw}, nil
}

// Snapshot returns a copy that later observations do not affect.
func (c *Collector) Snapshot() Collector {
	return *c
}

// Merge folds other into c using the pairwise combination of Chan et al.,
// giving the same result as observing both sample sets in one collector.
func (c *Collector) Merge(other Collector) {
	if other.n == 0 {
		return
	}
	if c.n == 0 {
		*c = other
		return
	}
	n := c.n + other.n
	delta := other.mean - c.mean
	c.mean += delta * float64(other.n) / float64(n)
	c.m2 += other.m2 + delta*delta*float64(c.n)*float64(other.n)/float64(n)
	c.n = n
}

func (c *Collector) String() string {
	if c.n < 2 {
		return fmt.Sprintf("n=%d mean=%g", c.n, c.mean)
	}
	v, _ := c.Variance()
	return fmt.Sprintf("n=%d mean=%g var=%g", c.n, c.mean, v)
}
