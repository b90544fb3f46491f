package experiment

import "montecarlo/random"

// AcceptReject is hit-or-miss integration: a point drawn uniformly in
// [Lower, XLimit] × [0, YLimit] scores the rectangle's area when it falls
// under G and 0 otherwise, so the mean estimates the area under G.
type AcceptReject struct {
	Lower  float64
	XLimit float64
	YLimit float64
	G      func(float64) float64
}

func NewAcceptReject(lower, xLimit, yLimit float64, g func(float64) float64) (*AcceptReject, error) {
	if !(xLimit > lower) {
		return nil, invalid("x limit %v must exceed lower bound %v", xLimit, lower)
	}
	if !(yLimit > 0) {
		return nil, invalid("y limit %v must be positive", yLimit)
	}
	if g == nil {
		return nil, invalid("target function is nil")
	}
	return &AcceptReject{Lower: lower, XLimit: xLimit, YLimit: yLimit, G: g}, nil
}

func (a *AcceptReject) Area() float64 {
	return a.YLimit * (a.XLimit - a.Lower)
}

func (a *AcceptReject) Execute(rnd random.Source) (float64, error) {
	x := a.Lower + rnd.Float64()*(a.XLimit-a.Lower)
	y := rnd.Float64() * a.YLimit

	gx, err := evaluate(a.G, x)
	if err != nil {
		return 0, err
	}
	if y <= gx {
		return a.Area(), nil
	}
	return 0, nil
}

// Uniform is crude Monte Carlo integration: every draw contributes
// G(x)·(XLimit-Lower) for x uniform over [Lower, XLimit].
type Uniform struct {
	Lower  float64
	XLimit float64
	G      func(float64) float64
}

func NewUniform(lower, xLimit float64, g func(float64) float64) (*Uniform, error) {
	if !(xLimit > lower) {
		return nil, invalid("x limit %v must exceed lower bound %v", xLimit, lower)
	}
	if g == nil {
		return nil, invalid("target function is nil")
	}
	return &Uniform{Lower: lower, XLimit: xLimit, G: g}, nil
}

func (u *Uniform) Execute(rnd random.Source) (float64, error) {
	width := u.XLimit - u.Lower
	x := u.Lower + rnd.Float64()*width

	gx, err := evaluate(u.G, x)
	if err != nil {
		return 0, err
	}
	return gx * width, nil
}
