package experiment

import (
	"fmt"
	"sort"
)

type Kind string

const (
	KindAcceptReject Kind = "accept-reject"
	KindUniform      Kind = "uniform"
	KindGamblersRuin Kind = "gamblers-ruin"
)

// Functions are the named target functions available to the integration variants.
var Functions = map[string]func(float64) float64{
	"damped": Damped,
}

// Params describes an experiment in configuration files and CLI flags.
type Params struct {
	Kind     Kind    `yaml:"kind"`
	Function string  `yaml:"function,omitempty"`
	Lower    float64 `yaml:"lower,omitempty"`
	XLimit   float64 `yaml:"x_limit,omitempty"`
	YLimit   float64 `yaml:"y_limit,omitempty"`
	P        float64 `yaml:"p,omitempty"`
	Stake    int     `yaml:"stake,omitempty"`
	MaxSteps int     `yaml:"max_steps,omitempty"`
}

func New(params Params) (Experiment, error) {
	switch params.Kind {
	case KindAcceptReject:
		g, err := function(params.Function)
		if err != nil {
			return nil, err
		}
		return NewAcceptReject(params.Lower, params.XLimit, params.YLimit, g)
	case KindUniform:
		g, err := function(params.Function)
		if err != nil {
			return nil, err
		}
		return NewUniform(params.Lower, params.XLimit, g)
	case KindGamblersRuin:
		return NewGamblersRuin(params.P, params.Stake, params.MaxSteps)
	default:
		return nil, invalid("unknown experiment kind %q", params.Kind)
	}
}

func function(name string) (func(float64) float64, error) {
	if name == "" {
		return Damped, nil
	}
	g, ok := Functions[name]
	if !ok {
		names := make([]string, 0, len(Functions))
		for n := range Functions {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, invalid("unknown function %q (known: %v)", name, names)
	}
	return g, nil
}

func (p Params) String() string {
	switch p.Kind {
	case KindGamblersRuin:
		return fmt.Sprintf("%s(p=%.4f, stake=%d)", p.Kind, p.P, p.Stake)
	case KindUniform:
		return fmt.Sprintf("%s[%g, %g]", p.Kind, p.Lower, p.XLimit)
	default:
		return fmt.Sprintf("%s[%g, %g]x[0, %g]", p.Kind, p.Lower, p.XLimit, p.YLimit)
	}
}
