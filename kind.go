package main

import (
	"fmt"

	"montecarlo/experiment"
)

// kindValue lets cobra parse and validate --experiment.
type kindValue struct {
	kind *experiment.Kind
}

func newKindValue(kind *experiment.Kind) *kindValue {
	return &kindValue{kind: kind}
}

func (k *kindValue) String() string {
	if k.kind == nil {
		return ""
	}
	return string(*k.kind)
}

func (k *kindValue) Set(value string) error {
	switch kind := experiment.Kind(value); kind {
	case experiment.KindAcceptReject, experiment.KindUniform, experiment.KindGamblersRuin:
		*k.kind = kind
		return nil
	default:
		return fmt.Errorf("unknown experiment kind %q", value)
	}
}

func (k *kindValue) Type() string {
	return "kind"
}
