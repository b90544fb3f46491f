package random

import "golang.org/x/exp/rand"

// Source produces uniform doubles in [0, 1).
type Source interface {
	Float64() float64
}

// Seeded is a deterministic PCG stream. It is not safe for concurrent use:
// each simulation run owns its own instance.
type Seeded struct {
	rnd   *rand.Rand
	seed  uint64
	draws uint64
}

func New(seed uint64) *Seeded {
	return &Seeded{
		rnd:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

func (s *Seeded) Float64() float64 {
	s.draws++
	return s.rnd.Float64()
}

func (s *Seeded) Seed() uint64 {
	return s.seed
}

// Draws returns how many values have been taken from the stream.
func (s *Seeded) Draws() uint64 {
	return s.draws
}
