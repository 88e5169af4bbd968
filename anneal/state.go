package anneal

import (
	"math"

	"github.com/n0madic/go-ising-anneal/ising"
	"github.com/n0madic/go-ising-anneal/rng"
)

// SpinState is one run's spin assignment together with the incrementally
// maintained local fields and total energy. It is owned by a single run and
// is not safe for concurrent use.
type SpinState struct {
	problem *ising.Problem
	spins   []int8
	field   []float64 // field[i] = h[i] + Σ_j w(i,j)·s[j]
	energy  float64
}

// NewSpinState draws a uniformly random assignment from stream and computes
// its local fields and energy.
func NewSpinState(p *ising.Problem, stream *rng.Stream) *SpinState {
	n := p.NumVariables()
	s := &SpinState{
		problem: p,
		spins:   make([]int8, n),
		field:   make([]float64, n),
	}
	for i := range s.spins {
		s.spins[i] = stream.Spin()
	}
	s.resync()
	return s
}

// Spins returns a copy of the current assignment.
func (s *SpinState) Spins() []int8 {
	return append([]int8(nil), s.spins...)
}

// Spin returns s[i].
func (s *SpinState) Spin(i int) int8 { return s.spins[i] }

// Energy returns the incrementally tracked total energy.
func (s *SpinState) Energy() float64 { return s.energy }

// LocalField returns the cached local field of variable i.
func (s *SpinState) LocalField(i int) float64 { return s.field[i] }

// DeltaEnergy returns the energy change that flipping variable i would
// cause: -2·s[i]·field[i].
func (s *SpinState) DeltaEnergy(i int) float64 {
	return -2 * float64(s.spins[i]) * s.field[i]
}

// Flip inverts variable i and updates energy and neighbor fields in
// O(degree(i)).
func (s *SpinState) Flip(i int) {
	old := float64(s.spins[i])
	s.energy += -2 * old * s.field[i]
	s.spins[i] = -s.spins[i]
	for _, nb := range s.problem.Neighbors(i) {
		s.field[nb.Index] -= 2 * nb.Weight * old
	}
}

// Snapshot deep copies the current assignment tagged with sweep.
func (s *SpinState) Snapshot(sweep int) Snapshot {
	return Snapshot{
		Sweep:  sweep,
		Spins:  s.Spins(),
		Energy: s.energy,
	}
}

// resync recomputes all fields and the energy from scratch and returns the
// absolute energy drift that accumulated since the previous resync.
func (s *SpinState) resync() float64 {
	p := s.problem
	e := p.Offset()
	for i := range s.spins {
		f := p.LocalField(s.spins, i)
		s.field[i] = f
		// each coupling is seen from both ends, so count h fully and
		// half of the coupling contribution
		e += float64(s.spins[i]) * (p.Linear(i) + f) / 2
	}
	drift := math.Abs(s.energy - e)
	s.energy = e
	return drift
}
