// Package ising holds the immutable in-memory model of an Ising problem:
// linear biases, a sparse set of pairwise couplings and the adjacency
// structure derived from them.
//
// The energy of a spin assignment s ∈ {-1,+1}^N is
//
//	E(s) = offset + Σ_i h[i]·s[i] + Σ_(u,v,w) w·s[u]·s[v]
//
// A Problem is never mutated after Build returns, so a single instance can
// be shared by any number of goroutines without locking.
package ising

import (
	"fmt"
	"math"
)

// Coupling is one J-term. U < V always holds for couplings stored in a
// Problem.
type Coupling struct {
	U, V   int
	Weight float64
}

// Neighbor is one adjacency entry of a variable.
type Neighbor struct {
	Index  int
	Weight float64
}

// Problem is a validated Ising problem.
type Problem struct {
	h         []float64
	couplings []Coupling
	adj       [][]Neighbor
	offset    float64
}

// Option configures how Build treats optional input forms.
type Option func(*buildConfig)

type buildConfig struct {
	rejectDuplicates bool
	selfLoopOffset   bool
}

// WithRejectDuplicates makes Build fail when the same unordered variable
// pair is listed more than once. By default duplicate weights are summed.
func WithRejectDuplicates() Option {
	return func(c *buildConfig) {
		c.rejectDuplicates = true
	}
}

// WithSelfLoopOffset accepts couplers with u == v. Since s[u]·s[u] = 1 for
// every assignment, such a term contributes its weight as a constant and is
// added to Offset instead of the coupling graph.
func WithSelfLoopOffset() Option {
	return func(c *buildConfig) {
		c.selfLoopOffset = true
	}
}

// Build validates the inputs and constructs a Problem. Couplers may be
// listed in either orientation; they are normalized to u < v. Duplicate
// pairs are summed and stored once, in order of first occurrence.
func Build(h []float64, starts, ends []int, weights []float64, opts ...Option) (*Problem, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	n := len(h)
	if n == 0 {
		return nil, fmt.Errorf("linear biases must not be empty: %w", ErrInvalidProblem)
	}
	if len(starts) != len(ends) || len(starts) != len(weights) {
		return nil, fmt.Errorf("coupler arrays differ in length (starts=%d, ends=%d, weights=%d): %w",
			len(starts), len(ends), len(weights), ErrInvalidProblem)
	}
	for i, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("h[%d]=%v is not finite: %w", i, v, ErrInvalidProblem)
		}
	}

	p := &Problem{
		h:         append([]float64(nil), h...),
		couplings: make([]Coupling, 0, len(starts)),
	}

	// pair key -> index into p.couplings
	seen := make(map[[2]int]int, len(starts))
	for k := range starts {
		u, v, w := starts[k], ends[k], weights[k]
		if u < 0 || u >= n || v < 0 || v >= n {
			return nil, fmt.Errorf("coupler %d (%d,%d) out of range [0,%d): %w", k, u, v, n, ErrInvalidProblem)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("coupler %d weight %v is not finite: %w", k, w, ErrInvalidProblem)
		}
		if u == v {
			if !cfg.selfLoopOffset {
				return nil, fmt.Errorf("coupler %d is a self-loop on variable %d: %w", k, u, ErrInvalidProblem)
			}
			p.offset += w
			continue
		}
		if u > v {
			u, v = v, u
		}

		key := [2]int{u, v}
		if idx, dup := seen[key]; dup {
			if cfg.rejectDuplicates {
				return nil, fmt.Errorf("coupler %d duplicates pair (%d,%d): %w", k, u, v, ErrInvalidProblem)
			}
			p.couplings[idx].Weight += w
			continue
		}
		seen[key] = len(p.couplings)
		p.couplings = append(p.couplings, Coupling{U: u, V: v, Weight: w})
	}

	p.adj = buildAdjacency(n, p.couplings)
	return p, nil
}

// buildAdjacency registers every coupling on both endpoints. Neighbor lists
// keep coupling order so iteration is deterministic.
func buildAdjacency(n int, couplings []Coupling) [][]Neighbor {
	degree := make([]int, n)
	for _, c := range couplings {
		degree[c.U]++
		degree[c.V]++
	}

	// one backing array for all lists
	backing := make([]Neighbor, 2*len(couplings))
	adj := make([][]Neighbor, n)
	off := 0
	for i, d := range degree {
		adj[i] = backing[off : off : off+d]
		off += d
	}
	for _, c := range couplings {
		adj[c.U] = append(adj[c.U], Neighbor{Index: c.V, Weight: c.Weight})
		adj[c.V] = append(adj[c.V], Neighbor{Index: c.U, Weight: c.Weight})
	}
	return adj
}

// NumVariables returns N.
func (p *Problem) NumVariables() int { return len(p.h) }

// NumCouplings returns the number of distinct coupled pairs.
func (p *Problem) NumCouplings() int { return len(p.couplings) }

// Offset returns the constant energy term collected from self-loops.
func (p *Problem) Offset() float64 { return p.offset }

// Linear returns h[i].
func (p *Problem) Linear(i int) float64 { return p.h[i] }

// Degree returns the number of neighbors of variable i.
func (p *Problem) Degree(i int) int { return len(p.adj[i]) }

// Neighbors returns the adjacency list of variable i. The returned slice is
// shared and must not be modified.
func (p *Problem) Neighbors(i int) []Neighbor { return p.adj[i] }

// Couplings returns a copy of the normalized couplings.
func (p *Problem) Couplings() []Coupling {
	return append([]Coupling(nil), p.couplings...)
}

// LinearBiases returns a copy of h.
func (p *Problem) LinearBiases() []float64 {
	return append([]float64(nil), p.h...)
}

// LocalField returns h[i] + Σ_j w(i,j)·s[j]. spins must have length N.
func (p *Problem) LocalField(spins []int8, i int) float64 {
	f := p.h[i]
	for _, nb := range p.adj[i] {
		f += nb.Weight * float64(spins[nb.Index])
	}
	return f
}

// Energy computes the Ising energy of spins from scratch, independently of
// any incrementally maintained state.
func (p *Problem) Energy(spins []int8) (float64, error) {
	if len(spins) != len(p.h) {
		return 0, fmt.Errorf("spin vector has length %d, want %d: %w", len(spins), len(p.h), ErrInvalidProblem)
	}
	e := p.offset
	for i, s := range spins {
		if s != 1 && s != -1 {
			return 0, fmt.Errorf("spin %d has value %d, want ±1: %w", i, s, ErrInvalidProblem)
		}
		e += p.h[i] * float64(s)
	}
	for _, c := range p.couplings {
		e += c.Weight * float64(spins[c.U]) * float64(spins[c.V])
	}
	return e, nil
}
