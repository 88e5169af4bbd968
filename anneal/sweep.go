package anneal

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/n0madic/go-ising-anneal/ising"
	"github.com/n0madic/go-ising-anneal/rng"
)

// driftTolerance is the largest incremental-vs-exact energy discrepancy a
// resync tolerates silently.
var driftTolerance = 1e-6

// Snapshot is a copy of one run's spins captured after a sweep.
type Snapshot struct {
	Sweep  int
	Spins  []int8
	Energy float64
}

// runConfig is shared read-only by every run of one Sampler.Run call.
type runConfig struct {
	schedule      []float64
	snapshotAt    []int // strictly increasing sweep indices
	checkInterval int
	logger        *slog.Logger
}

// runResult is what one annealing run hands to the aggregator.
type runResult struct {
	index            int
	spins            []int8
	energy           float64
	snapshots        []Snapshot
	accepted         uint64
	rejected         uint64
	driftCorrections uint64
	maxDrift         float64
}

// validateSchedule rejects non-finite and non-positive betas. An empty
// schedule is valid and yields unannealed random states.
func validateSchedule(schedule []float64) error {
	for i, beta := range schedule {
		if math.IsNaN(beta) || math.IsInf(beta, 0) || beta <= 0 {
			return fmt.Errorf("beta[%d]=%v must be finite and > 0: %w", i, beta, ErrInvalidSchedule)
		}
	}
	return nil
}

// annealRun executes the full schedule on a fresh random state.
//
// Every sweep visits variables sequentially 0..N-1. A proposal with
// ΔE <= 0 is always accepted without consuming randomness; otherwise one
// uniform draw u is taken and the flip is accepted when u < exp(-beta·ΔE).
// Together with the stream derivation in package rng this fixes the exact
// output for a given seed.
func annealRun(p *ising.Problem, stream *rng.Stream, cfg *runConfig) runResult {
	state := NewSpinState(p, stream)
	n := p.NumVariables()

	res := runResult{
		snapshots: make([]Snapshot, 0, len(cfg.snapshotAt)),
	}
	next := 0 // position in cfg.snapshotAt

	for sweep, beta := range cfg.schedule {
		for i := 0; i < n; i++ {
			delta := state.DeltaEnergy(i)
			if delta <= 0 || stream.Float64() < math.Exp(-beta*delta) {
				state.Flip(i)
				res.accepted++
			} else {
				res.rejected++
			}
		}

		if cfg.checkInterval > 0 && (sweep+1)%cfg.checkInterval == 0 {
			drift := state.resync()
			if drift > res.maxDrift {
				res.maxDrift = drift
			}
			if drift > driftTolerance {
				res.driftCorrections++
				cfg.logger.Debug("energy drift corrected",
					"sweep", sweep,
					"drift", drift,
					"stream", stream.ID())
			}
		}

		if next < len(cfg.snapshotAt) && cfg.snapshotAt[next] == sweep {
			res.snapshots = append(res.snapshots, state.Snapshot(sweep))
			next++
		}
	}

	res.spins = state.Spins()
	res.energy = state.Energy()
	return res
}

// SnapshotSweeps returns the k sweep indices at which intermediate states
// are captured over numSweeps sweeps: floor((j+1)·numSweeps/k) - 1 for
// j in [0,k). The indices are strictly increasing for k <= numSweeps and the
// last one is always the final sweep. It returns nil when k <= 0.
func SnapshotSweeps(numSweeps, k int) []int {
	if k <= 0 || numSweeps <= 0 {
		return nil
	}
	if k > numSweeps {
		k = numSweeps
	}
	idx := make([]int, k)
	for j := range idx {
		idx[j] = (j+1)*numSweeps/k - 1
	}
	return idx
}
