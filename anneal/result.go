package anneal

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Result holds the output of one Sampler.Run call. Samples, Energies and
// IntermediateStates are indexed by sample index.
type Result struct {
	NumVariables int
	// Samples has shape [num_samples][N] with values in {-1,+1}.
	Samples [][]int8
	// Energies[i] is the energy of Samples[i].
	Energies []float64
	// IntermediateStates[i] holds the snapshots of sample i ordered by
	// sweep. Every sample has the same number of snapshots.
	IntermediateStates [][]Snapshot

	Accepted         uint64
	Rejected         uint64
	DriftCorrections uint64
	MaxDrift         float64
}

// aggregate assembles runs, already ordered by sample index, into a
// Result.
func aggregate(n int, runs []runResult) (*Result, error) {
	res := &Result{
		NumVariables:       n,
		Samples:            make([][]int8, len(runs)),
		Energies:           make([]float64, len(runs)),
		IntermediateStates: make([][]Snapshot, len(runs)),
	}

	for i := range runs {
		r := &runs[i]
		if len(r.spins) != n {
			return nil, fmt.Errorf("sample %d has %d spins, want %d: %w", i, len(r.spins), n, ErrShapeMismatch)
		}
		for j, snap := range r.snapshots {
			if len(snap.Spins) != n {
				return nil, fmt.Errorf("sample %d snapshot %d has %d spins, want %d: %w",
					i, j, len(snap.Spins), n, ErrShapeMismatch)
			}
		}
		if i > 0 && len(r.snapshots) != len(runs[0].snapshots) {
			return nil, fmt.Errorf("sample %d has %d snapshots, sample 0 has %d: %w",
				i, len(r.snapshots), len(runs[0].snapshots), ErrShapeMismatch)
		}

		res.Samples[i] = r.spins
		res.Energies[i] = r.energy
		res.IntermediateStates[i] = r.snapshots
		res.Accepted += r.accepted
		res.Rejected += r.rejected
		res.DriftCorrections += r.driftCorrections
		res.MaxDrift = math.Max(res.MaxDrift, r.maxDrift)
	}

	return res, nil
}

// NumSamples returns the number of samples.
func (r *Result) NumSamples() int { return len(r.Samples) }

// SampleMatrix returns the samples as a num_samples × N matrix.
func (r *Result) SampleMatrix() *mat.Dense {
	m := mat.NewDense(len(r.Samples), r.NumVariables, nil)
	for i, row := range r.Samples {
		for j, s := range row {
			m.Set(i, j, float64(s))
		}
	}
	return m
}

// EnergyVector returns the energies as a vector of length num_samples.
func (r *Result) EnergyVector() *mat.VecDense {
	return mat.NewVecDense(len(r.Energies), append([]float64(nil), r.Energies...))
}

// Lowest returns a copy of the lowest-energy sample and its energy. Ties go
// to the smallest sample index.
func (r *Result) Lowest() ([]int8, float64) {
	if len(r.Energies) == 0 {
		return nil, math.NaN()
	}
	idx := floats.MinIdx(r.Energies)
	return append([]int8(nil), r.Samples[idx]...), r.Energies[idx]
}

// Contains reports whether spins appears among the samples.
func (r *Result) Contains(spins []int8) bool {
	for _, row := range r.Samples {
		if slices.Equal(row, spins) {
			return true
		}
	}
	return false
}

// AsMap exposes the result as a mapping with keys "samples", "energies" and
// "intermediate_states". Intermediate states are per sample lists of
// {"sweep", "spins", "energy"} entries.
func (r *Result) AsMap() map[string]any {
	inter := make([][]map[string]any, len(r.IntermediateStates))
	for i, snaps := range r.IntermediateStates {
		inter[i] = make([]map[string]any, len(snaps))
		for j, s := range snaps {
			inter[i][j] = map[string]any{
				"sweep":  s.Sweep,
				"spins":  s.Spins,
				"energy": s.Energy,
			}
		}
	}
	return map[string]any{
		"samples":             r.Samples,
		"energies":            r.Energies,
		"intermediate_states": inter,
	}
}

// GetStats returns summary statistics of the result.
func (r *Result) GetStats() map[string]any {
	meanE, stdE := math.NaN(), math.NaN()
	minE, maxE := math.NaN(), math.NaN()
	if len(r.Energies) > 0 {
		meanE = stat.Mean(r.Energies, nil)
		minE = floats.Min(r.Energies)
		maxE = floats.Max(r.Energies)
	}
	if len(r.Energies) > 1 {
		stdE = stat.StdDev(r.Energies, nil)
	}

	acceptRate := math.NaN()
	if total := r.Accepted + r.Rejected; total > 0 {
		acceptRate = float64(r.Accepted) / float64(total)
	}

	return map[string]any{
		"num_samples":       len(r.Samples),
		"num_variables":     r.NumVariables,
		"mean_energy":       meanE,
		"std_energy":        stdE,
		"min_energy":        minE,
		"max_energy":        maxE,
		"distinct_samples":  r.distinct(),
		"accepted":          r.Accepted,
		"rejected":          r.Rejected,
		"accept_rate":       acceptRate,
		"drift_corrections": r.DriftCorrections,
		"max_drift":         r.MaxDrift,
	}
}

func (r *Result) distinct() int {
	seen := make(map[string]struct{}, len(r.Samples))
	for _, row := range r.Samples {
		key := make([]byte, len(row))
		for i, s := range row {
			key[i] = byte(s)
		}
		seen[string(key)] = struct{}{}
	}
	return len(seen)
}
