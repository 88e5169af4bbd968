package anneal

import (
	"encoding/gob"
	"errors"
	"io"
)

// ResultState represents the serializable state of a Result
type ResultState struct {
	Version          int       `gob:"version"`
	NumVariables     int       `gob:"num_variables"`
	NumSamples       int       `gob:"num_samples"`
	SampleData       []int8    `gob:"sample_data"` // row-major num_samples × N
	Energies         []float64 `gob:"energies"`
	SnapshotsPer     int       `gob:"snapshots_per"`
	SnapshotSweeps   []int     `gob:"snapshot_sweeps"`   // num_samples × SnapshotsPer
	SnapshotEnergies []float64 `gob:"snapshot_energies"` // num_samples × SnapshotsPer
	SnapshotData     []int8    `gob:"snapshot_data"`     // num_samples × SnapshotsPer × N
	Accepted         uint64    `gob:"accepted"`
	Rejected         uint64    `gob:"rejected"`
	DriftCorrections uint64    `gob:"drift_corrections"`
	MaxDrift         float64   `gob:"max_drift"`
}

// Save serializes the result to gob format
func (r *Result) Save(w io.Writer) error {
	n := r.NumVariables
	state := ResultState{
		Version:          1,
		NumVariables:     n,
		NumSamples:       len(r.Samples),
		SampleData:       make([]int8, 0, len(r.Samples)*n),
		Energies:         append([]float64(nil), r.Energies...),
		Accepted:         r.Accepted,
		Rejected:         r.Rejected,
		DriftCorrections: r.DriftCorrections,
		MaxDrift:         r.MaxDrift,
	}
	for _, row := range r.Samples {
		state.SampleData = append(state.SampleData, row...)
	}

	if len(r.IntermediateStates) > 0 {
		state.SnapshotsPer = len(r.IntermediateStates[0])
	}
	for _, snaps := range r.IntermediateStates {
		if len(snaps) != state.SnapshotsPer {
			return errors.New("ragged intermediate states")
		}
		for _, s := range snaps {
			state.SnapshotSweeps = append(state.SnapshotSweeps, s.Sweep)
			state.SnapshotEnergies = append(state.SnapshotEnergies, s.Energy)
			state.SnapshotData = append(state.SnapshotData, s.Spins...)
		}
	}

	encoder := gob.NewEncoder(w)
	return encoder.Encode(state)
}

// LoadResult deserializes a result from gob format
func LoadResult(r io.Reader) (*Result, error) {
	decoder := gob.NewDecoder(r)

	var state ResultState
	if err := decoder.Decode(&state); err != nil {
		return nil, err
	}

	if state.Version != 1 {
		return nil, errors.New("unsupported gob version")
	}

	n, ns, k := state.NumVariables, state.NumSamples, state.SnapshotsPer
	if n < 1 || ns < 1 || k < 0 {
		return nil, errors.New("invalid result dimensions")
	}

	// Validate data lengths
	if len(state.SampleData) != ns*n {
		return nil, errors.New("invalid sample data length")
	}
	if len(state.Energies) != ns {
		return nil, errors.New("invalid energies length")
	}
	if len(state.SnapshotSweeps) != ns*k || len(state.SnapshotEnergies) != ns*k {
		return nil, errors.New("invalid snapshot index length")
	}
	if len(state.SnapshotData) != ns*k*n {
		return nil, errors.New("invalid snapshot data length")
	}

	res := &Result{
		NumVariables:       n,
		Samples:            make([][]int8, ns),
		Energies:           append([]float64(nil), state.Energies...),
		IntermediateStates: make([][]Snapshot, ns),
		Accepted:           state.Accepted,
		Rejected:           state.Rejected,
		DriftCorrections:   state.DriftCorrections,
		MaxDrift:           state.MaxDrift,
	}
	for i := 0; i < ns; i++ {
		res.Samples[i] = append([]int8(nil), state.SampleData[i*n:(i+1)*n]...)

		snaps := make([]Snapshot, k)
		for j := range snaps {
			at := i*k + j
			snaps[j] = Snapshot{
				Sweep:  state.SnapshotSweeps[at],
				Energy: state.SnapshotEnergies[at],
				Spins:  append([]int8(nil), state.SnapshotData[at*n:(at+1)*n]...),
			}
		}
		res.IntermediateStates[i] = snaps
	}

	return res, nil
}
