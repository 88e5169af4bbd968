package ising

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name    string
		h       []float64
		starts  []int
		ends    []int
		weights []float64
		opts    []Option
		wantErr bool
	}{
		{
			name:    "valid chain",
			h:       []float64{0, 1, -1},
			starts:  []int{0, 1},
			ends:    []int{1, 2},
			weights: []float64{-1, 0.5},
		},
		{
			name: "single variable no couplers",
			h:    []float64{2},
		},
		{
			name:    "empty h",
			h:       nil,
			wantErr: true,
		},
		{
			name:    "mismatched lengths",
			h:       []float64{0, 0},
			starts:  []int{0},
			ends:    []int{1, 1},
			weights: []float64{1},
			wantErr: true,
		},
		{
			name:    "index out of range",
			h:       []float64{0, 0},
			starts:  []int{0},
			ends:    []int{2},
			weights: []float64{1},
			wantErr: true,
		},
		{
			name:    "negative index",
			h:       []float64{0, 0},
			starts:  []int{-1},
			ends:    []int{1},
			weights: []float64{1},
			wantErr: true,
		},
		{
			name:    "self loop rejected",
			h:       []float64{0, 0},
			starts:  []int{1},
			ends:    []int{1},
			weights: []float64{1},
			wantErr: true,
		},
		{
			name:    "self loop as offset",
			h:       []float64{0, 0},
			starts:  []int{1},
			ends:    []int{1},
			weights: []float64{1},
			opts:    []Option{WithSelfLoopOffset()},
		},
		{
			name:    "NaN bias",
			h:       []float64{math.NaN()},
			wantErr: true,
		},
		{
			name:    "infinite weight",
			h:       []float64{0, 0},
			starts:  []int{0},
			ends:    []int{1},
			weights: []float64{math.Inf(-1)},
			wantErr: true,
		},
		{
			name:    "duplicate rejected",
			h:       []float64{0, 0},
			starts:  []int{0, 1},
			ends:    []int{1, 0},
			weights: []float64{1, 2},
			opts:    []Option{WithRejectDuplicates()},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Build(tt.h, tt.starts, tt.ends, tt.weights, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidProblem), "error %v should wrap ErrInvalidProblem", err)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.h), p.NumVariables())
		})
	}
}

func TestBuildSumsDuplicates(t *testing.T) {
	p, err := Build([]float64{0, 0, 0}, []int{0, 2, 1, 1}, []int{1, 1, 0, 2}, []float64{1, 2, 0.5, -1})
	require.NoError(t, err)

	require.Equal(t, 2, p.NumCouplings())
	cs := p.Couplings()
	assert.Equal(t, Coupling{U: 0, V: 1, Weight: 1.5}, cs[0])
	assert.Equal(t, Coupling{U: 1, V: 2, Weight: 1}, cs[1])

	// adjacency reflects the summed weights on both endpoints
	assert.Equal(t, []Neighbor{{Index: 1, Weight: 1.5}}, p.Neighbors(0))
	assert.Equal(t, []Neighbor{{Index: 0, Weight: 1.5}, {Index: 2, Weight: 1}}, p.Neighbors(1))
	assert.Equal(t, []Neighbor{{Index: 1, Weight: 1}}, p.Neighbors(2))
}

func TestBuildCopiesInput(t *testing.T) {
	h := []float64{1, 2}
	p, err := Build(h, []int{0}, []int{1}, []float64{3})
	require.NoError(t, err)

	h[0] = 100
	assert.Equal(t, 1.0, p.Linear(0))

	cs := p.Couplings()
	cs[0].Weight = 100
	assert.Equal(t, 3.0, p.Couplings()[0].Weight)
}

func TestAdjacencyDegrees(t *testing.T) {
	// star centered on 0
	p, err := Build(make([]float64, 5), []int{0, 0, 0, 0}, []int{1, 2, 3, 4}, []float64{1, 1, 1, 1})
	require.NoError(t, err)

	assert.Equal(t, 4, p.Degree(0))
	for i := 1; i < 5; i++ {
		assert.Equal(t, 1, p.Degree(i))
	}
}

func TestEnergy(t *testing.T) {
	// E = h·s + Σ w s_u s_v
	p, err := Build([]float64{1, -2, 0.5}, []int{0, 1}, []int{1, 2}, []float64{-1, 3})
	require.NoError(t, err)

	tests := []struct {
		spins []int8
		want  float64
	}{
		{spins: []int8{1, 1, 1}, want: 1 - 2 + 0.5 - 1 + 3},
		{spins: []int8{-1, -1, -1}, want: -1 + 2 - 0.5 - 1 + 3},
		{spins: []int8{1, -1, 1}, want: 1 + 2 + 0.5 + 1 - 3},
	}
	for _, tt := range tests {
		e, err := p.Energy(tt.spins)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, e, 1e-12, "spins %v", tt.spins)
	}
}

func TestEnergyRejectsBadSpins(t *testing.T) {
	p, err := Build([]float64{0, 0}, nil, nil, nil)
	require.NoError(t, err)

	_, err = p.Energy([]int8{1})
	assert.ErrorIs(t, err, ErrInvalidProblem)

	_, err = p.Energy([]int8{1, 0})
	assert.ErrorIs(t, err, ErrInvalidProblem)
}

func TestSelfLoopOffset(t *testing.T) {
	// fully connected ferromagnet including diagonal terms, N=5
	const n = 5
	h := make([]float64, n)
	var starts, ends []int
	var weights []float64
	for u := 0; u < n; u++ {
		h[u] = -1
		for v := u; v < n; v++ {
			starts = append(starts, u)
			ends = append(ends, v)
			weights = append(weights, -1)
		}
	}

	p, err := Build(h, starts, ends, weights, WithSelfLoopOffset())
	require.NoError(t, err)
	assert.Equal(t, -5.0, p.Offset())
	assert.Equal(t, n*(n-1)/2, p.NumCouplings())

	up := []int8{1, 1, 1, 1, 1}
	e, err := p.Energy(up)
	require.NoError(t, err)
	assert.Equal(t, -float64((n+3)*n)/2, e)
}

func TestLocalField(t *testing.T) {
	p, err := Build([]float64{0.5, 0, 0}, []int{0, 0}, []int{1, 2}, []float64{2, -1})
	require.NoError(t, err)

	spins := []int8{1, -1, 1}
	assert.InDelta(t, 0.5-2-1, p.LocalField(spins, 0), 1e-12)
	assert.InDelta(t, 2.0, p.LocalField(spins, 1), 1e-12)
	assert.InDelta(t, -1.0, p.LocalField(spins, 2), 1e-12)
}
