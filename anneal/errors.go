package anneal

import (
	"errors"

	"github.com/n0madic/go-ising-anneal/ising"
)

// Sentinel errors. All of them are returned before any sweep executes, with
// the exception of ErrShapeMismatch, which signals a broken internal
// invariant during aggregation. Branch with errors.Is.
var (
	// ErrInvalidProblem is re-exported from package ising.
	ErrInvalidProblem = ising.ErrInvalidProblem
	// ErrInvalidSchedule indicates a non-finite or non-positive beta value,
	// or a schedule whose length differs from the requested sweep count.
	ErrInvalidSchedule = errors.New("anneal: invalid beta schedule")
	// ErrInvalidRequest indicates num_samples < 1 or an intermediate-state
	// count outside [0, num_sweeps].
	ErrInvalidRequest = errors.New("anneal: invalid request")
	// ErrShapeMismatch indicates a run produced a spin vector whose length
	// differs from the problem size.
	ErrShapeMismatch = errors.New("anneal: result shape mismatch")
)
