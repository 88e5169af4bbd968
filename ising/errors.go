package ising

import "errors"

// ErrInvalidProblem indicates malformed biases or couplers: empty h,
// mismatched coupler array lengths, out-of-range or self-loop couplers,
// non-finite values, or rejected duplicates.
// Callers branch with errors.Is(err, ErrInvalidProblem).
var ErrInvalidProblem = errors.New("ising: invalid problem")
