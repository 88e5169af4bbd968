package anneal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LinearSchedule returns n betas evenly spaced from start to end inclusive.
// n == 0 yields an empty schedule; n == 1 yields [start].
func LinearSchedule(start, end float64, n int) ([]float64, error) {
	if err := checkBounds(start, end, n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	if n <= 1 {
		if n == 1 {
			out[0] = start
		}
		return out, nil
	}
	floats.Span(out, start, end)
	out[0], out[n-1] = start, end
	return out, nil
}

// GeometricSchedule returns n betas growing by a constant factor from start
// to end inclusive. Short lengths behave as in LinearSchedule.
func GeometricSchedule(start, end float64, n int) ([]float64, error) {
	if err := checkBounds(start, end, n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	if n <= 1 {
		if n == 1 {
			out[0] = start
		}
		return out, nil
	}
	floats.LogSpan(out, start, end)
	out[0], out[n-1] = start, end
	return out, nil
}

func checkBounds(start, end float64, n int) error {
	if n < 0 {
		return fmt.Errorf("schedule length %d < 0: %w", n, ErrInvalidSchedule)
	}
	for _, b := range []float64{start, end} {
		if math.IsNaN(b) || math.IsInf(b, 0) || b <= 0 {
			return fmt.Errorf("schedule bound %v must be finite and > 0: %w", b, ErrInvalidSchedule)
		}
	}
	return nil
}
