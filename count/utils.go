package count

import (
	"errors"
	"math"
)

// SuggestColumns returns the number of columns giving an overestimate of at most epsilon times the total count.
func SuggestColumns(epsilon float64) (uint32, error) {
	if epsilon <= 0 {
		return 0, errors.New("epsilon must be greater than 0.0")
	}
	cols := math.Ceil(math.E / epsilon)
	if cols >= maxCells {
		return 0, errTooManyCells
	}
	return uint32(cols), nil
}

// SuggestRows returns the number of rows so that the epsilon bound holds with probability 1-delta.
func SuggestRows(delta float64) (uint32, error) {
	if delta <= 0 || delta >= 1.0 {
		return 0, errors.New("delta must be between 0 and 1.0 (exclusive)")
	}
	return max(uint32(math.Ceil(math.Log(1.0/delta))), 1), nil
}
