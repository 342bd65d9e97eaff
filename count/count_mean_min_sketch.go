package count

import (
	"math"
	"slices"

	"github.com/leosingleton/pennylogger/estimator"
)

// CountMeanMinSketch is a CountMinSketch that subtracts the expected collision noise from every row before
// taking the median (Goyal, Daumé and Cormode). The result is capped by the count-min estimate, so it never
// exceeds it.
type CountMeanMinSketch struct {
	CountMinSketch
}

// NewCountMeanMinSketch sizes the sketch like NewCountMinSketch.
func NewCountMeanMinSketch(epsilon, delta float64) (*CountMeanMinSketch, error) {
	cms, err := NewCountMinSketch(epsilon, delta)
	if err != nil {
		return nil, err
	}
	return &CountMeanMinSketch{CountMinSketch: *cms}, nil
}

func (c *CountMeanMinSketch) Estimate(hash estimator.Hash) int64 {
	return c.meanMin(c.cells(hash))
}

func (c *CountMeanMinSketch) TryIncrementAndEstimate(hash estimator.Hash) (estimator.IncrementResult, int64) {
	cells := c.cells(hash)
	estimate := c.meanMin(cells) + 1
	c.total++
	return c.increment(cells), estimate
}

// Add sums other into c. other is not modified.
func (c *CountMeanMinSketch) Add(other *CountMeanMinSketch) error {
	return c.CountMinSketch.Add(&other.CountMinSketch)
}

// meanMin reports a saturated count-min estimate unchanged, since increments past saturation only add noise.
func (c *CountMeanMinSketch) meanMin(cells []uint64) int64 {
	countMin := c.minimum(cells)
	if countMin == math.MaxUint16 {
		return countMin
	}

	noiseShare := float64(c.cols) - 1.0
	values := make([]float64, len(cells))
	for row, index := range cells {
		count := float64(c.matrix[index])
		values[row] = count - (float64(c.total)-count)/noiseShare
	}
	return min(median(values), countMin)
}

// median rounds the middle value half to even, or truncates the mean of the two middle values, and clamps the
// result to the counter range.
func median(values []float64) int64 {
	slices.Sort(values)

	mid := len(values) / 2
	var m float64
	if len(values)%2 == 0 {
		m = math.Trunc((values[mid-1] + values[mid]) / 2.0)
	} else {
		m = math.RoundToEven(values[mid])
	}
	return int64(min(max(m, 0), math.MaxUint16))
}
