package count

import (
	"errors"
	"fmt"
	"math"

	"github.com/leosingleton/pennylogger/estimator"
)

const (
	maxCells = 1 << 30

	// rowSeed seeds the rehash that spreads a hash over the columns of every row.
	rowSeed = 0x2f1d_7c3a
)

var errTooManyCells = errors.New("these parameters generate a sketch that exceeds 2^30 elements")

// ErrDimensionMismatch is returned when adding sketches with different rows or columns.
var ErrDimensionMismatch = errors.New("sketch dimensions do not match")

// CountMinSketch is a rows x cols matrix of saturating 16-bit counters. Each row hashes a value into one
// column and the estimate is the minimum across rows, so it never underestimates a count below 65535.
//
// Inserts always succeed; collisions only cost accuracy.
type CountMinSketch struct {
	cols     uint32
	rows     uint32
	matrix   []uint16
	total    uint64 // number of increments, including saturated ones
	maxBytes int64
}

// NewCountMinSketch sizes the sketch so that an estimate exceeds the true count by at most epsilon times the
// total count, with probability 1-delta.
func NewCountMinSketch(epsilon, delta float64) (*CountMinSketch, error) {
	cols, err := SuggestColumns(epsilon)
	if err != nil {
		return nil, err
	}
	rows, err := SuggestRows(delta)
	if err != nil {
		return nil, err
	}
	return newCountMinSketch(cols, rows)
}

func newCountMinSketch(cols, rows uint32) (*CountMinSketch, error) {
	if cols < 3 {
		return nil, errors.New("using fewer than 3 columns incurs relative error greater than 1.0")
	}

	if uint64(cols)*uint64(rows) >= maxCells {
		return nil, errTooManyCells
	}

	c := &CountMinSketch{
		cols:   cols,
		rows:   rows,
		matrix: make([]uint16, cols*rows),
	}
	c.maxBytes = c.TotalBytes()
	return c, nil
}

// Cols is the width of each row.
func (c *CountMinSketch) Cols() uint32 {
	return c.cols
}

// Rows is the number of independent rows, one per hash.
func (c *CountMinSketch) Rows() uint32 {
	return c.rows
}

// RelativeError is the epsilon the sketch was sized for.
func (c *CountMinSketch) RelativeError() float64 {
	return math.E / float64(c.cols)
}

// Total returns the number of increments since the last Clear.
func (c *CountMinSketch) Total() uint64 {
	return c.total
}

// MaxBytes is fixed at construction. SetMaxBytes is accepted but has no effect on the size.
func (c *CountMinSketch) MaxBytes() int64 {
	return c.maxBytes
}

func (c *CountMinSketch) SetMaxBytes(maxBytes int64) {
	c.maxBytes = maxBytes
}

func (c *CountMinSketch) MaxCount() int64 {
	return math.MaxUint16
}

func (c *CountMinSketch) TotalBytes() int64 {
	return int64(len(c.matrix)) * 2
}

func (c *CountMinSketch) BytesUsed() int64 {
	used := int64(0)
	for _, cell := range c.matrix {
		if cell > 0 {
			used++
		}
	}
	return used * 2
}

// cells returns the matrix index of hash in every row.
func (c *CountMinSketch) cells(hash estimator.Hash) []uint64 {
	columns := hash.Rehash(rowSeed).BoundedDoubleHashes(int(c.rows), uint64(c.cols))
	for row := range columns {
		columns[row] += uint64(row) * uint64(c.cols)
	}
	return columns
}

func (c *CountMinSketch) minimum(cells []uint64) int64 {
	result := uint16(math.MaxUint16)
	for _, index := range cells {
		result = min(result, c.matrix[index])
	}
	return int64(result)
}

func (c *CountMinSketch) Estimate(hash estimator.Hash) int64 {
	return c.minimum(c.cells(hash))
}

// UpperBound is the largest count hash can have, with probability 1-delta.
func (c *CountMinSketch) UpperBound(hash estimator.Hash) int64 {
	return c.Estimate(hash) + int64(c.RelativeError()*float64(c.total))
}

// TryIncrementAndEstimate never returns NoCapacity. It returns Overflow if any row was already saturated.
func (c *CountMinSketch) TryIncrementAndEstimate(hash estimator.Hash) (estimator.IncrementResult, int64) {
	cells := c.cells(hash)
	c.total++
	estimate := c.minimum(cells) + 1
	return c.increment(cells), estimate
}

func (c *CountMinSketch) increment(cells []uint64) estimator.IncrementResult {
	result := estimator.Success
	for _, index := range cells {
		if c.matrix[index] < math.MaxUint16 {
			c.matrix[index]++
		} else {
			result = estimator.Overflow
		}
	}
	return result
}

func (c *CountMinSketch) Clear() {
	clear(c.matrix)
	c.total = 0
}

// Add sums other into c cell by cell, saturating at 65535. other is not modified.
func (c *CountMinSketch) Add(other *CountMinSketch) error {
	if c == other {
		return errors.New("cannot add sketch to itself")
	}

	if c.rows != other.rows || c.cols != other.cols {
		return fmt.Errorf("%w: %dx%d and %dx%d", ErrDimensionMismatch, c.rows, c.cols, other.rows, other.cols)
	}

	for i, cell := range other.matrix {
		c.matrix[i] = uint16(min(uint32(c.matrix[i])+uint32(cell), math.MaxUint16))
	}
	c.total += other.total

	return nil
}
