/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package estimator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leosingleton/pennylogger/estimator"
	"github.com/leosingleton/pennylogger/filters"
	"github.com/leosingleton/pennylogger/internal/estimatortest"
)

// boundedCounter counts exactly up to maxCount per hash and then reports Overflow, like a counting filter
// that never runs out of buckets.
type boundedCounter struct {
	maxCount int64
	maxBytes int64
	counts   map[estimator.Hash]int64
}

func newBoundedCounter(maxCount int64) *boundedCounter {
	return &boundedCounter{maxCount: maxCount, counts: make(map[estimator.Hash]int64)}
}

func (b *boundedCounter) MaxBytes() int64                 { return b.maxBytes }
func (b *boundedCounter) SetMaxBytes(n int64)             { b.maxBytes = n }
func (b *boundedCounter) MaxCount() int64                 { return b.maxCount }
func (b *boundedCounter) TotalBytes() int64               { return 64 }
func (b *boundedCounter) BytesUsed() int64                { return int64(len(b.counts)) }
func (b *boundedCounter) Clear()                          { clear(b.counts) }
func (b *boundedCounter) Estimate(h estimator.Hash) int64 { return b.counts[h] }

func (b *boundedCounter) TryIncrementAndEstimate(h estimator.Hash) (estimator.IncrementResult, int64) {
	count := b.counts[h]
	if count == b.maxCount {
		return estimator.Overflow, count + 1
	}
	b.counts[h] = count + 1
	return estimator.Success, count + 1
}

func TestCascadingEstimator(t *testing.T) {
	estimatortest.Run(t, func() estimator.FrequencyEstimator {
		small, err := filters.NewCuckooFilter2Way[filters.Bucket8](128)
		require.NoError(t, err)
		large, err := filters.NewCuckooFilter2Way[filters.Bucket16Counting](128)
		require.NoError(t, err)

		c, err := estimator.NewCascadingEstimator(small, large)
		require.NoError(t, err)
		return c
	}, estimatortest.Capacity{Min: 64, Max: 129})
}

func TestCascadingEstimatorRequiresTwo(t *testing.T) {
	_, err := estimator.NewCascadingEstimator()
	assert.Error(t, err)

	_, err = estimator.NewCascadingEstimator(newBoundedCounter(1))
	assert.Error(t, err)
}

func TestCascadingEstimatorThreeLevels(t *testing.T) {
	levels := []*boundedCounter{newBoundedCounter(2), newBoundedCounter(3), newBoundedCounter(5)}
	c, err := estimator.NewCascadingEstimator(levels[0], levels[1], levels[2])
	require.NoError(t, err)
	assert.Equal(t, int64(10), c.MaxCount())

	hash := estimator.HashString("cascade")
	expected := []struct {
		result estimator.IncrementResult
		counts [3]int64
	}{
		{estimator.Success, [3]int64{1, 0, 0}},
		{estimator.Success, [3]int64{2, 0, 0}},
		{estimator.Success, [3]int64{2, 1, 0}},
		{estimator.Success, [3]int64{2, 2, 0}},
		{estimator.Success, [3]int64{2, 3, 0}},
		{estimator.Success, [3]int64{2, 3, 1}},
		{estimator.Success, [3]int64{2, 3, 2}},
		{estimator.Success, [3]int64{2, 3, 3}},
		{estimator.Success, [3]int64{2, 3, 4}},
		{estimator.Success, [3]int64{2, 3, 5}},
	}
	for n, step := range expected {
		result, estimate := c.TryIncrementAndEstimate(hash)
		assert.Equal(t, step.result, result, "increment %d", n)
		assert.Equal(t, int64(n+1), estimate, "increment %d", n)
		assert.Equal(t, int64(n+1), c.Estimate(hash))
		for i, level := range levels {
			assert.Equal(t, step.counts[i], level.Estimate(hash), "increment %d level %d", n, i)
		}
	}

	for n := 0; n < 3; n++ {
		result, estimate := c.TryIncrementAndEstimate(hash)
		assert.Equal(t, estimator.Overflow, result)
		assert.Equal(t, int64(11), estimate)
		assert.Equal(t, int64(10), c.Estimate(hash))
	}
}

func TestCascadingEstimatorClearKeepsTotalBytes(t *testing.T) {
	small, err := filters.NewCuckooFilter2Way[filters.Bucket8](128)
	require.NoError(t, err)
	large, err := filters.NewCuckooFilter2Way[filters.Bucket16Counting](128)
	require.NoError(t, err)
	c, err := estimator.NewCascadingEstimator(small, large)
	require.NoError(t, err)

	assert.Equal(t, int64(256), c.TotalBytes())
	assert.Equal(t, int64(16), c.MaxCount())

	for n := 0; n < 20; n++ {
		c.TryIncrementAndEstimate(estimator.HashInteger(n))
	}
	assert.Equal(t, int64(20), c.BytesUsed())

	c.Clear()
	assert.Equal(t, int64(256), c.TotalBytes())
	assert.Equal(t, int64(0), c.BytesUsed())
}

func TestCascadingEstimatorMaxBytes(t *testing.T) {
	levels := []*boundedCounter{newBoundedCounter(1), newBoundedCounter(1)}
	c, err := estimator.NewCascadingEstimator(levels[0], levels[1])
	require.NoError(t, err)

	c.SetMaxBytes(1000)
	assert.Equal(t, int64(1000), c.MaxBytes())
	// 128 bytes are committed, every level may grow into the remaining 872.
	assert.Equal(t, int64(64+872), levels[0].MaxBytes())
	assert.Equal(t, int64(64+872), levels[1].MaxBytes())

	c.SetMaxBytes(100)
	assert.Equal(t, int64(64), levels[0].MaxBytes())
	assert.Equal(t, int64(64), levels[1].MaxBytes())
}

func TestCascadingEstimatorNoCapacity(t *testing.T) {
	small := newBoundedCounter(1)
	large := estimator.NewScalableEstimator(func(estimator.ScaleMetrics) estimator.FrequencyEstimator {
		return nil
	})
	c, err := estimator.NewCascadingEstimator(small, large)
	require.NoError(t, err)

	hash := estimator.HashString("full")
	result, estimate := c.TryIncrementAndEstimate(hash)
	assert.Equal(t, estimator.Success, result)
	assert.Equal(t, int64(1), estimate)

	result, estimate = c.TryIncrementAndEstimate(hash)
	assert.Equal(t, estimator.NoCapacity, result)
	assert.Equal(t, int64(0), estimate)
	assert.Equal(t, int64(1), c.Estimate(hash))
}
