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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leosingleton/pennylogger/estimator"
	"github.com/leosingleton/pennylogger/filters"
	"github.com/leosingleton/pennylogger/internal/estimatortest"
)

// doublingFactory starts at 64 bytes and doubles the previous size.
func doublingFactory(metrics estimator.ScaleMetrics) estimator.FrequencyEstimator {
	size := int64(32)
	if metrics.PreviousEstimator != nil {
		size = metrics.PreviousEstimator.TotalBytes()
	}
	f, err := filters.NewCuckooFilter2Way[filters.Bucket16Counting](size * 2)
	if err != nil {
		return nil
	}
	return f
}

func TestScalableEstimator(t *testing.T) {
	estimatortest.Run(t, func() estimator.FrequencyEstimator {
		s := estimator.NewScalableEstimator(doublingFactory)
		s.SetMaxBytes(1024)
		return s
	}, estimatortest.Capacity{Min: 384, Max: 513})
}

func TestScalableEstimatorGrows(t *testing.T) {
	s := estimator.NewScalableEstimator(doublingFactory)
	s.SetMaxBytes(1024)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, int64(15), s.MaxCount())
	assert.Equal(t, int64(0), s.TotalBytes())

	for n := 0; n < 32; n++ {
		result, _ := s.TryIncrementAndEstimate(estimator.HashInteger(n))
		assert.NotEqual(t, estimator.NoCapacity, result)
	}
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, int64(64), s.TotalBytes())

	for n := 32; n < 300; n++ {
		s.TryIncrementAndEstimate(estimator.HashInteger(n))
	}
	assert.Greater(t, s.Len(), 1)
	assert.LessOrEqual(t, s.TotalBytes(), int64(1024))
	for n := 0; n < 300; n++ {
		assert.GreaterOrEqual(t, s.Estimate(estimator.HashInteger(n)), int64(1))
	}
}

func TestScalableEstimatorClearKeepsMetrics(t *testing.T) {
	s := estimator.NewScalableEstimatorWithSize(func(size int64) estimator.FrequencyEstimator {
		f, err := filters.NewCuckooFilter2Way[filters.Bucket16Counting](size)
		if err != nil {
			return nil
		}
		return f
	})

	for n := 0; n < 2000; n++ {
		s.TryIncrementAndEstimate(estimator.HashInteger(n))
	}
	count := s.Len()
	totalBytes := s.TotalBytes()
	bytesUsed := s.BytesUsed()
	require.Greater(t, count, 1)

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, int64(0), s.TotalBytes())

	metrics := s.Metrics()
	assert.Equal(t, count, metrics.LastClearEstimatorCount)
	assert.Equal(t, totalBytes, metrics.LastClearTotalBytes)
	assert.Equal(t, bytesUsed, metrics.LastClearBytesUsed)
	assert.Nil(t, metrics.PreviousEstimator)

	// The first estimator after a Clear is sized for the previous working set.
	s.TryIncrementAndEstimate(estimator.HashInteger(0))
	assert.Equal(t, 1, s.Len())
	assert.GreaterOrEqual(t, s.TotalBytes(), estimator.DefaultSizeCalculator(estimator.ScaleMetrics{
		BytesRemaining:     1 << 40,
		LastClearBytesUsed: bytesUsed,
	}))
}

func TestScalableEstimatorRejectsSmallerEstimator(t *testing.T) {
	s := estimator.NewScalableEstimator(func(estimator.ScaleMetrics) estimator.FrequencyEstimator {
		f, _ := filters.NewCuckooFilter2Way[filters.Bucket8](8)
		return f
	})

	assert.PanicsWithError(t, "invalid estimator: size 8 is not larger than the previous size of 8", func() {
		for n := 0; n < 1000; n++ {
			s.TryIncrementAndEstimate(estimator.HashInteger(n))
		}
	})
}

func TestScalableEstimatorRejectsDifferentMaxCount(t *testing.T) {
	s := estimator.NewScalableEstimator(func(metrics estimator.ScaleMetrics) estimator.FrequencyEstimator {
		if metrics.PreviousEstimator == nil {
			f, _ := filters.NewCuckooFilter2Way[filters.Bucket8](8)
			return f
		}
		f, _ := filters.NewCuckooFilter2Way[filters.Bucket16Counting](1024)
		return f
	})

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, estimator.ErrInvalidEstimator))
		assert.Contains(t, err.Error(), "MaxCount=15 when 1 was expected")
	}()
	for n := 0; n < 1000; n++ {
		s.TryIncrementAndEstimate(estimator.HashInteger(n))
	}
}

func TestScalableEstimatorOutOfBudget(t *testing.T) {
	s := estimator.NewScalableEstimator(doublingFactory)
	s.SetMaxBytes(64)

	var noCapacity bool
	for n := 0; n < 200 && !noCapacity; n++ {
		result, estimate := s.TryIncrementAndEstimate(estimator.HashInteger(n))
		if result == estimator.NoCapacity {
			noCapacity = true
			assert.Equal(t, int64(0), estimate)
		}
	}
	assert.True(t, noCapacity)
	assert.Equal(t, 1, s.Len())
}

func TestDefaultSizeCalculator(t *testing.T) {
	prev, err := filters.NewCuckooFilter2Way[filters.Bucket8](2048)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		metrics  estimator.ScaleMetrics
		expected int64
	}{
		{name: "first", metrics: estimator.ScaleMetrics{BytesRemaining: 1 << 20}, expected: 1024},
		{name: "budget below minimum", metrics: estimator.ScaleMetrics{BytesRemaining: 1000}, expected: 0},
		{name: "four times previous", metrics: estimator.ScaleMetrics{BytesRemaining: 1 << 20, PreviousEstimator: prev}, expected: 8192},
		{name: "capped by budget", metrics: estimator.ScaleMetrics{BytesRemaining: 3000, PreviousEstimator: prev}, expected: 3000},
		{name: "budget below previous", metrics: estimator.ScaleMetrics{BytesRemaining: 2048, PreviousEstimator: prev}, expected: 0},
		{name: "last clear usage", metrics: estimator.ScaleMetrics{BytesRemaining: 1 << 20, LastClearBytesUsed: 8000}, expected: 10000},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, estimator.DefaultSizeCalculator(tc.metrics))
		})
	}
}
