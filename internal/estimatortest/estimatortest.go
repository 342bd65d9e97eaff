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

// Package estimatortest holds the behavior every estimator.FrequencyEstimator must share.
package estimatortest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leosingleton/pennylogger/estimator"
	"github.com/leosingleton/pennylogger/internal/simulation"
)

// Capacity is the accepted range for the number of unique values inserted before the first NoCapacity. A zero
// Capacity means the estimator never runs out.
type Capacity struct {
	Min int
	Max int
}

// Run runs the shared estimator tests against fresh instances from create.
func Run(t *testing.T, create func() estimator.FrequencyEstimator, capacity Capacity) {
	t.Run("InitializedToZero", func(t *testing.T) {
		est := create()
		assert.Equal(t, int64(0), est.Estimate(estimator.HashString("Test")))
		assert.Equal(t, int64(0), est.BytesUsed())
	})

	t.Run("OverflowOneValue", func(t *testing.T) {
		est := create()
		hash := estimator.HashString("Test")

		maxCount := est.MaxCount()
		for n := int64(0); n < maxCount; n++ {
			result, estimate := est.TryIncrementAndEstimate(hash)
			require.Equal(t, estimator.Success, result, "increment %d", n)
			require.Equal(t, n+1, estimate)
			require.Equal(t, n+1, est.Estimate(hash))
		}

		result, estimate := est.TryIncrementAndEstimate(hash)
		assert.Equal(t, estimator.Overflow, result)
		assert.Equal(t, maxCount+1, estimate)
		assert.Equal(t, maxCount, est.Estimate(hash))

		result, estimate = est.TryIncrementAndEstimate(hash)
		assert.Equal(t, estimator.Overflow, result)
		assert.Equal(t, maxCount+1, estimate)
	})

	t.Run("InsertValuesToCapacity", func(t *testing.T) {
		if capacity.Min < 1 || capacity.Max < 1 {
			t.Skip("estimator has no capacity limit")
		}

		est := create()
		for n := 0; n <= capacity.Max; n++ {
			// Fingerprint collisions can report Overflow on a new value. Only NoCapacity ends the run.
			result, _ := est.TryIncrementAndEstimate(estimator.HashInteger(n))
			if result == estimator.NoCapacity {
				assert.GreaterOrEqual(t, n, capacity.Min)
				return
			}
		}
		assert.Fail(t, "no NoCapacity result", "inserted %d values", capacity.Max+1)
	})

	t.Run("Clear", func(t *testing.T) {
		est := create()
		hash := estimator.HashString("Test")

		result, estimate := est.TryIncrementAndEstimate(hash)
		assert.Equal(t, estimator.Success, result)
		assert.Equal(t, int64(1), estimate)
		assert.Greater(t, est.BytesUsed(), int64(0))

		est.Clear()
		assert.Equal(t, int64(0), est.Estimate(hash))
		assert.Equal(t, int64(0), est.BytesUsed())

		result, estimate = est.TryIncrementAndEstimate(hash)
		assert.Equal(t, estimator.Success, result)
		assert.Equal(t, int64(1), estimate)
	})

	t.Run("Stress", func(t *testing.T) {
		if testing.Short() {
			t.Skip("skipping stress simulation in short mode")
		}

		sim, err := simulation.NewSimulation(simulation.DefaultScenario(), simulation.NewSubject(t.Name(), create()))
		require.NoError(t, err)

		reports, err := sim.Run()
		require.NoError(t, err)
		for _, report := range reports {
			summary := report[0]
			assert.Equal(t, summary.TotalCount, summary.Successes+summary.Overflows+summary.NoCapacities)
		}
	})
}
