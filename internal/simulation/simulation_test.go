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

package simulation

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leosingleton/pennylogger/estimator"
)

// exactEstimator counts every hash exactly.
type exactEstimator struct {
	counts map[estimator.Hash]int64
}

func newExactEstimator() *exactEstimator {
	return &exactEstimator{counts: make(map[estimator.Hash]int64)}
}

func (e *exactEstimator) MaxBytes() int64                 { return math.MaxInt64 }
func (e *exactEstimator) SetMaxBytes(int64)               {}
func (e *exactEstimator) MaxCount() int64                 { return math.MaxInt64 }
func (e *exactEstimator) TotalBytes() int64               { return int64(len(e.counts)) * 24 }
func (e *exactEstimator) BytesUsed() int64                { return int64(len(e.counts)) * 24 }
func (e *exactEstimator) Estimate(h estimator.Hash) int64 { return e.counts[h] }
func (e *exactEstimator) Clear()                          { clear(e.counts) }

func (e *exactEstimator) TryIncrementAndEstimate(h estimator.Hash) (estimator.IncrementResult, int64) {
	e.counts[h]++
	return estimator.Success, e.counts[h]
}

func TestSimulationRun(t *testing.T) {
	scenario := DefaultScenario()
	scenario.Iterations = 3
	scenario.InitialValuesPerIteration = 200

	zero := NewSubject("Zero", &ZeroEstimator{})
	exact := NewSubject("Exact", newExactEstimator())
	sim, err := NewSimulation(scenario, zero, exact)
	require.NoError(t, err)

	reports, err := sim.Run()
	require.NoError(t, err)
	assert.Len(t, reports, 3)

	for _, report := range reports {
		require.Len(t, report, 2)
		zeroSummary, exactSummary := report[0], report[1]

		assert.Equal(t, "Zero", zeroSummary.Name)
		assert.Equal(t, zeroSummary.TotalCount, zeroSummary.Overflows)
		assert.Equal(t, int64(0), zeroSummary.Successes)
		assert.Equal(t, int64(0), zeroSummary.TotalBytes)
		assert.Equal(t, 0.0, zeroSummary.LoadFactor)
		assert.Greater(t, zeroSummary.AverageError, 0.0)
		assert.Equal(t, 0.0, zeroSummary.AverageErrorExOverflow)
		assert.Equal(t, 100.0, zeroSummary.CompressionRatio)

		assert.Equal(t, "Exact", exactSummary.Name)
		assert.Equal(t, zeroSummary.TotalCount, exactSummary.TotalCount)
		assert.Equal(t, zeroSummary.UniqueValues, exactSummary.UniqueValues)
		assert.Equal(t, exactSummary.TotalCount, exactSummary.Successes)
		assert.GreaterOrEqual(t, exactSummary.UniqueValues, int64(200))
		assert.Equal(t, 0.0, exactSummary.AverageError)
		assert.Equal(t, int64(0), exactSummary.MaxError)
		assert.Equal(t, 100.0, exactSummary.LoadFactor)
	}

	// Estimators are cleared after every iteration.
	assert.Equal(t, int64(0), exact.Estimator.TotalBytes())
}

func TestSimulationIsReproducible(t *testing.T) {
	scenario := DefaultScenario()
	scenario.Iterations = 1
	scenario.InitialValuesPerIteration = 100

	run := func() []Summary {
		sim, err := NewSimulation(scenario, NewSubject("Exact", newExactEstimator()))
		require.NoError(t, err)
		reports, err := sim.Run()
		require.NoError(t, err)
		return reports[0]
	}

	assert.Equal(t, run(), run())
}

func TestSimulationHashers(t *testing.T) {
	scenario := DefaultScenario()
	scenario.Iterations = 1
	scenario.InitialValuesPerIteration = 100

	var baseline Summary
	for _, name := range []string{HasherBuiltin, HasherMurmur3, HasherXXHash} {
		scenario.Hasher = name
		sim, err := NewSimulation(scenario, NewSubject(name, newExactEstimator()))
		require.NoError(t, err)
		reports, err := sim.Run()
		require.NoError(t, err)

		summary := reports[0][0]
		assert.Equal(t, int64(0), summary.MaxError, name)
		if name == HasherBuiltin {
			baseline = summary
			continue
		}
		// The values come from the seeded source, so only the hashes differ.
		assert.Equal(t, baseline.UniqueValues, summary.UniqueValues, name)
		assert.Equal(t, baseline.TotalCount, summary.TotalCount, name)
	}

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	murmur, err := newHasher(HasherMurmur3)
	require.NoError(t, err)
	xx, err := newHasher(HasherXXHash)
	require.NoError(t, err)
	assert.NotEqual(t, murmur.Hash(id), xx.Hash(id))
	assert.NotEqual(t, estimator.HashUUID(id), murmur.Hash(id))
}

func TestNewSimulationInvalid(t *testing.T) {
	_, err := NewSimulation(DefaultScenario())
	assert.Error(t, err)

	scenario := DefaultScenario()
	scenario.ProbabilityFinal = 0
	_, err = NewSimulation(scenario, NewSubject("Zero", &ZeroEstimator{}))
	assert.Error(t, err)

	scenario = DefaultScenario()
	scenario.Hasher = "md5"
	_, err = NewSimulation(scenario, NewSubject("Zero", &ZeroEstimator{}))
	assert.ErrorContains(t, err, `unknown hasher "md5"`)
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "scenario.yaml")
	err := os.WriteFile(path, []byte("iterations: 2\nprobability_new: 0.5\nhasher: xxhash\n"), 0o600)
	require.NoError(t, err)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, 2, scenario.Iterations)
	assert.Equal(t, 0.5, scenario.ProbabilityNew)
	assert.Equal(t, 1000, scenario.InitialValuesPerIteration)
	assert.Equal(t, 0.3, scenario.ProbabilityFinal)
	assert.Equal(t, HasherXXHash, scenario.Hasher)

	_, err = LoadScenario(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("iterations: -1\n"), 0o600))
	_, err = LoadScenario(bad)
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("iterations: [\n"), 0o600))
	_, err = LoadScenario(garbage)
	assert.Error(t, err)
}
