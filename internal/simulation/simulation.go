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
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/leosingleton/pennylogger/common"
	"github.com/leosingleton/pennylogger/estimator"
)

// Subject is a named estimator taking part in a simulation, together with the result codes it returned during
// the current iteration.
type Subject struct {
	Name      string
	Estimator estimator.FrequencyEstimator

	successes    int64
	overflows    int64
	noCapacities int64
}

// NewSubject wraps est for a simulation. The estimator is cleared after every iteration.
func NewSubject(name string, est estimator.FrequencyEstimator) *Subject {
	return &Subject{Name: name, Estimator: est}
}

func (s *Subject) simulateValue(hash estimator.Hash) error {
	result, _ := s.Estimator.TryIncrementAndEstimate(hash)
	switch result {
	case estimator.Success:
		s.successes++
	case estimator.Overflow:
		s.overflows++
	case estimator.NoCapacity:
		s.noCapacities++
	default:
		return fmt.Errorf("%s returned unknown result %d", s.Name, result)
	}
	return nil
}

func (s *Subject) clear() {
	s.Estimator.Clear()
	s.successes = 0
	s.overflows = 0
	s.noCapacities = 0
}

// Summary compares one estimator against the exact counts at the end of an iteration.
type Summary struct {
	Name         string
	Successes    int64
	Overflows    int64
	NoCapacities int64

	TotalBytes   int64
	LoadFactor   float64
	UniqueValues int64
	TotalCount   int64

	// Errors are absolute differences between the estimate and the exact count. The ExOverflow variants cap the
	// exact count at MaxCount first.
	AverageError           float64
	AverageErrorExOverflow float64
	MaxError               int64
	MaxErrorExOverflow     int64

	// CompressionRatio is the memory saved, in percent, against storing a 16-byte key and an 8-byte count per
	// unique value.
	CompressionRatio float64
}

func (s *Subject) summarize(actual map[uuid.UUID]int64, hasher common.ItemHasher[uuid.UUID]) Summary {
	est := s.Estimator
	summary := Summary{
		Name:         s.Name,
		Successes:    s.successes,
		Overflows:    s.overflows,
		NoCapacities: s.noCapacities,
		TotalBytes:   est.TotalBytes(),
		UniqueValues: int64(len(actual)),
	}

	var totalError, totalErrorExOverflow int64
	maxCount := est.MaxCount()
	for value, expected := range actual {
		estimate := est.Estimate(hasher.Hash(value))
		errorValue := abs(estimate - expected)
		errorExOverflow := abs(estimate - min(expected, maxCount))

		totalError += errorValue
		totalErrorExOverflow += errorExOverflow
		summary.TotalCount += expected
		summary.MaxError = max(summary.MaxError, errorValue)
		summary.MaxErrorExOverflow = max(summary.MaxErrorExOverflow, errorExOverflow)
	}

	if summary.TotalBytes > 0 {
		summary.LoadFactor = float64(est.BytesUsed()) / float64(summary.TotalBytes) * 100.0
	}
	if summary.UniqueValues > 0 {
		uncompressedSize := float64(summary.UniqueValues * 24)
		summary.AverageError = float64(totalError) / float64(summary.UniqueValues)
		summary.AverageErrorExOverflow = float64(totalErrorExOverflow) / float64(summary.UniqueValues)
		summary.CompressionRatio = (uncompressedSize - float64(summary.TotalBytes)) / uncompressedSize * 100.0
	}
	return summary
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Simulation feeds the same random stream of UUIDs to several estimators and reports how far each one drifts
// from the exact counts.
//
// Each iteration starts with an active set of values. Every event either picks a new value or an active one,
// and the value then leaves the active set with ProbabilityFinal. The iteration ends once the active set is
// empty.
type Simulation struct {
	scenario Scenario
	subjects []*Subject
	hasher   common.ItemHasher[uuid.UUID]
	rng      *rand.Rand
}

// NewSimulation validates scenario and prepares it to run against subjects, which must not be empty.
func NewSimulation(scenario Scenario, subjects ...*Subject) (*Simulation, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("at least one estimator is required")
	}

	hasher, err := newHasher(scenario.Hasher)
	if err != nil {
		return nil, err
	}

	seed := scenario.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Simulation{
		scenario: scenario,
		subjects: subjects,
		hasher:   hasher,
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Run executes every iteration and returns one summary per subject per iteration.
func (s *Simulation) Run() ([][]Summary, error) {
	reports := make([][]Summary, 0, s.scenario.Iterations)
	for n := 0; n < s.scenario.Iterations; n++ {
		report, err := s.runIteration()
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", n, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (s *Simulation) runIteration() ([]Summary, error) {
	active := make([]uuid.UUID, 0, s.scenario.InitialValuesPerIteration)
	actual := make(map[uuid.UUID]int64)

	for n := 0; n < s.scenario.InitialValuesPerIteration; n++ {
		value, err := s.newValue()
		if err != nil {
			return nil, err
		}
		active = append(active, value)
	}

	for len(active) > 0 {
		var value uuid.UUID
		index := -1
		if s.rng.Float64() < s.scenario.ProbabilityNew {
			var err error
			if value, err = s.newValue(); err != nil {
				return nil, err
			}
		} else {
			index = s.rng.Intn(len(active))
			value = active[index]
		}

		hash := s.hasher.Hash(value)
		for _, subject := range s.subjects {
			if err := subject.simulateValue(hash); err != nil {
				return nil, err
			}
		}
		actual[value]++

		final := s.rng.Float64() < s.scenario.ProbabilityFinal
		if final && index >= 0 {
			active[index] = active[len(active)-1]
			active = active[:len(active)-1]
		}
	}

	summaries := make([]Summary, 0, len(s.subjects))
	for _, subject := range s.subjects {
		summaries = append(summaries, subject.summarize(actual, s.hasher))
		subject.clear()
	}
	return summaries, nil
}

func (s *Simulation) newValue() (uuid.UUID, error) {
	return uuid.NewRandomFromReader(s.rng)
}
