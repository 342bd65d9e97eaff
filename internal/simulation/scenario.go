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
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario parameterizes a simulated workload.
type Scenario struct {
	// Iterations is the number of independent runs. Estimators are cleared between runs.
	Iterations int `yaml:"iterations"`
	// InitialValuesPerIteration is the size of the active set each run starts with.
	InitialValuesPerIteration int `yaml:"initial_values_per_iteration"`
	// ProbabilityNew is the chance that an event carries a never-seen value instead of an active one.
	ProbabilityNew float64 `yaml:"probability_new"`
	// ProbabilityFinal is the chance that a value leaves the active set after an event.
	ProbabilityFinal float64 `yaml:"probability_final"`
	// Seed makes runs reproducible. Zero picks a random seed.
	Seed int64 `yaml:"seed"`
	// Hasher is HasherBuiltin, HasherMurmur3 or HasherXXHash.
	Hasher string `yaml:"hasher"`
}

// DefaultScenario returns the workload used by the estimator stress tests.
func DefaultScenario() Scenario {
	return Scenario{
		Iterations:                5,
		InitialValuesPerIteration: 1000,
		ProbabilityNew:            0.25,
		ProbabilityFinal:          0.3,
		Seed:                      1,
		Hasher:                    HasherBuiltin,
	}
}

func (s Scenario) Validate() error {
	if s.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive")
	}
	if s.InitialValuesPerIteration <= 0 {
		return fmt.Errorf("initial_values_per_iteration must be positive")
	}
	if s.ProbabilityNew < 0 || s.ProbabilityNew >= 1 {
		return fmt.Errorf("probability_new must be in [0, 1)")
	}
	if s.ProbabilityFinal <= 0 || s.ProbabilityFinal > 1 {
		return fmt.Errorf("probability_final must be in (0, 1]")
	}
	if _, err := newHasher(s.Hasher); err != nil {
		return fmt.Errorf("hasher: %w", err)
	}
	return nil
}

// LoadScenario reads a YAML scenario file. Fields missing from the file keep their DefaultScenario values.
func LoadScenario(filePath string) (*Scenario, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario := DefaultScenario()
	err = yaml.Unmarshal(data, &scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario YAML: %w", err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}
