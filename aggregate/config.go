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

package aggregate

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTop         = 5
	DefaultApproximate = true
	DefaultMaxMemory   = 128 * 1024
)

// EnumerableConfig controls how an enumerable property counts its values.
type EnumerableConfig struct {
	// Top is the number of values reported.
	Top int `yaml:"top"`
	// Approximate selects the memory-bounded lossy implementation.
	Approximate bool `yaml:"approximate"`
	// MaxMemory is the byte budget of the lossy implementation's estimator.
	MaxMemory int64 `yaml:"max_memory"`
	// IgnoreNull drops null values instead of counting them.
	IgnoreNull bool `yaml:"ignore_null"`
}

// DefaultEnumerableConfig reports the top 5 values using the lossy implementation within 128 KiB.
func DefaultEnumerableConfig() EnumerableConfig {
	return EnumerableConfig{
		Top:         DefaultTop,
		Approximate: DefaultApproximate,
		MaxMemory:   DefaultMaxMemory,
	}
}

func (c EnumerableConfig) Validate() error {
	if c.Top <= 0 {
		return errors.New("top must be positive")
	}
	if c.Approximate && c.MaxMemory <= 0 {
		return errors.New("max_memory must be positive when approximate is set")
	}
	return nil
}

// LoadEnumerableConfig reads a YAML config file. Fields missing from the file keep their defaults.
func LoadEnumerableConfig(filePath string) (*EnumerableConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultEnumerableConfig()
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
