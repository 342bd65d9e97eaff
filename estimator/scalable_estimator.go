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

package estimator

import (
	"fmt"
	"math"
)

// EstimatorFactory creates the next estimator for a ScalableEstimator, or returns nil if none fits.
type EstimatorFactory func(metrics ScaleMetrics) FrequencyEstimator

// ScalableEstimator holds a growing list of estimators of one kind, newest first. When the newest reports
// NoCapacity a larger one is added in front of it. Estimators are never shrunk or removed except by Clear.
type ScalableEstimator struct {
	factory    EstimatorFactory
	estimators []FrequencyEstimator
	maxBytes   int64
	maxCount   int64

	lastClearEstimatorCount int
	lastClearTotalBytes     int64
	lastClearBytesUsed      int64
}

// NewScalableEstimator creates an empty estimator that calls factory each time it needs to grow. The budget is
// unlimited until SetMaxBytes.
func NewScalableEstimator(factory EstimatorFactory) *ScalableEstimator {
	return &ScalableEstimator{
		factory:  factory,
		maxBytes: math.MaxInt64,
		maxCount: -1,
	}
}

// NewScalableEstimatorWithSize sizes each new estimator with DefaultSizeCalculator and builds it with create.
func NewScalableEstimatorWithSize(create func(size int64) FrequencyEstimator) *ScalableEstimator {
	return NewScalableEstimator(func(metrics ScaleMetrics) FrequencyEstimator {
		size := DefaultSizeCalculator(metrics)
		if size <= 0 {
			return nil
		}
		return create(size)
	})
}

func (s *ScalableEstimator) MaxBytes() int64 {
	return s.maxBytes
}

func (s *ScalableEstimator) SetMaxBytes(maxBytes int64) {
	s.maxBytes = maxBytes
}

// MaxCount returns the MaxCount shared by every estimator. With no estimators yet, the factory is called once
// with a 1 KiB budget. It returns 0 if the factory yields nothing.
func (s *ScalableEstimator) MaxCount() int64 {
	if len(s.estimators) > 0 {
		return s.estimators[0].MaxCount()
	}
	if s.maxCount < 0 {
		sample := s.factory(ScaleMetrics{BytesRemaining: 1024})
		if sample == nil {
			return 0
		}
		s.maxCount = sample.MaxCount()
	}
	return s.maxCount
}

func (s *ScalableEstimator) TotalBytes() int64 {
	var sum int64
	for _, est := range s.estimators {
		sum += est.TotalBytes()
	}
	return sum
}

func (s *ScalableEstimator) BytesUsed() int64 {
	var sum int64
	for _, est := range s.estimators {
		sum += est.BytesUsed()
	}
	return sum
}

func (s *ScalableEstimator) Estimate(hash Hash) int64 {
	var sum int64
	for _, est := range s.estimators {
		sum += est.Estimate(hash)
	}
	return sum
}

// Len returns the number of estimators currently held.
func (s *ScalableEstimator) Len() int {
	return len(s.estimators)
}

// TryIncrementAndEstimate increments hash in the newest estimator, growing once on NoCapacity.
//
// A value spread over several estimators can reach MaxCount before any of them overflows; it is reported as
// Overflow at that point so that a surrounding CascadingEstimator moves it on.
func (s *ScalableEstimator) TryIncrementAndEstimate(hash Hash) (IncrementResult, int64) {
	estimate := s.Estimate(hash) + 1
	if maxCount := s.MaxCount(); maxCount > 0 && estimate > maxCount {
		return Overflow, estimate
	}

	if len(s.estimators) > 0 {
		result, _ := s.estimators[0].TryIncrementAndEstimate(hash)
		if result != NoCapacity {
			return result, estimate
		}
	}

	if est := s.addEstimator(); est != nil {
		result, _ := est.TryIncrementAndEstimate(hash)
		if result != NoCapacity {
			return result, estimate
		}
	}
	return NoCapacity, 0
}

// Clear drops every estimator and remembers how large they had grown.
func (s *ScalableEstimator) Clear() {
	if len(s.estimators) == 0 {
		return
	}

	s.lastClearEstimatorCount = len(s.estimators)
	s.lastClearTotalBytes = s.TotalBytes()
	s.lastClearBytesUsed = s.BytesUsed()
	s.estimators = nil
}

// Metrics returns the ScaleMetrics that the next growth would be sized from.
func (s *ScalableEstimator) Metrics() ScaleMetrics {
	var prev FrequencyEstimator
	if len(s.estimators) > 0 {
		prev = s.estimators[0]
	}
	return ScaleMetrics{
		EstimatorCount:          len(s.estimators),
		BytesRemaining:          s.maxBytes - s.BytesUsed(),
		PreviousEstimator:       prev,
		LastClearEstimatorCount: s.lastClearEstimatorCount,
		LastClearTotalBytes:     s.lastClearTotalBytes,
		LastClearBytesUsed:      s.lastClearBytesUsed,
	}
}

func (s *ScalableEstimator) addEstimator() FrequencyEstimator {
	metrics := s.Metrics()
	prev := metrics.PreviousEstimator
	if metrics.BytesRemaining <= metrics.previousTotalBytes() {
		return nil
	}

	est := s.factory(metrics)
	if est == nil {
		return nil
	}

	if prev != nil {
		if est.TotalBytes() <= prev.TotalBytes() {
			panic(fmt.Errorf("%w: size %d is not larger than the previous size of %d",
				ErrInvalidEstimator, est.TotalBytes(), prev.TotalBytes()))
		}
		if est.MaxCount() != prev.MaxCount() {
			panic(fmt.Errorf("%w: MaxCount=%d when %d was expected",
				ErrInvalidEstimator, est.MaxCount(), prev.MaxCount()))
		}
	}

	s.estimators = append([]FrequencyEstimator{est}, s.estimators...)
	return est
}
