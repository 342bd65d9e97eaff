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
	"errors"
	"math"
)

// CascadingEstimator routes a value through a fixed sequence of estimators ordered from the smallest per-value
// capacity to the largest. A value only reaches level n+1 once it has overflowed level n, so the total count is
// the sum across levels.
type CascadingEstimator struct {
	estimators []FrequencyEstimator
	maxBytes   int64
}

// NewCascadingEstimator returns an error if fewer than two estimators are given.
func NewCascadingEstimator(estimators ...FrequencyEstimator) (*CascadingEstimator, error) {
	if len(estimators) < 2 {
		return nil, errors.New("cascading estimator requires at least 2 estimators")
	}

	c := &CascadingEstimator{
		estimators: estimators,
		maxBytes:   math.MaxInt64,
	}
	c.recomputeMaxBytes()
	return c, nil
}

func (c *CascadingEstimator) MaxBytes() int64 {
	return c.maxBytes
}

func (c *CascadingEstimator) SetMaxBytes(maxBytes int64) {
	c.maxBytes = maxBytes
	c.recomputeMaxBytes()
}

func (c *CascadingEstimator) MaxCount() int64 {
	var sum int64
	for _, est := range c.estimators {
		sum += est.MaxCount()
	}
	return sum
}

func (c *CascadingEstimator) TotalBytes() int64 {
	var sum int64
	for _, est := range c.estimators {
		sum += est.TotalBytes()
	}
	return sum
}

func (c *CascadingEstimator) BytesUsed() int64 {
	var sum int64
	for _, est := range c.estimators {
		sum += est.BytesUsed()
	}
	return sum
}

func (c *CascadingEstimator) Estimate(hash Hash) int64 {
	var sum int64
	for _, est := range c.estimators {
		sum += est.Estimate(hash)
	}
	return sum
}

// TryIncrementAndEstimate increments the first level that has not overflowed for hash.
//
// An overflowing level reports its MaxCount+1, so each level contributes its estimate minus one and a single
// one is added back at the start.
func (c *CascadingEstimator) TryIncrementAndEstimate(hash Hash) (IncrementResult, int64) {
	defer c.recomputeMaxBytes()

	estimate := int64(1)
	for _, est := range c.estimators {
		result, value := est.TryIncrementAndEstimate(hash)
		switch result {
		case Overflow:
			estimate += value - 1
		case NoCapacity:
			return NoCapacity, 0
		default:
			return result, estimate + value - 1
		}
	}
	return Overflow, estimate
}

func (c *CascadingEstimator) Clear() {
	for _, est := range c.estimators {
		est.Clear()
	}
	c.recomputeMaxBytes()
}

// recomputeMaxBytes lets every level grow into whatever the whole cascade has left.
func (c *CascadingEstimator) recomputeMaxBytes() {
	bytesRemaining := max(c.maxBytes-c.TotalBytes(), 0)
	for _, est := range c.estimators {
		est.SetMaxBytes(est.TotalBytes() + bytesRemaining)
	}
}
