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

import "errors"

// IncrementResult is the outcome of FrequencyEstimator.TryIncrementAndEstimate.
type IncrementResult int

const (
	// Success means the value was incremented and the estimate is its new count.
	Success IncrementResult = iota
	// Overflow means the counter is saturated. The stored value is unchanged and the estimate is the count it
	// would have had.
	Overflow
	// NoCapacity means the value could not be tracked at all. The estimate is 0.
	NoCapacity
)

func (r IncrementResult) String() string {
	switch r {
	case Success:
		return "Success"
	case Overflow:
		return "Overflow"
	case NoCapacity:
		return "NoCapacity"
	default:
		return "Unknown"
	}
}

// ErrInvalidEstimator is raised when a scaling factory returns an estimator that would break the ordering of
// its predecessors.
var ErrInvalidEstimator = errors.New("invalid estimator")

// FrequencyEstimator is a memory-bounded approximate counter keyed by Hash.
//
// Implementations are not safe for concurrent use.
type FrequencyEstimator interface {
	// MaxBytes is an advisory memory budget. Fixed-size estimators ignore it.
	MaxBytes() int64
	SetMaxBytes(maxBytes int64)

	// MaxCount is the largest count a single value can reach before Overflow.
	MaxCount() int64

	// TotalBytes is the memory currently allocated.
	TotalBytes() int64

	// BytesUsed is the part of TotalBytes that holds values.
	BytesUsed() int64

	Estimate(hash Hash) int64
	TryIncrementAndEstimate(hash Hash) (IncrementResult, int64)
	Clear()
}
