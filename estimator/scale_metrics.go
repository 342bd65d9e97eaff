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

// ScaleMetrics is passed to a ScalableEstimator factory to size the next estimator.
type ScaleMetrics struct {
	// EstimatorCount is the number of estimators currently held.
	EstimatorCount int
	// BytesRemaining is the budget left for the new estimator.
	BytesRemaining int64
	// PreviousEstimator is the current head, or nil if there is none.
	PreviousEstimator FrequencyEstimator

	// Statistics captured by the most recent Clear, used to jump straight to the working-set size.
	LastClearEstimatorCount int
	LastClearTotalBytes     int64
	LastClearBytesUsed      int64
}

func (m ScaleMetrics) previousTotalBytes() int64 {
	if m.PreviousEstimator == nil {
		return 0
	}
	return m.PreviousEstimator.TotalBytes()
}

// DefaultSizeCalculator returns the size in bytes for the next estimator, or 0 if the budget cannot hold one.
//
// The size is at least 1024 bytes and larger than the previous estimator. It aims for four times the previous
// size, or for an 80% load factor on the usage seen at the last Clear, and is capped by BytesRemaining.
func DefaultSizeCalculator(m ScaleMetrics) int64 {
	prev := m.previousTotalBytes()

	minSize := max(prev+1, 1024)
	if minSize > m.BytesRemaining {
		return 0
	}

	idealSize := max(int64(float64(m.LastClearBytesUsed)/0.8), prev*4)
	return min(max(minSize, idealSize), m.BytesRemaining)
}
