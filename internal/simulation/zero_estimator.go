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

import "github.com/leosingleton/pennylogger/estimator"

// ZeroEstimator tracks nothing. It is the baseline a simulation compares real estimators against.
type ZeroEstimator struct {
	maxBytes int64
}

func (z *ZeroEstimator) MaxBytes() int64             { return z.maxBytes }
func (z *ZeroEstimator) SetMaxBytes(maxBytes int64)  { z.maxBytes = maxBytes }
func (*ZeroEstimator) MaxCount() int64               { return 0 }
func (*ZeroEstimator) TotalBytes() int64             { return 0 }
func (*ZeroEstimator) BytesUsed() int64              { return 0 }
func (*ZeroEstimator) Estimate(estimator.Hash) int64 { return 0 }
func (*ZeroEstimator) Clear()                        {}

func (*ZeroEstimator) TryIncrementAndEstimate(estimator.Hash) (estimator.IncrementResult, int64) {
	return estimator.Overflow, 1
}
