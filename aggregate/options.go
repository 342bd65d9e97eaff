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
	"io"

	"github.com/sirupsen/logrus"

	"github.com/leosingleton/pennylogger/estimator"
)

type options struct {
	logger    logrus.FieldLogger
	estimator estimator.FrequencyEstimator
}

// Option configures an EnumerableProperty.
type Option func(*options)

// WithLogger sets the logger for debug output. The default discards everything.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEstimator replaces the lossy implementation's 4-way cascading cuckoo filter. Its MaxBytes is overwritten
// with the configured MaxMemory.
func WithEstimator(est estimator.FrequencyEstimator) Option {
	return func(o *options) {
		o.estimator = est
	}
}

func applyOptions(opts []Option) options {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	o := options{logger: discard}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
