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

package filters

import (
	"fmt"

	"github.com/leosingleton/pennylogger/estimator"
	"github.com/leosingleton/pennylogger/internal"
)

// minBuckets is the smallest bucket array a cuckoo filter is built with.
const minBuckets = 4

// cuckooFilterOptions holds optional parameters for filter construction.
type cuckooFilterOptions struct {
	ways int
}

// CuckooFilterOption is a functional option for configuring a CuckooFilter.
type CuckooFilterOption func(*cuckooFilterOptions)

// WithWays sets the number of candidate buckets per value. Only 2 and 4 are supported.
func WithWays(ways int) CuckooFilterOption {
	return func(opts *cuckooFilterOptions) {
		opts.ways = ways
	}
}

func applyCuckooFilterOptions(opts []CuckooFilterOption) (*cuckooFilterOptions, error) {
	options := &cuckooFilterOptions{
		ways: 2,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.ways != 2 && options.ways != 4 {
		return nil, fmt.Errorf("ways must be 2 or 4, got %d", options.ways)
	}
	return options, nil
}

// NewCuckooFilter creates a cuckoo filter of approximately size bytes.
//
// The bucket count is rounded up to a power of 2 with a minimum of 4 buckets, so the filter may be up to twice
// as large as requested. Returns an error if size is not positive or the options are invalid.
func NewCuckooFilter[B CuckooBucket[B]](size int64, opts ...CuckooFilterOption) (*CuckooFilter[B], error) {
	if size <= 0 {
		return nil, fmt.Errorf("size must be positive")
	}

	options, err := applyCuckooFilterOptions(opts)
	if err != nil {
		return nil, err
	}

	var zero B
	bucketSize := zero.SizeOf()
	numBuckets := max(internal.RoundUpToPowerOf2(uint64((size+bucketSize-1)/bucketSize)), minBuckets)

	f := &CuckooFilter[B]{
		buckets: make([]B, numBuckets),
		ways:    options.ways,
	}
	f.maxBytes = f.TotalBytes()
	return f, nil
}

// NewCuckooFilter2Way creates a cuckoo filter with 2 candidate buckets per value.
func NewCuckooFilter2Way[B CuckooBucket[B]](size int64) (*CuckooFilter[B], error) {
	return NewCuckooFilter[B](size, WithWays(2))
}

// NewCuckooFilter4Way creates a cuckoo filter with 4 candidate buckets per value.
func NewCuckooFilter4Way[B CuckooBucket[B]](size int64) (*CuckooFilter[B], error) {
	return NewCuckooFilter[B](size, WithWays(4))
}

// NewCascadingCuckooFilter creates a CascadingEstimator over three scalable cuckoo filters: 8-bit buckets for
// values seen once, 16-bit buckets counting up to 15 more, and 64-bit buckets counting up to 65535 more.
// Each level grows with estimator.DefaultSizeCalculator inside the budget set with SetMaxBytes.
func NewCascadingCuckooFilter(opts ...CuckooFilterOption) (*estimator.CascadingEstimator, error) {
	if _, err := applyCuckooFilterOptions(opts); err != nil {
		return nil, err
	}

	return estimator.NewCascadingEstimator(
		newScalableCuckooFilter[Bucket8](opts),
		newScalableCuckooFilter[Bucket16Counting](opts),
		newScalableCuckooFilter[Bucket64Counting](opts),
	)
}

// NewCascadingCuckooFilter2Way is NewCascadingCuckooFilter with 2-way filters.
func NewCascadingCuckooFilter2Way() *estimator.CascadingEstimator {
	c, _ := NewCascadingCuckooFilter(WithWays(2))
	return c
}

// NewCascadingCuckooFilter4Way is NewCascadingCuckooFilter with 4-way filters.
func NewCascadingCuckooFilter4Way() *estimator.CascadingEstimator {
	c, _ := NewCascadingCuckooFilter(WithWays(4))
	return c
}

func newScalableCuckooFilter[B CuckooBucket[B]](opts []CuckooFilterOption) *estimator.ScalableEstimator {
	return estimator.NewScalableEstimatorWithSize(func(size int64) estimator.FrequencyEstimator {
		f, err := NewCuckooFilter[B](size, opts...)
		if err != nil {
			return nil
		}
		return f
	})
}
