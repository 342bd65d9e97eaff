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
	"errors"
	"fmt"

	"github.com/leosingleton/pennylogger/estimator"
)

const (
	defaultBloomSeed      = 9001
	defaultBloomNumHashes = 7
	defaultBloomMaxLoad   = 0.5
)

// BloomFilter is a frequency estimator that only records whether a value was seen, so MaxCount is 1. It never
// forgets a value, but false positives make unseen values look seen. Insertions stop with NoCapacity once
// MaxLoad of the bits are set, which keeps the false positive rate near MaxLoad^NumHashes and lets a
// ScalableEstimator grow a sequence of them.
type BloomFilter struct {
	seed         uint64
	numHashes    uint16
	maxLoad      float64
	capacityBits uint64
	numBitsSet   uint64
	bitArray     []uint64
	maxBytes     int64
}

type bloomFilterOptions struct {
	seed      uint64
	numHashes uint16
	maxLoad   float64
}

// BloomFilterOption is a functional option for configuring a BloomFilter.
type BloomFilterOption func(*bloomFilterOptions)

// WithSeed sets the seed of the XXH64 rehash applied to every value.
func WithSeed(seed uint64) BloomFilterOption {
	return func(opts *bloomFilterOptions) {
		opts.seed = seed
	}
}

// WithNumHashes sets the number of bits set per value.
func WithNumHashes(numHashes uint16) BloomFilterOption {
	return func(opts *bloomFilterOptions) {
		opts.numHashes = numHashes
	}
}

// WithMaxLoad sets the fraction of bits that may be set before the filter reports NoCapacity.
func WithMaxLoad(maxLoad float64) BloomFilterOption {
	return func(opts *bloomFilterOptions) {
		opts.maxLoad = maxLoad
	}
}

func applyBloomFilterOptions(opts []BloomFilterOption) (*bloomFilterOptions, error) {
	options := &bloomFilterOptions{
		seed:      defaultBloomSeed,
		numHashes: defaultBloomNumHashes,
		maxLoad:   defaultBloomMaxLoad,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.numHashes == 0 {
		return nil, errors.New("numHashes must be positive")
	}
	if options.maxLoad <= 0 || options.maxLoad > 1 {
		return nil, fmt.Errorf("maxLoad must be in (0, 1], got %g", options.maxLoad)
	}
	return options, nil
}

// NewBloomFilter creates a Bloom filter of size bytes, rounded up to a multiple of 8.
func NewBloomFilter(size int64, opts ...BloomFilterOption) (*BloomFilter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("size must be positive")
	}

	options, err := applyBloomFilterOptions(opts)
	if err != nil {
		return nil, err
	}

	capacityBits := roundCapacity(uint64(size) * 8)
	bf := &BloomFilter{
		seed:         options.seed,
		numHashes:    options.numHashes,
		maxLoad:      options.maxLoad,
		capacityBits: capacityBits,
		bitArray:     make([]uint64, capacityBits/64),
	}
	bf.maxBytes = bf.TotalBytes()
	return bf, nil
}

// NewScalableBloomFilter creates a ScalableEstimator that adds larger Bloom filters as each one fills.
func NewScalableBloomFilter(opts ...BloomFilterOption) (*estimator.ScalableEstimator, error) {
	if _, err := applyBloomFilterOptions(opts); err != nil {
		return nil, err
	}

	return estimator.NewScalableEstimatorWithSize(func(size int64) estimator.FrequencyEstimator {
		bf, err := NewBloomFilter(size, opts...)
		if err != nil {
			return nil
		}
		return bf
	}), nil
}

// BitsUsed returns the number of bits currently set to 1.
func (bf *BloomFilter) BitsUsed() uint64 {
	return bf.numBitsSet
}

// Capacity returns the total number of bits in the filter.
func (bf *BloomFilter) Capacity() uint64 {
	return bf.capacityBits
}

// Seed returns the hash seed used by the filter.
func (bf *BloomFilter) Seed() uint64 {
	return bf.seed
}

// NumHashes returns the number of hash functions used.
func (bf *BloomFilter) NumHashes() uint16 {
	return bf.numHashes
}

// MaxBytes is fixed at construction. SetMaxBytes is accepted but has no effect on the size.
func (bf *BloomFilter) MaxBytes() int64 {
	return bf.maxBytes
}

func (bf *BloomFilter) SetMaxBytes(maxBytes int64) {
	bf.maxBytes = maxBytes
}

func (bf *BloomFilter) MaxCount() int64 {
	return 1
}

func (bf *BloomFilter) TotalBytes() int64 {
	return int64(len(bf.bitArray)) * 8
}

// BytesUsed counts whole 64-bit words with any bit set.
func (bf *BloomFilter) BytesUsed() int64 {
	return countNonZero(bf.bitArray) * 8
}

func (bf *BloomFilter) Estimate(hash estimator.Hash) int64 {
	if bf.query(hash) {
		return 1
	}
	return 0
}

func (bf *BloomFilter) TryIncrementAndEstimate(hash estimator.Hash) (estimator.IncrementResult, int64) {
	if bf.query(hash) {
		return estimator.Overflow, 2
	}
	if float64(bf.numBitsSet) >= bf.maxLoad*float64(bf.capacityBits) {
		return estimator.NoCapacity, 0
	}

	h0, h1 := bf.computeHashes(hash)
	for i := uint16(1); i <= bf.numHashes; i++ {
		if !getAndSetBit(bf.bitArray, bf.getHashIndex(h0, h1, i)) {
			bf.numBitsSet++
		}
	}
	return estimator.Success, 1
}

func (bf *BloomFilter) Clear() {
	clear(bf.bitArray)
	bf.numBitsSet = 0
}

// computeHashes rehashes hash with XXH64 so the low bits used by getHashIndex depend on every input bit.
func (bf *BloomFilter) computeHashes(hash estimator.Hash) (h0, h1 uint64) {
	mixed := hash.Rehash(bf.seed)
	return uint64(mixed.Hash1), uint64(mixed.Hash2)
}

// getHashIndex computes the i-th hash index using double hashing.
// Formula: g_i(x) = ((h0 + i * h1) >> 1) mod capacity
func (bf *BloomFilter) getHashIndex(h0, h1 uint64, i uint16) uint64 {
	return ((h0 + uint64(i)*h1) >> 1) % bf.capacityBits
}

func (bf *BloomFilter) query(hash estimator.Hash) bool {
	if bf.numBitsSet == 0 {
		return false
	}
	h0, h1 := bf.computeHashes(hash)
	for i := uint16(1); i <= bf.numHashes; i++ {
		if !getBit(bf.bitArray, bf.getHashIndex(h0, h1, i)) {
			return false
		}
	}
	return true
}
