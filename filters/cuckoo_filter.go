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
	"github.com/leosingleton/pennylogger/estimator"
	"github.com/leosingleton/pennylogger/internal"
)

// CuckooFilter is a counting cuckoo filter over buckets of type B. Each value is stored as a fingerprint in one
// of 2 or 4 candidate buckets; the alternates are derived from the fingerprint alone, so entries can be moved
// without the original hash.
//
// See https://en.wikipedia.org/wiki/Cuckoo_filter
type CuckooFilter[B CuckooBucket[B]] struct {
	buckets  []B
	ways     int
	maxBytes int64
}

// MaxBytes is fixed at construction. SetMaxBytes is accepted but has no effect on the size.
func (f *CuckooFilter[B]) MaxBytes() int64 {
	return f.maxBytes
}

func (f *CuckooFilter[B]) SetMaxBytes(maxBytes int64) {
	f.maxBytes = maxBytes
}

func (f *CuckooFilter[B]) MaxCount() int64 {
	var zero B
	return int64(zero.MaxCount())
}

func (f *CuckooFilter[B]) TotalBytes() int64 {
	var zero B
	return int64(len(f.buckets)) * zero.SizeOf()
}

func (f *CuckooFilter[B]) BytesUsed() int64 {
	var zero B
	used := int64(0)
	for _, b := range f.buckets {
		if b != 0 {
			used++
		}
	}
	return used * zero.SizeOf()
}

// NumBuckets returns the number of buckets, always a power of 2.
func (f *CuckooFilter[B]) NumBuckets() int {
	return len(f.buckets)
}

// Ways returns the number of candidate buckets per value.
func (f *CuckooFilter[B]) Ways() int {
	return f.ways
}

func (f *CuckooFilter[B]) Estimate(hash estimator.Hash) int64 {
	fingerprint := f.fingerprint(hash)
	indices, n := f.candidates(hash, fingerprint)
	for _, index := range indices[:n] {
		if b := f.buckets[index]; b.Fingerprint() == fingerprint {
			return int64(b.Count())
		}
	}
	return 0
}

func (f *CuckooFilter[B]) TryIncrementAndEstimate(hash estimator.Hash) (estimator.IncrementResult, int64) {
	fingerprint := f.fingerprint(hash)
	indices, n := f.candidates(hash, fingerprint)

	for _, index := range indices[:n] {
		b := f.buckets[index]
		if b.Fingerprint() != fingerprint {
			continue
		}
		count := b.Count()
		if count == b.MaxCount() {
			return estimator.Overflow, int64(count) + 1
		}
		f.buckets[index] = b.WithCount(count + 1)
		return estimator.Success, int64(count) + 1
	}

	var zero B
	entry := zero.WithFingerprint(fingerprint).WithCount(1)

	for _, index := range indices[:n] {
		if f.buckets[index] == 0 {
			f.buckets[index] = entry
			return estimator.Success, 1
		}
	}

	maxRecursions := f.maxRecursions()
	for _, index := range indices[:n] {
		if f.recursiveSwap(index, maxRecursions) {
			f.buckets[index] = entry
			return estimator.Success, 1
		}
	}

	return estimator.NoCapacity, 0
}

func (f *CuckooFilter[B]) Clear() {
	clear(f.buckets)
}

// fingerprint truncates Hash2 into [1, MaxFingerprint]. Reducing modulo rather than masking avoids favoring
// power-of-2 aligned values, and the +1 keeps 0 free to mark empty buckets.
func (f *CuckooFilter[B]) fingerprint(hash estimator.Hash) uint64 {
	var zero B
	return uint64(hash.Hash2)%zero.MaxFingerprint() + 1
}

func (f *CuckooFilter[B]) candidates(hash estimator.Hash, fingerprint uint64) ([4]uint64, int) {
	var indices [4]uint64
	indices[0] = uint64(hash.Hash1) % uint64(len(f.buckets))
	alternates, n := f.alternates(indices[0], fingerprint)
	copy(indices[1:], alternates[:n])
	return indices, n + 1
}

// alternates XORs index with hashes of the fingerprint. The bucket count is a power of 2, so applying the same
// XOR again returns to index.
func (f *CuckooFilter[B]) alternates(index uint64, fingerprint uint64) ([3]uint64, int) {
	var indices [3]uint64
	numBuckets := uint64(len(f.buckets))
	h := estimator.HashUint64(fingerprint)
	h1 := uint64(h.Hash1)
	h2 := uint64(h.Hash2)

	indices[0] = (index ^ h1) % numBuckets
	if f.ways == 2 {
		return indices, 1
	}
	indices[1] = (index ^ h2) % numBuckets
	indices[2] = (index ^ h1 ^ h2) % numBuckets
	return indices, 3
}

// maxRecursions is roughly log2 of the bucket count.
func (f *CuckooFilter[B]) maxRecursions() int {
	depth := internal.FindFirstSet(uint64(len(f.buckets)))
	if f.ways == 4 {
		depth--
	}
	return depth
}

// recursiveSwap tries to empty the bucket at index by moving its entry to an alternate, first looking for an
// empty alternate and only then recursing into the alternates.
func (f *CuckooFilter[B]) recursiveSwap(index uint64, recursionsRemaining int) bool {
	if recursionsRemaining < 0 {
		return false
	}

	alternates, n := f.alternates(index, f.buckets[index].Fingerprint())

	for _, alternate := range alternates[:n] {
		if f.buckets[alternate] == 0 {
			f.swap(index, alternate)
			return true
		}
	}

	for _, alternate := range alternates[:n] {
		if f.recursiveSwap(alternate, recursionsRemaining-1) {
			f.swap(index, alternate)
			return true
		}
	}

	return false
}

func (f *CuckooFilter[B]) swap(i, j uint64) {
	f.buckets[i], f.buckets[j] = f.buckets[j], f.buckets[i]
}
