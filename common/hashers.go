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

package common

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/twmb/murmur3"
	"golang.org/x/exp/constraints"

	"github.com/leosingleton/pennylogger/estimator"
)

type StringHasher struct{}
type IntegerHasher[T constraints.Integer] struct{}
type Float64Hasher struct{}
type Float32Hasher struct{}
type UUIDHasher struct{}
type DecimalHasher struct{}

func (StringHasher) Hash(item string) estimator.Hash           { return estimator.HashString(item) }
func (IntegerHasher[T]) Hash(item T) estimator.Hash            { return estimator.HashInteger(item) }
func (Float64Hasher) Hash(item float64) estimator.Hash         { return estimator.HashFloat64(item) }
func (Float32Hasher) Hash(item float32) estimator.Hash         { return estimator.HashFloat32(item) }
func (UUIDHasher) Hash(item uuid.UUID) estimator.Hash          { return estimator.HashUUID(item) }
func (DecimalHasher) Hash(item decimal.Decimal) estimator.Hash { return estimator.HashDecimal(item) }

// Murmur3Hasher hashes strings with 128-bit MurmurHash3. Both halves come from one pass over the data.
type Murmur3Hasher struct {
	Seed uint64
}

func (h Murmur3Hasher) Hash(item string) estimator.Hash {
	datum := unsafe.Slice(unsafe.StringData(item), len(item))
	h1, h2 := murmur3.SeedSum128(h.Seed, h.Seed, datum)
	return estimator.Hash{Hash1: int64(h1), Hash2: int64(h2)}
}

// XXHasher hashes strings with XXH64. The second half is seeded with the first.
type XXHasher struct {
	Seed uint64
}

func (h XXHasher) Hash(item string) estimator.Hash {
	d := xxhash.NewWithSeed(h.Seed)
	_, _ = d.WriteString(item)
	h1 := d.Sum64()

	d.ResetWithSeed(h1)
	_, _ = d.WriteString(item)
	return estimator.Hash{Hash1: int64(h1), Hash2: int64(d.Sum64())}
}
