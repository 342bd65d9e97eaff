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
	"encoding/binary"
	"math"
	"math/big"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

const (
	// Two large primes for Knuth's multiplicative method.
	hashPrime1 = uint64(12_972_119_692_533_089_989)
	hashPrime2 = uint64(11_687_066_356_047_830_333)

	// Added before multiplying so that HashUint64(0) != 0.
	hashOffset1 = uint64(0x40af_387b_041b_b86a)
	hashOffset2 = uint64(0x6ea1_8141_765d_96f6)

	canonicalNaNBits = uint64(0x7ff8_0000_0000_0000)
)

// Hash is a 128-bit fingerprint of a value. Hash1 selects buckets and Hash2 is truncated into fingerprints.
// Hashes are deterministic within a process but carry no stability guarantee across versions.
type Hash struct {
	Hash1 int64
	Hash2 int64
}

// NullHash is the hash used for a null or missing value.
var NullHash = Hash{Hash1: 0x1d8e_4e27_c47d_124f, Hash2: 0x2d3e_8d4b_7a1c_5e39}

// HashUint64 is the primitive every other constructor reduces to.
func HashUint64(value uint64) Hash {
	return Hash{
		Hash1: int64((value + hashOffset1) * hashPrime1),
		Hash2: int64((value + hashOffset2) * hashPrime2),
	}
}

// HashInteger hashes any integer type by its two's-complement 64-bit value.
func HashInteger[T constraints.Integer](value T) Hash {
	return HashUint64(uint64(value))
}

// HashInt64 hashes value like HashInteger.
func HashInt64(value int64) Hash {
	return HashUint64(uint64(value))
}

// HashBytes folds the input through HashUint64 eight bytes at a time. The length is folded in first so that
// runs of the same byte with different lengths do not collide.
func HashBytes(data []byte) Hash {
	var result Hash

	value := uint64(len(data))
	for n, b := range data {
		if n%8 == 0 {
			h := HashUint64(value)
			result.Hash1 ^= h.Hash1
			result.Hash2 ^= h.Hash2
		}
		value = value<<8 | uint64(b)
	}

	h := HashUint64(value)
	result.Hash1 ^= h.Hash1
	result.Hash2 ^= h.Hash2
	return result
}

// HashString hashes the UTF-8 bytes of s.
func HashString(s string) Hash {
	return HashBytes([]byte(s))
}

// HashFloat64 hashes the IEEE 754 bits of value. Negative zero hashes like zero and every NaN hashes alike.
func HashFloat64(value float64) Hash {
	return HashUint64(canonicalFloat64Bits(value))
}

// HashFloat32 hashes value widened to float64, so it matches HashFloat64 of the same number.
func HashFloat32(value float32) Hash {
	return HashFloat64(float64(value))
}

func canonicalFloat64Bits(value float64) uint64 {
	if value == 0 {
		return 0
	}
	if math.IsNaN(value) {
		return canonicalNaNBits
	}
	return math.Float64bits(value)
}

// HashUUID hashes the 16 raw bytes of id.
func HashUUID(id uuid.UUID) Hash {
	return HashBytes(id[:])
}

// HashDecimal hashes the coefficient, exponent and sign of d after stripping trailing zeros from the
// coefficient, so equal values such as 1.5 and 1.50 hash alike.
func HashDecimal(d decimal.Decimal) Hash {
	coefficient := d.Coefficient()
	exponent := d.Exponent()
	if coefficient.Sign() == 0 {
		exponent = 0
	} else {
		ten := big.NewInt(10)
		quotient, remainder := new(big.Int), new(big.Int)
		for {
			quotient.QuoRem(coefficient, ten, remainder)
			if remainder.Sign() != 0 {
				break
			}
			coefficient.Set(quotient)
			exponent++
		}
	}

	magnitude := coefficient.Bytes()
	data := make([]byte, len(magnitude)+5)
	copy(data, magnitude)
	binary.LittleEndian.PutUint32(data[len(magnitude):], uint32(exponent))
	if coefficient.Sign() < 0 {
		data[len(data)-1] = 1
	}
	return HashBytes(data)
}

// Rehash mixes h through XXH64 so that every output bit depends on every input bit. The multiplicative hash
// keeps Hash1 and Hash2 at the same parity and leaves its low bits weak, so reduce a rehashed value when the
// modulus is small or even. Hash2 is computed with Hash1 as the seed.
func (h Hash) Rehash(seed uint64) Hash {
	var data [16]byte
	binary.LittleEndian.PutUint64(data[:8], uint64(h.Hash1))
	binary.LittleEndian.PutUint64(data[8:], uint64(h.Hash2))

	d := xxhash.NewWithSeed(seed)
	_, _ = d.Write(data[:])
	h1 := d.Sum64()

	d.ResetWithSeed(h1)
	_, _ = d.Write(data[:])
	return Hash{Hash1: int64(h1), Hash2: int64(d.Sum64())}
}

// DoubleHashes derives count values from h using enhanced double hashing (Dillinger and Manolios).
func (h Hash) DoubleHashes(count int) []int64 {
	hashes := make([]int64, count)
	a := h.Hash1
	b := h.Hash2
	for i := 0; i < count; i++ {
		hashes[i] = a
		a += b
		b += int64(i)
	}
	return hashes
}

// BoundedDoubleHashes is DoubleHashes with every value reduced modulo max.
func (h Hash) BoundedDoubleHashes(count int, max uint64) []uint64 {
	hashes := make([]uint64, count)
	a := uint64(h.Hash1)
	b := uint64(h.Hash2)
	for i := uint64(0); i < uint64(count); i++ {
		hashes[i] = a % max
		a += b
		b += i
	}
	return hashes
}
