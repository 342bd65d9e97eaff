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
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/leosingleton/pennylogger/estimator"
)

func TestTypedHashers(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	price := decimal.RequireFromString("19.99")

	assert.Equal(t, estimator.HashString("Test"), StringHasher{}.Hash("Test"))
	assert.Equal(t, estimator.HashInteger(int16(-7)), IntegerHasher[int16]{}.Hash(-7))
	assert.Equal(t, estimator.HashFloat64(1.5), Float64Hasher{}.Hash(1.5))
	assert.Equal(t, estimator.HashFloat32(1.5), Float32Hasher{}.Hash(1.5))
	assert.Equal(t, estimator.HashUUID(id), UUIDHasher{}.Hash(id))
	assert.Equal(t, estimator.HashDecimal(price), DecimalHasher{}.Hash(price))
}

func TestHasherFunc(t *testing.T) {
	var hasher ItemHasher[string] = HasherFunc[string](func(item string) estimator.Hash {
		return estimator.HashInteger(len(item))
	})
	assert.Equal(t, estimator.HashInteger(4), hasher.Hash("Test"))
}

func testSeededHasher(t *testing.T, seeded func(seed uint64) ItemHasher[string]) {
	h := seeded(0)
	assert.Equal(t, h.Hash("Test"), h.Hash("Test"))
	assert.NotEqual(t, h.Hash("Test"), h.Hash("Tesu"))
	assert.NotEqual(t, h.Hash("Test"), seeded(1).Hash("Test"))

	hash := h.Hash("Hello, World!")
	assert.NotEqual(t, hash.Hash1, hash.Hash2)

	seen := make(map[estimator.Hash]struct{})
	for n := 0; n < 10000; n++ {
		seen[h.Hash(uuid.NewString())] = struct{}{}
	}
	assert.Len(t, seen, 10000)
}

func TestMurmur3Hasher(t *testing.T) {
	testSeededHasher(t, func(seed uint64) ItemHasher[string] {
		return Murmur3Hasher{Seed: seed}
	})
}

func TestXXHasher(t *testing.T) {
	testSeededHasher(t, func(seed uint64) ItemHasher[string] {
		return XXHasher{Seed: seed}
	})
}
