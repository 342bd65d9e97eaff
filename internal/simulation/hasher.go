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

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/leosingleton/pennylogger/common"
	"github.com/leosingleton/pennylogger/estimator"
)

// Hashers a scenario can feed its values through.
const (
	HasherBuiltin = "builtin"
	HasherMurmur3 = "murmur3"
	HasherXXHash  = "xxhash"
)

const hasherSeed = 0x5eed

// newHasher returns the named hasher. An empty name selects HasherBuiltin.
func newHasher(name string) (common.ItemHasher[uuid.UUID], error) {
	switch name {
	case "", HasherBuiltin:
		return common.UUIDHasher{}, nil
	case HasherMurmur3:
		return byString(common.Murmur3Hasher{Seed: hasherSeed}), nil
	case HasherXXHash:
		return byString(common.XXHasher{Seed: hasherSeed}), nil
	default:
		return nil, fmt.Errorf("unknown hasher %q", name)
	}
}

// byString hashes a UUID by its canonical string form.
func byString(h common.ItemHasher[string]) common.ItemHasher[uuid.UUID] {
	return common.HasherFunc[uuid.UUID](func(id uuid.UUID) estimator.Hash {
		return h.Hash(id.String())
	})
}
