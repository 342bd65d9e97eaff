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

package internal

import "golang.org/x/exp/constraints"

// FindFirstSet returns the index of the most significant set bit, i.e. floor(log2(value)).
// FindFirstSet(0) and FindFirstSet(1) both return 0.
func FindFirstSet(value uint64) int {
	result := 0

	if value&0xffff_ffff_0000_0000 != 0 {
		result += 32
	} else {
		value <<= 32
	}
	if value&0xffff_0000_0000_0000 != 0 {
		result += 16
	} else {
		value <<= 16
	}
	if value&0xff00_0000_0000_0000 != 0 {
		result += 8
	} else {
		value <<= 8
	}
	if value&0xf000_0000_0000_0000 != 0 {
		result += 4
	} else {
		value <<= 4
	}
	if value&0xc000_0000_0000_0000 != 0 {
		result += 2
	} else {
		value <<= 2
	}
	if value&0x8000_0000_0000_0000 != 0 {
		result++
	}

	return result
}

// RoundUpToPowerOf2 returns the smallest power of 2 greater than or equal to value.
// RoundUpToPowerOf2(0) returns 0.
func RoundUpToPowerOf2(value uint64) uint64 {
	value--
	value |= value >> 1
	value |= value >> 2
	value |= value >> 4
	value |= value >> 8
	value |= value >> 16
	value |= value >> 32
	value++
	return value
}

// GetBits extracts the field selected by bitmask and shifts it down to bit 0.
func GetBits[T constraints.Unsigned](value T, shift int, bitmask T) uint64 {
	return uint64((value & bitmask) >> shift)
}

// SetBits replaces the field selected by bitmask with newBits. newBits must fit in the field.
func SetBits[T constraints.Unsigned](value T, shift int, bitmask T, newBits uint64) T {
	if newBits > uint64(bitmask>>shift) {
		panic("newBits does not fit in bitmask")
	}
	return (value &^ bitmask) | (T(newBits) << shift)
}
