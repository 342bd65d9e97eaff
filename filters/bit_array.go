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

// getBit returns the value of the bit at the specified index.
func getBit(array []uint64, index uint64) bool {
	longIdx := index >> 6  // divide by 64
	bitIdx := index & 0x3F // mod 64
	return (array[longIdx] & (1 << bitIdx)) != 0
}

// getAndSetBit sets the bit at index and reports whether it was already set.
func getAndSetBit(array []uint64, index uint64) bool {
	longIdx := index >> 6
	bitIdx := index & 0x3F
	mask := uint64(1) << bitIdx
	wasSet := (array[longIdx] & mask) != 0
	array[longIdx] |= mask
	return wasSet
}

// countNonZero counts the words with at least one bit set.
func countNonZero(array []uint64) int64 {
	count := int64(0)
	for _, val := range array {
		if val != 0 {
			count++
		}
	}
	return count
}

// roundCapacity rounds the number of bits up to the nearest multiple of 64.
func roundCapacity(numBits uint64) uint64 {
	return (numBits + 63) & ^uint64(63)
}
