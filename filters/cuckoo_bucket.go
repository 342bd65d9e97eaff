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

import "github.com/leosingleton/pennylogger/internal"

// CuckooBucket is one slot of a cuckoo filter, packed into a single unsigned integer. The zero value is an
// empty slot, so a stored fingerprint is never 0.
type CuckooBucket[B any] interface {
	~uint8 | ~uint16 | ~uint64

	Fingerprint() uint64
	Count() uint64
	WithFingerprint(fingerprint uint64) B
	WithCount(count uint64) B

	MaxFingerprint() uint64
	MaxCount() uint64
	SizeOf() int64
}

// Bucket8 stores an 8-bit fingerprint and no counter. Every stored fingerprint counts once.
type Bucket8 uint8

const bucket8FingerprintMask = Bucket8(0xff)

func (b Bucket8) Fingerprint() uint64 {
	return internal.GetBits(b, 0, bucket8FingerprintMask)
}

func (b Bucket8) Count() uint64 {
	if b == 0 {
		return 0
	}
	return 1
}

func (b Bucket8) WithFingerprint(fingerprint uint64) Bucket8 {
	return internal.SetBits(b, 0, bucket8FingerprintMask, fingerprint)
}

// WithCount is a no-op, the count is implied by the fingerprint.
func (b Bucket8) WithCount(uint64) Bucket8 {
	return b
}

func (Bucket8) MaxFingerprint() uint64 { return uint64(bucket8FingerprintMask) }
func (Bucket8) MaxCount() uint64       { return 1 }
func (Bucket8) SizeOf() int64          { return 1 }

// Bucket16Counting stores a 12-bit fingerprint and a 4-bit counter.
type Bucket16Counting uint16

const (
	bucket16FingerprintShift = 0
	bucket16FingerprintMask  = Bucket16Counting(0x0fff)
	bucket16CountShift       = 12
	bucket16CountMask        = Bucket16Counting(0xf000)
)

func (b Bucket16Counting) Fingerprint() uint64 {
	return internal.GetBits(b, bucket16FingerprintShift, bucket16FingerprintMask)
}

func (b Bucket16Counting) Count() uint64 {
	return internal.GetBits(b, bucket16CountShift, bucket16CountMask)
}

func (b Bucket16Counting) WithFingerprint(fingerprint uint64) Bucket16Counting {
	return internal.SetBits(b, bucket16FingerprintShift, bucket16FingerprintMask, fingerprint)
}

func (b Bucket16Counting) WithCount(count uint64) Bucket16Counting {
	return internal.SetBits(b, bucket16CountShift, bucket16CountMask, count)
}

func (Bucket16Counting) MaxFingerprint() uint64 {
	return uint64(bucket16FingerprintMask >> bucket16FingerprintShift)
}

func (Bucket16Counting) MaxCount() uint64 {
	return uint64(bucket16CountMask >> bucket16CountShift)
}

func (Bucket16Counting) SizeOf() int64 { return 2 }

// Bucket64Counting stores a 48-bit fingerprint and a 16-bit counter.
type Bucket64Counting uint64

const (
	bucket64FingerprintShift = 0
	bucket64FingerprintMask  = Bucket64Counting(0x0000_ffff_ffff_ffff)
	bucket64CountShift       = 48
	bucket64CountMask        = Bucket64Counting(0xffff_0000_0000_0000)
)

func (b Bucket64Counting) Fingerprint() uint64 {
	return internal.GetBits(b, bucket64FingerprintShift, bucket64FingerprintMask)
}

func (b Bucket64Counting) Count() uint64 {
	return internal.GetBits(b, bucket64CountShift, bucket64CountMask)
}

func (b Bucket64Counting) WithFingerprint(fingerprint uint64) Bucket64Counting {
	return internal.SetBits(b, bucket64FingerprintShift, bucket64FingerprintMask, fingerprint)
}

func (b Bucket64Counting) WithCount(count uint64) Bucket64Counting {
	return internal.SetBits(b, bucket64CountShift, bucket64CountMask, count)
}

func (Bucket64Counting) MaxFingerprint() uint64 {
	return uint64(bucket64FingerprintMask >> bucket64FingerprintShift)
}

func (Bucket64Counting) MaxCount() uint64 {
	return uint64(bucket64CountMask >> bucket64CountShift)
}

func (Bucket64Counting) SizeOf() int64 { return 8 }
