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

package aggregate

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/leosingleton/pennylogger/topn"
)

type (
	decimalKey string
	nanKey     struct{}
)

// canonicalKey returns a map key shared by every value equal to value. Decimals hold a pointer, and NaN is not
// equal to itself, so neither works as a map key directly. identity is false when the key is not value itself.
func canonicalKey[T comparable](value T) (key any, identity bool) {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return decimalKey(v.String()), false
	case float64:
		if math.IsNaN(v) {
			return nanKey{}, false
		}
	case float32:
		if math.IsNaN(float64(v)) {
			return nanKey{}, false
		}
	}
	return value, true
}

// valueCounts is a topn.Dictionary over canonical keys. For keys that are not the value itself it remembers the
// first value seen, which is what Entries reports.
type valueCounts[T comparable] struct {
	dict   *topn.Dictionary[any]
	values map[any]T
}

func newValueCounts[T comparable](maxValues int64) *valueCounts[T] {
	c := &valueCounts[T]{values: make(map[any]T)}
	c.dict = topn.New[any](maxValues, topn.WithEvictFunc(func(e topn.Entry[any]) {
		if !e.Null {
			delete(c.values, e.Value)
		}
	}))
	return c
}

func (c *valueCounts[T]) MinCount() int64 { return c.dict.MinCount() }
func (c *valueCounts[T]) Count() int64    { return c.dict.Count() }

func (c *valueCounts[T]) TryIncrement(value T) bool {
	key, identity := canonicalKey(value)
	if !c.dict.TryIncrement(key) {
		return false
	}
	c.remember(key, identity, value)
	return true
}

func (c *valueCounts[T]) TryIncrementNull() bool {
	return c.dict.TryIncrementNull()
}

func (c *valueCounts[T]) TryAdd(value T, count int64) bool {
	key, identity := canonicalKey(value)
	if !c.dict.TryAdd(key, count) {
		return false
	}
	c.remember(key, identity, value)
	return true
}

func (c *valueCounts[T]) TryAddNull(count int64) bool {
	return c.dict.TryAddNull(count)
}

func (c *valueCounts[T]) Clear() {
	c.dict.Clear()
	clear(c.values)
}

func (c *valueCounts[T]) Entries() []topn.Entry[T] {
	return c.convert(c.dict.Entries())
}

func (c *valueCounts[T]) Top(n int) []topn.Entry[T] {
	return c.convert(c.dict.Top(n))
}

func (c *valueCounts[T]) remember(key any, identity bool, value T) {
	if identity || c.dict.Get(key) == 0 {
		return
	}
	if _, ok := c.values[key]; !ok {
		c.values[key] = value
	}
}

func (c *valueCounts[T]) convert(keyed []topn.Entry[any]) []topn.Entry[T] {
	entries := make([]topn.Entry[T], len(keyed))
	for n, e := range keyed {
		entries[n] = topn.Entry[T]{Null: e.Null, Count: e.Count}
		if e.Null {
			continue
		}
		if value, ok := c.values[e.Value]; ok {
			entries[n].Value = value
		} else {
			entries[n].Value = e.Value.(T)
		}
	}
	return entries
}
