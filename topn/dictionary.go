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

// Package topn tracks the N highest counts of a set of values exactly.
package topn

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrBelowMinCount is returned by Add when the count does not exceed MinCount.
	ErrBelowMinCount = errors.New("count is not above the minimum count")
	// ErrNotTracked is returned by Increment when the value is absent and the dictionary is full.
	ErrNotTracked = errors.New("value is not tracked and the dictionary is full")
)

// Entry is one value and its count. Null is set for the null entry, in which case Value is the zero value.
type Entry[T comparable] struct {
	Value T
	Null  bool
	Count int64
}

func (e Entry[T]) String() string {
	if e.Null {
		return fmt.Sprintf("(null): %d", e.Count)
	}
	return fmt.Sprintf("%v: %d", e.Value, e.Count)
}

// Dictionary holds at most maxValues entries. The null value has its own slot outside the map and counts against
// the same limit.
type Dictionary[T comparable] struct {
	maxValues int64
	minCount  int64
	nullCount int64
	counts    map[T]int64
	onEvict   func(Entry[T])
}

// Option configures a Dictionary.
type Option[T comparable] func(*Dictionary[T])

// WithEvictFunc registers f to receive every entry dropped to make room. Clear does not call it.
func WithEvictFunc[T comparable](f func(Entry[T])) Option[T] {
	return func(d *Dictionary[T]) {
		d.onEvict = f
	}
}

// New creates a dictionary holding at most maxValues entries.
func New[T comparable](maxValues int64, opts ...Option[T]) *Dictionary[T] {
	d := &Dictionary[T]{
		maxValues: maxValues,
		counts:    make(map[T]int64),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dictionary[T]) MaxValues() int64 {
	return d.maxValues
}

// MinCount is the count a new value must exceed to be added. It is 0 until the dictionary is full.
func (d *Dictionary[T]) MinCount() int64 {
	return d.minCount
}

// Count is the number of values held, including null.
func (d *Dictionary[T]) Count() int64 {
	n := int64(len(d.counts))
	if d.nullCount > 0 {
		n++
	}
	return n
}

// Get returns the count of value, or 0 if it is not held.
func (d *Dictionary[T]) Get(value T) int64 {
	return d.counts[value]
}

func (d *Dictionary[T]) GetNull() int64 {
	return d.nullCount
}

// TryAdd stores value with count, evicting the lowest entry if the dictionary overflows. It returns false if
// count <= MinCount.
func (d *Dictionary[T]) TryAdd(value T, count int64) bool {
	if count <= d.minCount {
		return false
	}
	d.counts[value] = count
	d.afterAdd()
	return true
}

func (d *Dictionary[T]) TryAddNull(count int64) bool {
	if count <= d.minCount {
		return false
	}
	d.nullCount = count
	d.afterAdd()
	return true
}

func (d *Dictionary[T]) Add(value T, count int64) error {
	if !d.TryAdd(value, count) {
		return fmt.Errorf("cannot add %v with count %d, minimum is %d: %w", value, count, d.minCount, ErrBelowMinCount)
	}
	return nil
}

func (d *Dictionary[T]) AddNull(count int64) error {
	if !d.TryAddNull(count) {
		return fmt.Errorf("cannot add null with count %d, minimum is %d: %w", count, d.minCount, ErrBelowMinCount)
	}
	return nil
}

// TryIncrement increments value, inserting it with a count of 1 if it is absent and there is room. It returns
// false if value is absent and the dictionary is full.
func (d *Dictionary[T]) TryIncrement(value T) bool {
	if count, ok := d.counts[value]; ok {
		d.counts[value] = count + 1
		if count == d.minCount {
			d.recomputeMinCount()
		}
		return true
	}

	if d.Count() >= d.maxValues {
		return false
	}
	d.counts[value] = 1
	d.recomputeMinCount()
	return true
}

func (d *Dictionary[T]) TryIncrementNull() bool {
	switch {
	case d.nullCount > d.minCount:
		d.nullCount++
	case d.nullCount == d.minCount:
		d.nullCount++
		d.recomputeMinCount()
	default:
		// A positive MinCount means the dictionary is full.
		return false
	}
	return true
}

func (d *Dictionary[T]) Increment(value T) error {
	if !d.TryIncrement(value) {
		return fmt.Errorf("cannot increment %v: %w", value, ErrNotTracked)
	}
	return nil
}

func (d *Dictionary[T]) IncrementNull() error {
	if !d.TryIncrementNull() {
		return fmt.Errorf("cannot increment null: %w", ErrNotTracked)
	}
	return nil
}

func (d *Dictionary[T]) Clear() {
	clear(d.counts)
	d.minCount = 0
	d.nullCount = 0
}

// Entries returns every held value by descending count. The order of equal counts is unspecified.
func (d *Dictionary[T]) Entries() []Entry[T] {
	entries := make([]Entry[T], 0, d.Count())
	for value, count := range d.counts {
		entries = append(entries, Entry[T]{Value: value, Count: count})
	}
	if d.nullCount > 0 {
		entries = append(entries, Entry[T]{Null: true, Count: d.nullCount})
	}

	slices.SortFunc(entries, func(a, b Entry[T]) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return entries
}

// Top returns at most n entries with the highest counts.
func (d *Dictionary[T]) Top(n int) []Entry[T] {
	entries := d.Entries()
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func (d *Dictionary[T]) afterAdd() {
	if d.Count() > d.maxValues {
		d.evictLowest()
	}
	d.recomputeMinCount()
}

func (d *Dictionary[T]) evictLowest() {
	var lowest T
	lowestCount := int64(-1)
	for value, count := range d.counts {
		if lowestCount < 0 || count < lowestCount {
			lowest, lowestCount = value, count
		}
	}

	if d.nullCount > 0 && (lowestCount < 0 || d.nullCount <= lowestCount) {
		evicted := Entry[T]{Null: true, Count: d.nullCount}
		d.nullCount = 0
		d.evicted(evicted)
		return
	}
	delete(d.counts, lowest)
	d.evicted(Entry[T]{Value: lowest, Count: lowestCount})
}

func (d *Dictionary[T]) evicted(entry Entry[T]) {
	if d.onEvict != nil {
		d.onEvict(entry)
	}
}

func (d *Dictionary[T]) recomputeMinCount() {
	if d.Count() < d.maxValues {
		d.minCount = 0
		return
	}

	// Only null is held when maxValues is 1.
	if len(d.counts) == 0 {
		d.minCount = d.nullCount
		return
	}

	minCount := int64(-1)
	for _, count := range d.counts {
		if minCount < 0 || count < minCount {
			minCount = count
		}
	}
	if d.nullCount > 0 && d.nullCount < minCount {
		minCount = d.nullCount
	}
	d.minCount = minCount
}
