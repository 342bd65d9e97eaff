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
	"github.com/sirupsen/logrus"

	"github.com/leosingleton/pennylogger/common"
	"github.com/leosingleton/pennylogger/estimator"
	"github.com/leosingleton/pennylogger/filters"
	"github.com/leosingleton/pennylogger/topn"
)

// Lossy counts values exactly in a shortlist of 2*Top entries. Once the shortlist is full, everything else is
// counted by a frequency estimator and promoted into the shortlist when its estimate beats the lowest entry.
type Lossy[T comparable] struct {
	cfg          EnumerableConfig
	hasher       common.ItemHasher[T]
	counts       *valueCounts[T]
	estimator    estimator.FrequencyEstimator
	useEstimator bool
	logger       logrus.FieldLogger
}

// NewLossy creates a property that stays within cfg.MaxMemory bytes, using hasher to feed the estimator.
func NewLossy[T comparable](cfg EnumerableConfig, hasher common.ItemHasher[T], opts ...Option) (*Lossy[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	est := o.estimator
	if est == nil {
		est = filters.NewCascadingCuckooFilter4Way()
	}
	est.SetMaxBytes(cfg.MaxMemory)

	return &Lossy[T]{
		cfg:       cfg,
		hasher:    hasher,
		counts:    newValueCounts[T](2 * int64(cfg.Top)),
		estimator: est,
		logger:    o.logger,
	}, nil
}

func (p *Lossy[T]) Config() EnumerableConfig {
	return p.cfg
}

// UsingEstimator reports whether the shortlist has overflowed since the last Clear.
func (p *Lossy[T]) UsingEstimator() bool {
	return p.useEstimator
}

func (p *Lossy[T]) Add(value T) {
	if p.counts.TryIncrement(value) {
		return
	}
	if estimate, ok := p.estimate(p.hasher.Hash(value)); ok {
		p.counts.TryAdd(value, estimate)
		p.logger.WithFields(logrus.Fields{"value": value, "count": estimate}).Debug("promoted value into shortlist")
	}
}

func (p *Lossy[T]) AddNull() {
	if p.cfg.IgnoreNull || p.counts.TryIncrementNull() {
		return
	}
	if estimate, ok := p.estimate(estimator.NullHash); ok {
		p.counts.TryAddNull(estimate)
		p.logger.WithField("count", estimate).Debug("promoted null into shortlist")
	}
}

// estimate counts hash in the estimator and reports whether it now belongs in the shortlist.
func (p *Lossy[T]) estimate(hash estimator.Hash) (int64, bool) {
	if !p.useEstimator {
		p.switchToEstimator()
	}

	result, estimate := p.estimator.TryIncrementAndEstimate(hash)
	if result == estimator.NoCapacity {
		p.logger.WithFields(logrus.Fields{
			"max_bytes":   p.estimator.MaxBytes(),
			"total_bytes": p.estimator.TotalBytes(),
		}).Debug("estimator has no capacity")
		return 0, false
	}
	return estimate, estimate > p.counts.MinCount()
}

// switchToEstimator replays the shortlist into the estimator, which has no way to set a count directly.
func (p *Lossy[T]) switchToEstimator() {
	p.useEstimator = true
	p.logger.WithField("shortlist", p.counts.Count()).Debug("shortlist full, switching to estimator")

	for _, entry := range p.counts.Entries() {
		hash := estimator.NullHash
		if !entry.Null {
			hash = p.hasher.Hash(entry.Value)
		}
		for n := int64(0); n < entry.Count; n++ {
			p.estimator.TryIncrementAndEstimate(hash)
		}
	}
}

func (p *Lossy[T]) Clear() {
	p.counts.Clear()
	p.estimator.Clear()
	p.useEstimator = false
}

func (p *Lossy[T]) SortedCounts() []topn.Entry[T] {
	return p.counts.Entries()
}

func (p *Lossy[T]) Top() []topn.Entry[T] {
	return p.counts.Top(p.cfg.Top)
}
