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

	"github.com/sirupsen/logrus"

	"github.com/leosingleton/pennylogger/topn"
)

// Lossless counts every value exactly. Memory grows with the number of distinct values.
type Lossless[T comparable] struct {
	cfg    EnumerableConfig
	counts *valueCounts[T]
	logger logrus.FieldLogger
}

// NewLossless creates a property that counts every distinct value.
func NewLossless[T comparable](cfg EnumerableConfig, opts ...Option) (*Lossless[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	return &Lossless[T]{
		cfg:    cfg,
		counts: newValueCounts[T](math.MaxInt64),
		logger: o.logger,
	}, nil
}

func (p *Lossless[T]) Config() EnumerableConfig {
	return p.cfg
}

func (p *Lossless[T]) Add(value T) {
	p.counts.TryIncrement(value)
}

func (p *Lossless[T]) AddNull() {
	if !p.cfg.IgnoreNull {
		p.counts.TryIncrementNull()
	}
}

func (p *Lossless[T]) Clear() {
	p.logger.WithField("values", p.counts.Count()).Debug("clearing lossless property")
	p.counts.Clear()
}

func (p *Lossless[T]) SortedCounts() []topn.Entry[T] {
	return p.counts.Entries()
}

func (p *Lossless[T]) Top() []topn.Entry[T] {
	return p.counts.Top(p.cfg.Top)
}
