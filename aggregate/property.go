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

// Package aggregate counts the values of an enumerable property and reports the most frequent ones.
package aggregate

import (
	"fmt"

	"github.com/leosingleton/pennylogger/common"
	"github.com/leosingleton/pennylogger/topn"
)

// NullDisplay is the Summary key of the null value.
const NullDisplay = "(null)"

// EnumerableProperty counts the values one property takes across a stream of events.
type EnumerableProperty[T comparable] interface {
	Add(value T)
	AddNull()
	Clear()
	// SortedCounts returns every tracked value by descending count.
	SortedCounts() []topn.Entry[T]
	// Top returns the first Config().Top entries of SortedCounts.
	Top() []topn.Entry[T]
	Config() EnumerableConfig
}

// New returns a lossy property when cfg.Approximate is set and a lossless one otherwise.
func New[T comparable](cfg EnumerableConfig, hasher common.ItemHasher[T], opts ...Option) (EnumerableProperty[T], error) {
	if cfg.Approximate {
		p, err := NewLossy(cfg, hasher, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	p, err := NewLossless[T](cfg, opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Summary keys the top entries of p by their display string.
func Summary[T comparable](p EnumerableProperty[T]) map[string]int64 {
	top := p.Top()
	summary := make(map[string]int64, len(top))
	for _, entry := range top {
		if entry.Null {
			summary[NullDisplay] = entry.Count
		} else {
			summary[fmt.Sprint(entry.Value)] = entry.Count
		}
	}
	return summary
}
