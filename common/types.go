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

// Package common holds the ItemHasher capability and its implementations for the value types the aggregates
// count.
package common

import "github.com/leosingleton/pennylogger/estimator"

// ItemHasher maps a value to the hash the estimators key on. Equal values must produce equal hashes.
type ItemHasher[T any] interface {
	Hash(item T) estimator.Hash
}

// HasherFunc adapts an ordinary function to ItemHasher.
type HasherFunc[T any] func(item T) estimator.Hash

func (f HasherFunc[T]) Hash(item T) estimator.Hash {
	return f(item)
}
