// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package chainmap

import "go.uber.org/zap"

// option provide an interface to do work on a table while it is being
// created. The same options configure both Map and Set; a Set[K] accepts
// options instantiated with V = struct{}.
type option[K comparable, V any] interface {
	apply(t *table[K, V])
}

type hashOption[K comparable, V any] struct {
	hash func(key K) uint32
}

func (op hashOption[K, V]) apply(t *table[K, V]) {
	t.hasher = HashFunc[K](op.hash)
}

// WithHash is an option to specify the hash function to use for a Map[K,V]
// or Set[K]. Keys are compared with ==.
func WithHash[K comparable, V any](hash func(key K) uint32) option[K, V] {
	return hashOption[K, V]{hash}
}

type hasherOption[K comparable, V any] struct {
	hasher Hasher[K]
}

func (op hasherOption[K, V]) apply(t *table[K, V]) {
	t.hasher = op.hasher
}

// WithHasher is an option to specify both the hash function and the key
// equality relation.
func WithHasher[K comparable, V any](hasher Hasher[K]) option[K, V] {
	return hasherOption[K, V]{hasher}
}

type loadFactorOption[K comparable, V any] struct {
	loadFactor float32
}

func (op loadFactorOption[K, V]) apply(t *table[K, V]) {
	t.maxLoad = op.loadFactor
}

// WithLoadFactor is an option to specify the load factor threshold. The
// table grows before an insert that would leave it holding more than
// capacity*loadFactor entries. A non-positive or NaN load factor selects
// DefaultLoadFactor.
func WithLoadFactor[K comparable, V any](loadFactor float32) option[K, V] {
	return loadFactorOption[K, V]{loadFactor}
}

// Allocator specifies an interface for allocating and releasing the bucket
// arrays used by a table. The default allocator utilizes Go's builtin make()
// and allows the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that bucket
// arrays be freed then Close must be called in order to ensure FreeBuckets is
// called for the final array.
type Allocator[K comparable, V any] interface {
	// AllocBuckets should return a slice equivalent to
	// make([][]Entry[K,V], n). Every element must be a nil chain.
	AllocBuckets(n int) [][]Entry[K, V]

	// FreeBuckets can optionally release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocBuckets.
	FreeBuckets(v [][]Entry[K, V])
}

type defaultAllocator[K comparable, V any] struct{}

func (defaultAllocator[K, V]) AllocBuckets(n int) [][]Entry[K, V] {
	return make([][]Entry[K, V], n)
}

func (defaultAllocator[K, V]) FreeBuckets(v [][]Entry[K, V]) {
}

type allocatorOption[K comparable, V any] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(t *table[K, V]) {
	t.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for a Map[K,V]
// or Set[K].
func WithAllocator[K comparable, V any](allocator Allocator[K, V]) option[K, V] {
	return allocatorOption[K, V]{allocator}
}

type loggerOption[K comparable, V any] struct {
	logger *zap.Logger
}

func (op loggerOption[K, V]) apply(t *table[K, V]) {
	if op.logger != nil {
		t.logger = op.logger
	}
}

// WithLogger is an option to specify the logger that receives resize and
// overflow events. The default logger discards everything.
func WithLogger[K comparable, V any](logger *zap.Logger) option[K, V] {
	return loggerOption[K, V]{logger}
}

type maxCapacityOption[K comparable, V any] struct {
	maxCapacity int
}

func (op maxCapacityOption[K, V]) apply(t *table[K, V]) {
	t.maxCapacity = op.maxCapacity
}

// withMaxCapacity lowers the capacity ceiling. It must be a power of two no
// larger than MaximumCapacity. Used by tests to reach the ceiling quickly.
func withMaxCapacity[K comparable, V any](maxCapacity int) option[K, V] {
	return maxCapacityOption[K, V]{maxCapacity}
}
