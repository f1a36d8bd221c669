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

// Package chainmap implements a map and a set on top of a hash table that
// resolves collisions with separate chaining. See
// https://en.wikipedia.org/wiki/Hash_table#Separate_chaining.
//
// # Layout
//
// The table is an array of buckets whose length (the capacity) is always a
// power of two. Each bucket is a chain: a slice of the entries whose keys map
// to that bucket, kept in insertion order. Chains are materialized lazily, so
// an empty bucket costs a nil slice header.
//
// A key is mapped to a bucket by taking the raw 32-bit hash code supplied by
// the key's Hasher, scrambling it with a supplemental hash, and masking it
// with capacity-1:
//
//	h ^= (h >> 20) ^ (h >> 12)
//	h ^= (h >> 7) ^ (h >> 4)
//	bucket = h & (capacity - 1)
//
// Masking uses only the low bits of the hash code. The supplemental hash
// folds the high bits into the low ones so that hash codes which differ only
// in their upper bits still land in different buckets.
//
// # Growth
//
// The table doubles its capacity before an insert that would leave it holding
// more than capacity*loadFactor entries (0.75 by default). Growing allocates
// a new bucket array and rehashes every entry individually. Capacity never
// shrinks; Clear empties the chains but keeps the bucket array. Capacity is
// capped at MaximumCapacity (2^30 buckets). An insert that would need to grow
// past the cap fails with ErrCapacityExceeded and leaves the table as it was.
//
// # Map and Set
//
// Map[K,V] and Set[K] share the same table implementation. A Set[K] stores
// entries with a zero-size value, making every key its own element. The
// options accepted by New are also accepted by NewSet, instantiated with
// struct{} as the value type:
//
//	s := chainmap.NewSet[string](0, chainmap.WithLoadFactor[string, struct{}](0.5))
//
// Neither Map nor Set is goroutine-safe.
package chainmap

import (
	"fmt"
	"strings"
)

// Map is an unordered map from keys to values with Put, Get, Delete, and All
// operations. By default, string keys are hashed with xxhash and other keys
// with the same hash function as Go's builtin map[K]V, though a different
// hash function and key equality can be specified using the WithHash and
// WithHasher options.
//
// A Map is NOT goroutine-safe.
type Map[K comparable, V any] struct {
	t table[K, V]
}

// New constructs a new Map with the specified initial capacity, rounded up
// to a power of two. If initialCapacity is <= 0 the map starts out with
// DefaultInitialCapacity buckets. The zero value for a Map is not usable.
func New[K comparable, V any](initialCapacity int, options ...option[K, V]) *Map[K, V] {
	m := &Map[K, V]{}
	m.t.init(initialCapacity, options)
	return m
}

// Close closes the map, releasing any memory back to its configured
// allocator. It is unnecessary to close a map using the default allocator. It
// is invalid to use a Map after it has been closed, though Close itself is
// idempotent.
func (m *Map[K, V]) Close() {
	m.t.close()
}

// Put inserts an entry into the map, overwriting an existing value if an
// entry with the same key already exists. Overwriting never grows the map
// and never fails. Inserting a new key fails with ErrCapacityExceeded if the
// map is full at MaximumCapacity, in which case the map is unmodified.
func (m *Map[K, V]) Put(key K, value V) error {
	_, _, err := m.t.insert(key, value, true)
	return err
}

// Swap stores value for key and returns the previous value, if any. The
// loaded result reports whether the key was present.
func (m *Map[K, V]) Swap(key K, value V) (previous V, loaded bool, err error) {
	return m.t.insert(key, value, true)
}

// Get retrieves the value from the map for the specified key, return ok=false
// if the key is not present. A key mapped to the zero value of V reports
// ok=true.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if e := m.t.find(key); e != nil {
		return e.value, true
	}
	return value, false
}

// ContainsKey reports whether an entry for key is present, regardless of
// the value it is mapped to.
func (m *Map[K, V]) ContainsKey(key K) bool {
	return m.t.find(key) != nil
}

// ContainsValueFunc reports whether any value in the map satisfies pred. It
// visits every entry in the worst case.
func (m *Map[K, V]) ContainsValueFunc(pred func(value V) bool) bool {
	var found bool
	m.t.all(func(_ K, v V) bool {
		found = pred(v)
		return !found
	})
	return found
}

// ContainsValue reports whether value is mapped to by any key in m.
func ContainsValue[K comparable, V comparable](m *Map[K, V], value V) bool {
	return m.ContainsValueFunc(func(v V) bool { return v == value })
}

// Delete deletes the entry corresponding to the specified key from the map,
// reporting whether it was present. It is a noop to delete a non-existent
// key.
func (m *Map[K, V]) Delete(key K) bool {
	_, ok := m.t.delete(key)
	return ok
}

// Clear deletes all entries from the map. The capacity of the map is
// retained.
func (m *Map[K, V]) Clear() {
	m.t.clear()
}

// All calls yield sequentially for each key and value present in the map. If
// yield returns false, range stops the iteration. Entries are visited in
// bucket order, which is unrelated to insertion order and changes when the
// map grows. The map can be mutated during iteration, though there is no
// guarantee that the mutations will be visible to the iteration.
//
//	for k, v := range m.All {
//	  fmt.Printf("%v: %v\n", k, v)
//	}
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	m.t.all(yield)
}

// Entries returns a snapshot of the entries in the map. Later mutations of
// the map are not reflected in the returned slice.
func (m *Map[K, V]) Entries() []Entry[K, V] {
	return m.t.entries()
}

// Keys returns a snapshot of the keys in the map, in the same order as All.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.t.used)
	m.t.all(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Values returns a snapshot of the values in the map, in the same order as
// All. Values mapped to by more than one key appear more than once.
func (m *Map[K, V]) Values() []V {
	values := make([]V, 0, m.t.used)
	m.t.all(func(_ K, v V) bool {
		values = append(values, v)
		return true
	})
	return values
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.t.used
}

// IsEmpty reports whether the map has no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.t.used == 0
}

// capacity returns the number of buckets in the map.
func (m *Map[K, V]) capacity() int {
	return m.t.capacity
}

// String formats the map as [k1:v1, k2:v2, ...] in the order of All.
func (m *Map[K, V]) String() string {
	return m.t.format(func(buf *strings.Builder, k K, v V) {
		fmt.Fprintf(buf, "%v:%v", k, v)
	})
}
