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

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultInitialCapacity is the number of buckets allocated when New or
	// NewSet is passed a non-positive initial capacity.
	DefaultInitialCapacity = 4
	// DefaultLoadFactor is the load factor threshold used unless
	// WithLoadFactor specifies another.
	DefaultLoadFactor float32 = 0.75
	// MaximumCapacity is the largest number of buckets a table will
	// allocate. Larger initial capacities are clamped to it and inserts that
	// would need to grow past it fail with ErrCapacityExceeded.
	MaximumCapacity = 1 << 30
)

// ErrCapacityExceeded is returned by inserts that would need to grow the
// table past its maximum capacity. The table is left unmodified.
var ErrCapacityExceeded = errors.New("chainmap: exceeding maximum capacity")

// Entry holds a key and value.
type Entry[K comparable, V any] struct {
	key   K
	value V
}

// Key returns the key of the entry.
func (e Entry[K, V]) Key() K { return e.key }

// Value returns the value of the entry.
func (e Entry[K, V]) Value() V { return e.value }

// table is the separate-chaining hash table shared by Map and Set. A Set
// stores Entry[K, struct{}], so the key of every slot is the element itself.
type table[K comparable, V any] struct {
	// hasher supplies the raw hash code and the equality of keys.
	hasher Hasher[K]
	// The allocator to use for the bucket arrays.
	allocator Allocator[K, V]
	logger    *zap.Logger
	// buckets is capacity in length. A nil chain is a bucket that has never
	// received an entry; it is materialized by the first insert into it.
	// Chains keep their entries in insertion order.
	buckets [][]Entry[K, V]
	// The number of buckets (always 2^N). The capacity is used as a mask
	// to quickly compute h%capacity using a bitwise & operation.
	capacity    int
	maxCapacity int
	// maxLoad is the load factor threshold. The table never holds more than
	// capacity*maxLoad entries after a successful insert.
	maxLoad float32
	// The number of entries across all chains.
	used int
}

func (t *table[K, V]) init(initialCapacity int, options []option[K, V]) {
	*t = table[K, V]{
		allocator:   defaultAllocator[K, V]{},
		logger:      zap.NewNop(),
		maxCapacity: MaximumCapacity,
		maxLoad:     DefaultLoadFactor,
	}

	for _, op := range options {
		op.apply(t)
	}

	if t.hasher == nil {
		t.hasher = defaultHasher[K]()
	}
	// NB: the negated comparison also rejects NaN.
	if !(t.maxLoad > 0) {
		t.maxLoad = DefaultLoadFactor
	}
	if initialCapacity <= 0 {
		initialCapacity = DefaultInitialCapacity
	}
	t.capacity = roundUpPowerOf2(initialCapacity, t.maxCapacity)
	t.buckets = t.allocator.AllocBuckets(t.capacity)
	t.checkInvariants()
}

// roundUpPowerOf2 returns the smallest power of two >= n, clamped to limit.
func roundUpPowerOf2(n, limit int) int {
	if n >= limit {
		return limit
	}
	return 1 << bits.Len(uint(n-1))
}

// index returns the bucket for key under the current capacity.
func (t *table[K, V]) index(key K) int {
	return int(supplementalHash(t.hasher.Hash(key)) & uint32(t.capacity-1))
}

// find returns a pointer to the entry whose key equals key, or nil. The
// pointer is invalidated by the next insert or delete.
func (t *table[K, V]) find(key K) *Entry[K, V] {
	chain := t.buckets[t.index(key)]
	for i := range chain {
		if t.hasher.Equal(chain[i].key, key) {
			return &chain[i]
		}
	}
	return nil
}

// insert adds an entry for key. If an entry with an equal key already exists
// its previous value is returned with loaded=true, and its value is replaced
// only when overwrite is set. Overwriting never grows the table.
func (t *table[K, V]) insert(key K, value V, overwrite bool) (previous V, loaded bool, err error) {
	if e := t.find(key); e != nil {
		previous = e.value
		if overwrite {
			e.value = value
		}
		return previous, true, nil
	}

	if err := t.reserve(t.used + 1); err != nil {
		return previous, false, err
	}

	// The capacity may have changed, so the index is computed after
	// reserving space.
	i := t.index(key)
	t.buckets[i] = append(t.buckets[i], Entry[K, V]{key: key, value: value})
	t.used++
	t.checkInvariants()
	return previous, false, nil
}

// reserve grows the table, if necessary, so that it can hold n entries
// without exceeding the load factor threshold. The target capacity is
// computed before anything is modified so that a failure leaves the table
// untouched.
func (t *table[K, V]) reserve(n int) error {
	newCapacity := t.capacity
	for float64(n) > float64(newCapacity)*float64(t.maxLoad) {
		if newCapacity >= t.maxCapacity {
			if ce := t.logger.Check(zap.WarnLevel, "chainmap: capacity exceeded"); ce != nil {
				ce.Write(zap.Int("capacity", t.capacity), zap.Int("size", t.used))
			}
			return errors.Wrapf(ErrCapacityExceeded, "capacity=%d size=%d", t.capacity, t.used)
		}
		newCapacity <<= 1
	}
	if newCapacity != t.capacity {
		t.resize(newCapacity)
	}
	return nil
}

// resize allocates a new bucket array and rehashes every entry into it
// individually, since the bucket of a key depends on the capacity. The old
// array is released to the allocator.
func (t *table[K, V]) resize(newCapacity int) {
	oldBuckets, oldCapacity := t.buckets, t.capacity
	t.buckets = t.allocator.AllocBuckets(newCapacity)
	t.capacity = newCapacity

	for _, chain := range oldBuckets {
		for i := range chain {
			j := t.index(chain[i].key)
			t.buckets[j] = append(t.buckets[j], chain[i])
		}
	}
	t.allocator.FreeBuckets(oldBuckets)

	if ce := t.logger.Check(zap.DebugLevel, "chainmap: resize"); ce != nil {
		ce.Write(zap.Int("old-capacity", oldCapacity), zap.Int("capacity", newCapacity),
			zap.Int("size", t.used))
	}
	t.checkInvariants()
}

// delete removes the entry for key, returning its value and whether it was
// present. The order of the remaining entries in the chain is preserved. The
// chain is copied rather than shifted in place because iterators may still
// hold the old backing array.
func (t *table[K, V]) delete(key K) (value V, ok bool) {
	i := t.index(key)
	chain := t.buckets[i]
	for j := range chain {
		if t.hasher.Equal(chain[j].key, key) {
			value = chain[j].value
			t.buckets[i] = append(chain[:j:j], chain[j+1:]...)
			t.used--
			t.checkInvariants()
			return value, true
		}
	}
	return value, false
}

// clear drops every chain, leaving the buckets unmaterialized. The capacity
// is unchanged. The old chains are not zeroed since iterators may still be
// reading them.
func (t *table[K, V]) clear() {
	for i := range t.buckets {
		t.buckets[i] = nil
	}
	t.used = 0
	t.checkInvariants()
}

// close releases the bucket array back to the allocator. It is idempotent.
func (t *table[K, V]) close() {
	if t.buckets != nil {
		t.allocator.FreeBuckets(t.buckets)
	}
	t.buckets = nil
	t.capacity = 0
	t.used = 0
}

// all calls yield sequentially for each entry in bucket order and, within a
// bucket, in insertion order. If yield returns false, iteration stops.
func (t *table[K, V]) all(yield func(key K, value V) bool) {
	// Snapshot the bucket array so that iteration remains valid if the table
	// is resized, cleared, or has entries deleted during iteration. Entries
	// are never shifted or zeroed within a chain, so the chains reached from
	// this array keep yielding the entries they held.
	buckets := t.buckets
	for _, chain := range buckets {
		for i := range chain {
			if !yield(chain[i].key, chain[i].value) {
				return
			}
		}
	}
}

// entries returns a copy of every entry in the order used by all.
func (t *table[K, V]) entries() []Entry[K, V] {
	r := make([]Entry[K, V], 0, t.used)
	for _, chain := range t.buckets {
		r = append(r, chain...)
	}
	return r
}

// format writes the entries between brackets, separated by ", ", using
// formatEntry to render each of them.
func (t *table[K, V]) format(formatEntry func(buf *strings.Builder, key K, value V)) string {
	var buf strings.Builder
	buf.WriteByte('[')
	first := true
	t.all(func(key K, value V) bool {
		if !first {
			buf.WriteString(", ")
		}
		first = false
		formatEntry(&buf, key, value)
		return true
	})
	buf.WriteByte(']')
	return buf.String()
}

func (t *table[K, V]) checkInvariants() {
	if invariants {
		if t.capacity < 1 || t.capacity&(t.capacity-1) != 0 || t.capacity > t.maxCapacity {
			panic(fmt.Sprintf("invariant failed: capacity %d is not a power of two in [1, %d]\n%s",
				t.capacity, t.maxCapacity, t.debugString()))
		}
		if len(t.buckets) != t.capacity {
			panic(fmt.Sprintf("invariant failed: %d buckets, but capacity is %d\n%s",
				len(t.buckets), t.capacity, t.debugString()))
		}

		// For every entry, verify it lives in the bucket its key hashes to
		// and that no other entry in that bucket has an equal key. Equal keys
		// hash equally, so duplicates can only share a bucket.
		var used int
		for i, chain := range t.buckets {
			for j := range chain {
				if k := t.index(chain[j].key); k != i {
					panic(fmt.Sprintf("invariant failed: bucket(%d): %v belongs in bucket %d\n%s",
						i, chain[j].key, k, t.debugString()))
				}
				for l := j + 1; l < len(chain); l++ {
					if t.hasher.Equal(chain[j].key, chain[l].key) {
						panic(fmt.Sprintf("invariant failed: bucket(%d): duplicate key %v\n%s",
							i, chain[j].key, t.debugString()))
					}
				}
				used++
			}
		}

		if used != t.used {
			panic(fmt.Sprintf("invariant failed: found %d entries, but used count is %d\n%s",
				used, t.used, t.debugString()))
		}
		if float64(t.used) > float64(t.capacity)*float64(t.maxLoad) {
			panic(fmt.Sprintf("invariant failed: %d entries exceed load factor %.2f of capacity %d",
				t.used, t.maxLoad, t.capacity))
		}
	}
}

func (t *table[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d  max-load=%.2f\n", t.capacity, t.used, t.maxLoad)
	for i, chain := range t.buckets {
		if chain == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %4d:", i)
		for j := range chain {
			fmt.Fprintf(&buf, " %v", chain[j].key)
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}
