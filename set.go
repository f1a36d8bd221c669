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
	"slices"
	"strings"
)

// Set is an unordered collection of unique elements. It is a table whose
// entries carry no value: every element is the key of its own entry.
//
// A Set is NOT goroutine-safe.
type Set[K comparable] struct {
	t table[K, struct{}]
}

// NewSet constructs a new Set with the specified initial capacity, rounded
// up to a power of two. If initialCapacity is <= 0 the set starts out with
// DefaultInitialCapacity buckets.
func NewSet[K comparable](initialCapacity int, options ...option[K, struct{}]) *Set[K] {
	s := &Set[K]{}
	s.t.init(initialCapacity, options)
	return s
}

// Close releases any memory back to the set's configured allocator. It is
// invalid to use a Set after it has been closed.
func (s *Set[K]) Close() {
	s.t.close()
}

// Add inserts elem, returning false without modifying the set if an equal
// element is already present. It fails with ErrCapacityExceeded if the set
// would need to grow past MaximumCapacity.
func (s *Set[K]) Add(elem K) (bool, error) {
	_, loaded, err := s.t.insert(elem, struct{}{}, false)
	if err != nil {
		return false, err
	}
	return !loaded, nil
}

// Contains reports whether an element equal to elem is in the set.
func (s *Set[K]) Contains(elem K) bool {
	return s.t.find(elem) != nil
}

// Delete removes elem from the set, reporting whether it was present.
func (s *Set[K]) Delete(elem K) bool {
	_, ok := s.t.delete(elem)
	return ok
}

// Clear removes all elements. The capacity of the set is retained.
func (s *Set[K]) Clear() {
	s.t.clear()
}

// Len returns the number of elements in the set.
func (s *Set[K]) Len() int {
	return s.t.used
}

// IsEmpty reports whether the set has no elements.
func (s *Set[K]) IsEmpty() bool {
	return s.t.used == 0
}

// All calls yield sequentially for each element of the set until yield
// returns false.
func (s *Set[K]) All(yield func(elem K) bool) {
	s.t.all(func(k K, _ struct{}) bool {
		return yield(k)
	})
}

// Elements returns a snapshot of the elements in the order of All.
func (s *Set[K]) Elements() []K {
	elems := make([]K, 0, s.t.used)
	s.All(func(k K) bool {
		elems = append(elems, k)
		return true
	})
	return elems
}

func (s *Set[K]) capacity() int {
	return s.t.capacity
}

// String formats the set as [e1, e2, ...] in the order of All.
func (s *Set[K]) String() string {
	return s.t.format(func(buf *strings.Builder, k K, _ struct{}) {
		fmt.Fprint(buf, k)
	})
}

// Iterator returns an iterator over a snapshot of the set's elements taken
// now. Elements added to or deleted from the set afterwards are not
// reflected by the iterator, but Iterator.Remove deletes from both the
// snapshot and the set.
func (s *Set[K]) Iterator() *Iterator[K] {
	return &Iterator[K]{set: s, elems: s.Elements()}
}

// Iterator walks a snapshot of a Set:
//
//	it := s.Iterator()
//	for it.Next() {
//	  if discard(it.Elem()) {
//	    it.Remove()
//	  }
//	}
type Iterator[K comparable] struct {
	set   *Set[K]
	elems []K
	// pos is the index in elems of the element the next call to Next will
	// return.
	pos int
	// cur is the element last returned by Next. It is valid until Remove is
	// called or Next is called again.
	cur   K
	valid bool
}

// Next advances the iterator, reporting whether another element is
// available.
func (it *Iterator[K]) Next() bool {
	if it.pos >= len(it.elems) {
		var zero K
		it.cur, it.valid = zero, false
		return false
	}
	it.cur, it.valid = it.elems[it.pos], true
	it.pos++
	return true
}

// Elem returns the element last returned by Next. It returns the zero value
// of K if Next has not been called, returned false, or the element has been
// removed.
func (it *Iterator[K]) Elem() K {
	return it.cur
}

// Remaining returns the number of elements Next has yet to return.
func (it *Iterator[K]) Remaining() int {
	return len(it.elems) - it.pos
}

// Remove deletes the element last returned by Next from the snapshot and
// from the set. It reports whether the set held the element; it returns
// false without doing anything if there is no current element, for instance
// when Remove is called twice in a row.
func (it *Iterator[K]) Remove() bool {
	if !it.valid {
		return false
	}
	it.pos--
	it.elems = slices.Delete(it.elems, it.pos, it.pos+1)
	elem := it.cur
	var zero K
	it.cur, it.valid = zero, false
	return it.set.Delete(elem)
}
