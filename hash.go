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
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// Hasher supplies the raw hash code and the equality relation for keys of
// type K. Keys that are Equal must produce the same Hash. The table mixes the
// raw hash code with supplementalHash before using its low bits, so a Hasher
// does not need to spread entropy into the low bits itself.
type Hasher[K any] interface {
	Hash(key K) uint32
	Equal(a, b K) bool
}

// HashFunc adapts a plain hash function to a Hasher that compares keys with
// ==.
type HashFunc[K comparable] func(key K) uint32

// Hash implements Hasher.
func (f HashFunc[K]) Hash(key K) uint32 { return f(key) }

// Equal implements Hasher.
func (HashFunc[K]) Equal(a, b K) bool { return a == b }

// stringHasher hashes string keys with xxhash. The hash is unseeded so that
// the bucket layout of a string table is reproducible across runs.
type stringHasher struct{}

func (stringHasher) Hash(key string) uint32 { return fold(xxhash.Sum64String(key)) }
func (stringHasher) Equal(a, b string) bool { return a == b }

// comparableHasher hashes any comparable key using the runtime's hash for
// that type.
type comparableHasher[K comparable] struct {
	seed maphash.Seed
}

func (h comparableHasher[K]) Hash(key K) uint32 { return fold(maphash.Comparable(h.seed, key)) }
func (comparableHasher[K]) Equal(a, b K) bool   { return a == b }

// defaultHasher returns the Hasher used when no WithHash or WithHasher
// option is supplied.
func defaultHasher[K comparable]() Hasher[K] {
	var k K
	if _, ok := any(k).(string); ok {
		return any(stringHasher{}).(Hasher[K])
	}
	return comparableHasher[K]{seed: maphash.MakeSeed()}
}

func fold(h uint64) uint32 {
	return uint32(h ^ (h >> 32))
}

// supplementalHash scrambles the bits of a raw hash code so that the low
// bits selected by the capacity mask depend on the high bits too. All shifts
// are logical.
func supplementalHash(h uint32) uint32 {
	h ^= (h >> 20) ^ (h >> 12)
	return h ^ (h >> 7) ^ (h >> 4)
}
