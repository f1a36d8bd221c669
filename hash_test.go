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
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"
)

func TestSupplementalHash(t *testing.T) {
	testCases := []struct {
		h        uint32
		expected uint32
	}{
		{0x0, 0x0},
		{0x1, 0x1},
		{0xf, 0xf},
		{0x100000, 0x112113},
		{0x12345678, 0x133249b7},
		{0x80000000, 0x89089890},
		{0xffffffff, 0xf1f0ef1f},
	}
	for _, c := range testCases {
		require.Equalf(t, c.expected, supplementalHash(c.h), "h=%08x", c.h)
	}
}

func TestSupplementalHashSpreadsHighBits(t *testing.T) {
	// Hash codes that differ only above bit 20 all collide under a plain
	// mask. The supplemental hash should spread them over every bucket.
	const capacity = 16
	seen := make(map[uint32]bool)
	for i := uint32(0); i < capacity; i++ {
		h := i << 20
		require.EqualValues(t, 0, h&(capacity-1))
		seen[supplementalHash(h)&(capacity-1)] = true
	}
	require.Len(t, seen, capacity)
}

func TestDefaultHasher(t *testing.T) {
	_, ok := defaultHasher[string]().(stringHasher)
	require.True(t, ok)
	require.EqualValues(t, fold(xxhash.Sum64String("Smith")), defaultHasher[string]().Hash("Smith"))

	type point struct{ x, y int }
	h := defaultHasher[point]()
	_, ok = h.(comparableHasher[point])
	require.True(t, ok)
	require.Equal(t, h.Hash(point{1, 2}), h.Hash(point{1, 2}))
	require.True(t, h.Equal(point{1, 2}, point{1, 2}))
	require.False(t, h.Equal(point{1, 2}, point{2, 1}))
}

func TestHashFunc(t *testing.T) {
	h := HashFunc[int](func(key int) uint32 { return uint32(key) * 31 })
	require.EqualValues(t, 62, h.Hash(2))
	require.True(t, h.Equal(7, 7))
	require.False(t, h.Equal(7, 8))
}

// caseInsensitive treats strings that differ only in case as equal keys.
type caseInsensitive struct{}

func (caseInsensitive) Hash(key string) uint32 {
	return fold(xxhash.Sum64String(strings.ToLower(key)))
}

func (caseInsensitive) Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

func TestCustomHasher(t *testing.T) {
	m := New[string, int](0, WithHasher[string, int](caseInsensitive{}))
	require.NoError(t, m.Put("Smith", 30))
	require.NoError(t, m.Put("SMITH", 65))
	require.EqualValues(t, 1, m.Len())

	v, ok := m.Get("smith")
	require.True(t, ok)
	require.EqualValues(t, 65, v)
	// The key originally inserted is retained on overwrite.
	require.Equal(t, []string{"Smith"}, m.Keys())

	s := NewSet[string](0, WithHasher[string, struct{}](caseInsensitive{}))
	for _, name := range []string{"Cook", "cook", "COOK", "Lewis"} {
		_, err := s.Add(name)
		require.NoError(t, err)
	}
	require.EqualValues(t, 2, s.Len())
	require.True(t, s.Contains("lewis"))
}
