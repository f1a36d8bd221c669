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

package chainmap_test

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/chainmap"
)

func ExampleMap() {
	m := chainmap.New[string, int](0)
	_ = m.Put("Smith", 30)
	_ = m.Put("Anderson", 31)
	_ = m.Put("Lewis", 29)
	_ = m.Put("Cook", 29)
	_ = m.Put("Smith", 65)

	age, _ := m.Get("Lewis")
	fmt.Println("The age for Lewis is", age)
	fmt.Println("Is Smith in the map?", m.ContainsKey("Smith"))
	fmt.Println("Is age 33 in the map values?", chainmap.ContainsValue(m, 33))
	fmt.Println("Entries:", m.Len())

	m.Delete("Smith")
	_, ok := m.Get("Smith")
	fmt.Println("Entries after removing Smith:", m.Len(), ok)

	m.Clear()
	fmt.Println("Entries after clear:", m)
	// Output:
	// The age for Lewis is 29
	// Is Smith in the map? true
	// Is age 33 in the map values? false
	// Entries: 4
	// Entries after removing Smith: 3 false
	// Entries after clear: []
}

func ExampleSet_Iterator() {
	s := chainmap.NewSet[string](0)
	for _, name := range []string{"Smith", "Anderson", "Lewis", "Anderson", "Cook", "Smith", "Cook", "Smith"} {
		_, _ = s.Add(name)
	}
	fmt.Println("Number of elements in set:", s.Len())
	fmt.Println("Is Smith in set?", s.Contains("Smith"))

	it := s.Iterator()
	for it.Next() {
		if strings.HasPrefix(it.Elem(), "S") {
			it.Remove()
		}
	}
	fmt.Println("Number of elements after removing S names:", s.Len())
	// Output:
	// Number of elements in set: 4
	// Is Smith in set? true
	// Number of elements after removing S names: 3
}
