// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package mapst

import (
	"reflect"
	"testing"
)

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"system": 1, "auth": 2, "text": 3}
	if got, want := SortedKeys(m), []string{"auth", "system", "text"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedKeys = %v, want %v", got, want)
	}
	if got := Keys(map[string]int{}); len(got) != 0 {
		t.Fatalf("expected no keys, got %v", got)
	}
}

func TestFilter(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2, "c": 3}
	odd := Filter(m, func(_ string, v int) bool { return v%2 == 1 })
	if got, want := SortedKeys(odd), []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Filter kept %v, want %v", got, want)
	}
	if len(m) != 3 {
		t.Fatalf("Filter must not modify its input")
	}
}
