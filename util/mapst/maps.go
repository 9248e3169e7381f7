// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package mapst holds generic helpers over maps.
package mapst

import (
	"cmp"
	"slices"
)

// Keys

// Keys returns the keys of m in unspecified order.
func Keys[K comparable, V any, M ~map[K]V](m M) []K {
	result := make([]K, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	return result
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any, M ~map[K]V](m M) []K {
	result := Keys(m)
	slices.Sort(result)
	return result
}

// Filter

func Filter[K comparable, V any, M ~map[K]V](m M, fn func(K, V) bool) M {
	result := make(M)
	for k, v := range m {
		if fn(k, v) {
			result[k] = v
		}
	}
	return result
}
