// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package argtree

import "fmt"

// Invocation is the outcome of a successful parse.
type Invocation struct {
	TID     string
	Args    Namespace
	Globals Namespace
}

// Namespace maps argument destinations to parsed values.
type Namespace map[string]any

// String returns the value of key formatted as a string, "" when absent.
func (ns Namespace) String(key string) string {
	v, ok := ns[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the integer value of key, 0 when absent or not an integer.
func (ns Namespace) Int(key string) int {
	switch v := ns[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns the boolean value of key.
func (ns Namespace) Bool(key string) bool {
	b, _ := ns[key].(bool)
	return b
}

// Strings returns a list value of key as strings. A scalar value yields a
// one-element slice.
func (ns Namespace) Strings(key string) []string {
	switch v := ns[key].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return v
	default:
		return []string{fmt.Sprint(v)}
	}
}
