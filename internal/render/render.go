// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package render prints action results in the three output modes of the
// command line: pretty (the default for mappings), plain (for scripts) and
// JSON.
//
// Mapping keys are always visited in sorted order and the renderers never
// modify the value they are given.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/Harlan22/kilu/internal/termio"
)

// Pair is an ordered key/value element. Inside a sequence it renders as a
// nested key block rather than a bullet.
type Pair struct {
	Key   string
	Value any
}

// entry is one key of a normalized mapping.
type entry struct {
	key   string
	value any
}

// mapping is a normalized map with sorted keys.
type mapping []entry

// normalize rewrites v into scalars, []any, mapping and Pair values. The
// input is only read.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case Pair:
		return Pair{Key: t.Key, Value: normalize(t.Value)}
	case *Pair:
		if t == nil {
			return nil
		}
		return Pair{Key: t.Key, Value: normalize(t.Value)}
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(t, &decoded); err != nil {
			return string(t)
		}
		return normalize(decoded)
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Map:
		out := make(mapping, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out = append(out, entry{key: fmt.Sprint(iter.Key().Interface()), value: normalize(iter.Value().Interface())})
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].key < out[j].key })
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Struct:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			return fmt.Sprint(v)
		}
		return normalize(decoded)
	}
	return v
}

// IsMapping reports whether v renders as a mapping.
func IsMapping(v any) bool {
	_, ok := normalize(v).(mapping)
	return ok
}

// IsEmpty reports whether v is nil or an empty string, sequence or mapping.
func IsEmpty(v any) bool {
	switch n := normalize(v).(type) {
	case nil:
		return true
	case string:
		return n == ""
	case []any:
		return len(n) == 0
	case mapping:
		return len(n) == 0
	}
	return false
}

func scalar(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Plain writes v for scripting usage: every mapping key on its own line
// prefixed by one '#' per nesting level, values on the following lines.
// A top-level mapping with a single key is unwrapped first.
func Plain(w io.Writer, v any) error {
	n := normalize(v)
	if m, ok := n.(mapping); ok && len(m) == 1 {
		n = m[0].value
	}
	return plain(w, n, 0)
}

func plain(w io.Writer, v any, depth int) error {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if err := plain(w, item, depth+1); err != nil {
				return err
			}
		}
		return nil
	case mapping:
		for _, e := range t {
			if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("#", depth+1), e.key); err != nil {
				return err
			}
			if err := plain(w, e.value, depth+1); err != nil {
				return err
			}
		}
		return nil
	case Pair:
		return plain(w, mapping{{key: t.Key, value: t.Value}}, depth)
	}
	_, err := fmt.Fprintln(w, scalar(v))
	return err
}

// Pretty writes v as an indented key/value listing with purple keys when
// color is set. Values that are not mappings are printed as is.
func Pretty(w io.Writer, v any, color bool) error {
	n := normalize(v)
	m, ok := n.(mapping)
	if !ok {
		if p, isPair := n.(Pair); isPair {
			m = mapping{{key: p.Key, value: p.Value}}
		} else {
			_, err := fmt.Fprintln(w, scalar(n))
			return err
		}
	}
	return pretty(w, m, 0, color)
}

func pretty(w io.Writer, m mapping, depth int, color bool) error {
	indent := strings.Repeat("  ", depth)
	for _, e := range m {
		key := termio.Colorize(e.key, termio.Purple, color)
		value := e.value
		if list, ok := value.([]any); ok && len(list) == 1 {
			value = list[0]
		}
		if p, ok := value.(Pair); ok {
			value = mapping{{key: p.Key, value: p.Value}}
		}

		switch t := value.(type) {
		case mapping:
			if _, err := fmt.Fprintf(w, "%s%s:\n", indent, key); err != nil {
				return err
			}
			if err := pretty(w, t, depth+1, color); err != nil {
				return err
			}
		case []any:
			if _, err := fmt.Fprintf(w, "%s%s:\n", indent, key); err != nil {
				return err
			}
			for i, item := range t {
				var err error
				switch it := item.(type) {
				case Pair:
					err = pretty(w, mapping{{key: it.Key, value: it.Value}}, depth+1, color)
				case mapping:
					err = pretty(w, mapping{{key: fmt.Sprint(i), value: it}}, depth+1, color)
				default:
					_, err = fmt.Fprintf(w, "%s  - %s\n", indent, scalar(item))
				}
				if err != nil {
					return err
				}
			}
		default:
			if _, err := fmt.Fprintf(w, "%s%s: %s\n", indent, key, scalar(t)); err != nil {
				return err
			}
		}
	}
	return nil
}

// JSON writes v as a single JSON document followed by a newline.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(jsonValue(normalize(v))); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// jsonValue rebuilds the normalized form of v with JSON containers, so
// that JSON keeps the shape the other renderers print. A Pair becomes a
// single-key object.
func jsonValue(v any) any {
	switch t := v.(type) {
	case mapping:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.key] = jsonValue(e.value)
		}
		return out
	case Pair:
		return map[string]any{t.Key: jsonValue(t.Value)}
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = jsonValue(item)
		}
		return out
	}
	return v
}
