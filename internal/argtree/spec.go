// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package argtree

import (
	"fmt"
	"strconv"
	"strings"
)

// Store actions accepted in ArgSpec.Action.
const (
	ActionStore      = "store"
	ActionStoreTrue  = "store_true"
	ActionStoreFalse = "store_false"
	ActionAppend     = "append"
	ActionCount      = "count"
)

// Value types accepted in ArgSpec.Type.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
)

// ArgSpec declares one positional argument or option.
//
// Name is either a positional name ("domain"), a short option ("-d") or a
// long option ("--domain"). Full is the long alias of a short option.
type ArgSpec struct {
	Name     string
	Full     string
	Help     string
	Type     string
	Nargs    string
	Default  any
	Required bool
	Choices  []string
	Action   string
	Metavar  string
	Dest     string
}

// FormatArgNames returns the names registered for an argument: the short
// form and its long alias when name is an option and full is set, otherwise
// name alone.
func FormatArgNames(name, full string) []string {
	if strings.HasPrefix(name, "-") && full != "" {
		return []string{name, full}
	}
	return []string{name}
}

// DestName returns the key the parsed value is stored under: Dest when
// set, otherwise the long option name (or the short one, or the positional
// name) with dashes turned into underscores.
func (s ArgSpec) DestName() string {
	if s.Dest != "" {
		return s.Dest
	}
	if !strings.HasPrefix(s.Name, "-") {
		return destName(s.Name)
	}
	var long, short string
	for _, n := range FormatArgNames(s.Name, s.Full) {
		if strings.HasPrefix(n, "--") {
			long = n
		} else {
			short = n
		}
	}
	if long == "" {
		long = short
	}
	return destName(long)
}

// argument is a validated ArgSpec.
type argument struct {
	spec       ArgSpec
	dest       string
	long       string
	short      string
	positional bool
	min, max   int // arity, max < 0 means unbounded
	list       bool
}

func (a *argument) display() string {
	if a.positional {
		return a.dest
	}
	return "--" + a.long
}

func compileArg(spec ArgSpec) (*argument, error) {
	if spec.Name == "" {
		return nil, specErrorf(ErrInvalidSpec, "argument without a name")
	}
	if spec.Type == "str" {
		spec.Type = TypeString
	}
	switch spec.Type {
	case "", TypeString, TypeInt, TypeFloat:
	default:
		return nil, specErrorf(ErrInvalidSpec, "%s: unknown type %q", spec.Name, spec.Type)
	}
	if spec.Action == "" {
		spec.Action = ActionStore
	}

	a := &argument{spec: spec}
	if !strings.HasPrefix(spec.Name, "-") {
		if spec.Full != "" {
			return nil, specErrorf(ErrInvalidSpec, "%s: positional arguments take no long alias", spec.Name)
		}
		if spec.Action != ActionStore {
			return nil, specErrorf(ErrInvalidSpec, "%s: action %q is only valid for options", spec.Name, spec.Action)
		}
		a.positional = true
		a.dest = destName(spec.Name)
		lo, hi, list, err := parseNargs(spec.Nargs)
		if err != nil {
			return nil, specErrorf(ErrInvalidSpec, "%s: %v", spec.Name, err)
		}
		a.min, a.max, a.list = lo, hi, list
	} else {
		for _, n := range FormatArgNames(spec.Name, spec.Full) {
			switch {
			case strings.HasPrefix(n, "--") && len(n) > 2:
				a.long = n[2:]
			case len(n) == 2 && n[0] == '-' && n[1] != '-':
				a.short = n[1:]
			default:
				return nil, specErrorf(ErrInvalidSpec, "%q: short options must be a single character", n)
			}
		}
		if a.long == "" {
			a.long = a.short
		}
		a.dest = destName(a.long)
		switch spec.Action {
		case ActionStore:
			_, _, list, err := parseNargs(spec.Nargs)
			if err != nil {
				return nil, specErrorf(ErrInvalidSpec, "%s: %v", spec.Name, err)
			}
			a.list = list
		case ActionAppend:
			a.list = true
		case ActionStoreTrue, ActionStoreFalse, ActionCount:
			if spec.Nargs != "" || len(spec.Choices) > 0 {
				return nil, specErrorf(ErrInvalidSpec, "%s: %s takes no value", spec.Name, spec.Action)
			}
		default:
			return nil, specErrorf(ErrInvalidSpec, "%s: unknown action %q", spec.Name, spec.Action)
		}
	}
	if spec.Dest != "" {
		a.dest = spec.Dest
	}
	for _, c := range spec.Choices {
		if _, err := convert(c, spec.Type); err != nil {
			return nil, specErrorf(ErrInvalidSpec, "%s: choice %q is not a valid %s", spec.Name, c, spec.Type)
		}
	}
	if _, err := a.defaultValue(); err != nil {
		return nil, specErrorf(ErrInvalidSpec, "%s: %v", spec.Name, err)
	}
	return a, nil
}

func destName(name string) string {
	return strings.ReplaceAll(strings.TrimLeft(name, "-"), "-", "_")
}

// parseNargs maps an nargs declaration to an arity range.
func parseNargs(nargs string) (lo, hi int, list bool, err error) {
	switch nargs {
	case "":
		return 1, 1, false, nil
	case "?":
		return 0, 1, false, nil
	case "*":
		return 0, -1, true, nil
	case "+":
		return 1, -1, true, nil
	}
	n, convErr := strconv.Atoi(nargs)
	if convErr != nil || n < 1 {
		return 0, 0, false, fmt.Errorf("invalid nargs %q", nargs)
	}
	return n, n, true, nil
}

// convert coerces a raw command-line token to the declared type.
func convert(raw, typ string) (any, error) {
	switch typ {
	case TypeInt:
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid int value: %q", raw)
		}
		return v, nil
	case TypeFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float value: %q", raw)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// defaultValue returns the value stored when the argument is absent.
func (a *argument) defaultValue() (any, error) {
	switch a.spec.Action {
	case ActionStoreTrue:
		if a.spec.Default == nil {
			return false, nil
		}
	case ActionStoreFalse:
		if a.spec.Default == nil {
			return true, nil
		}
	case ActionCount:
		if a.spec.Default == nil {
			return 0, nil
		}
	}
	if a.spec.Default == nil {
		return nil, nil
	}
	switch a.spec.Action {
	case ActionStoreTrue, ActionStoreFalse:
		b, ok := a.spec.Default.(bool)
		if !ok {
			return nil, fmt.Errorf("default %v is not a boolean", a.spec.Default)
		}
		return b, nil
	case ActionCount:
		return coerceScalar(a.spec.Default, TypeInt)
	}
	if a.list {
		items, ok := a.spec.Default.([]any)
		if !ok {
			v, err := coerceScalar(a.spec.Default, a.spec.Type)
			if err != nil {
				return nil, err
			}
			return []any{v}, nil
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			v, err := coerceScalar(item, a.spec.Type)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return coerceScalar(a.spec.Default, a.spec.Type)
}

// coerceScalar normalizes a decoded default (YAML, TOML and JSON decoders
// disagree on numeric kinds) to the declared type.
func coerceScalar(v any, typ string) (any, error) {
	switch typ {
	case TypeInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case uint64:
			return int(n), nil
		case float64:
			if n != float64(int(n)) {
				return nil, fmt.Errorf("default %v is not an integer", v)
			}
			return int(n), nil
		case string:
			return convert(n, TypeInt)
		}
		return nil, fmt.Errorf("default %v is not an integer", v)
	case TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case uint64:
			return float64(n), nil
		case string:
			return convert(n, TypeFloat)
		}
		return nil, fmt.Errorf("default %v is not a number", v)
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
}

// checkChoice validates v (or each element of a list) against the declared
// choices.
func (a *argument) checkChoice(v any) error {
	if len(a.spec.Choices) == 0 || v == nil {
		return nil
	}
	values := []any{v}
	if items, ok := v.([]any); ok {
		values = items
	}
	for _, item := range values {
		if !a.isChoice(item) {
			return argErrorf(a.display(), "invalid choice: %q (choose from %s)", fmt.Sprint(item), strings.Join(a.spec.Choices, ", "))
		}
	}
	return nil
}

// isChoice compares v with each choice converted to the argument's type,
// so that "1.0" and "1" both match a float choice of 1.
func (a *argument) isChoice(v any) bool {
	for _, c := range a.spec.Choices {
		cv, err := convert(c, a.spec.Type)
		if err == nil && cv == v {
			return true
		}
	}
	return false
}
