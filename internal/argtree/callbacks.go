// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package argtree

import "context"

// Phase controls whether a callback sees absent arguments.
type Phase int

const (
	// PhasePost callbacks run only for arguments that hold a value.
	PhasePost Phase = iota
	// PhasePre callbacks also run for absent arguments and may supply one.
	PhasePre
)

// Transform receives the current value of an argument (nil when absent)
// and returns its replacement.
type Transform func(ctx context.Context, value any) (any, error)

// Callback is one queued transform.
type Callback struct {
	Arg       string
	Phase     Phase
	Transform Transform
}

// CallbackQueue defers validation and normalization of parsed values until
// the whole argument vector has been parsed.
type CallbackQueue struct {
	entries []Callback
}

// Register queues fn for arg.
func (q *CallbackQueue) Register(arg string, phase Phase, fn Transform) {
	q.entries = append(q.entries, Callback{Arg: arg, Phase: phase, Transform: fn})
}

// Len returns the number of queued callbacks.
func (q *CallbackQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.entries)
}

// Apply runs every callback in registration order, rewriting inv.Args in
// place. The first failing transform aborts with an ArgumentError naming
// its argument.
func (q *CallbackQueue) Apply(ctx context.Context, inv *Invocation) error {
	if q == nil {
		return nil
	}
	if inv.Args == nil {
		inv.Args = make(Namespace)
	}
	for _, cb := range q.entries {
		value := inv.Args[cb.Arg]
		if value == nil && cb.Phase == PhasePost {
			continue
		}
		next, err := cb.Transform(ctx, value)
		if err != nil {
			return &ArgumentError{Arg: cb.Arg, Reason: err.Error(), Err: err}
		}
		inv.Args[cb.Arg] = next
	}
	return nil
}
