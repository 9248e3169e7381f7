// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package signals is the bridge between backend code and the interface that
// owns the user's terminal. Backend code raises a named signal; whatever
// handler the interface registered for that name answers it.
//
// A Bus is carried on the context handed to action handlers, so there is no
// process-wide registry.
package signals

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Signal names.
const (
	Authenticate = "authenticate"
	Prompt       = "prompt"
	Display      = "display"
)

var (
	// ErrUnhandledSignal is returned when a signal has no handler.
	ErrUnhandledSignal = errors.New("unhandled signal")

	// ErrConfirmationMismatch is returned by prompt handlers when the
	// confirmation differs from the first answer.
	ErrConfirmationMismatch = errors.New("values mismatch")
)

// Handler answers one raised signal. The payload depends on the signal.
type Handler func(ctx context.Context, payload any) (any, error)

// Bus holds one handler per signal name.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{handlers: make(map[string]Handler)}
}

// SetHandler installs h for name, replacing any previous handler. A nil h
// removes the handler.
func (b *Bus) SetHandler(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h == nil {
		delete(b.handlers, name)
		return
	}
	b.handlers[name] = h
}

// Handled reports whether name has a handler.
func (b *Bus) Handled(name string) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.handlers[name]
	return ok
}

// Raise dispatches payload to the handler registered for name.
func (b *Bus) Raise(ctx context.Context, name string, payload any) (any, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnhandledSignal, name)
	}
	b.mu.RLock()
	h, ok := b.handlers[name]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnhandledSignal, name)
	}
	return h(ctx, payload)
}

type busKey struct{}

// WithBus returns a copy of ctx carrying b.
func WithBus(ctx context.Context, b *Bus) context.Context {
	return context.WithValue(ctx, busKey{}, b)
}

// FromContext returns the bus carried by ctx, or nil.
func FromContext(ctx context.Context) *Bus {
	b, _ := ctx.Value(busKey{}).(*Bus)
	return b
}
