// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package executor runs the business logic behind an action. Handlers are
// registered by invocation identifier and run one at a time across
// processes, serialized by an exclusive lock file.
package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Harlan22/kilu/internal/argtree"
	"github.com/Harlan22/kilu/internal/i18n"
	"github.com/Harlan22/kilu/internal/logging"
	"github.com/Harlan22/kilu/util/mapst"
)

var (
	// ErrLockTimeout is returned when the lock could not be taken before
	// the timeout elapsed.
	ErrLockTimeout = errors.New("another instance is already running")

	// ErrUnknownAction is returned for an invocation identifier without a
	// handler.
	ErrUnknownAction = errors.New("unknown action")

	// ErrDuplicateHandler is returned when a TID is registered twice.
	ErrDuplicateHandler = errors.New("handler already registered")

	// ErrActionPanicked is returned when a handler panics. The panic value
	// and stack go to the diagnostic log.
	ErrActionPanicked = errors.New("action panicked")
)

// ActionError reports an action that could not run to completion. Message
// is translated for the user.
type ActionError struct {
	TID     string
	Err     error
	Message string
}

func (e *ActionError) Error() string { return e.Message }
func (e *ActionError) Unwrap() error { return e.Err }

// DefaultPollInterval is how often a busy lock is retried.
const DefaultPollInterval = 500 * time.Millisecond

// Handler runs one action. Signals can be raised through the bus carried
// by ctx.
type Handler func(ctx context.Context, args argtree.Namespace) (any, error)

// Registry maps invocation identifiers to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register installs h for tid.
func (r *Registry) Register(tid string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[tid]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, tid)
	}
	r.handlers[tid] = h
	return nil
}

// Lookup returns the handler for tid.
func (r *Registry) Lookup(tid string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[tid]
	return h, ok
}

// TIDs returns the registered identifiers in sorted order.
func (r *Registry) TIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return mapst.SortedKeys(r.handlers)
}

// Options configures an Executor.
type Options struct {
	// LockPath is the lock file. Empty disables locking.
	LockPath string
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
}

// Executor dispatches invocations to registered handlers.
type Executor struct {
	registry *Registry
	opts     Options
}

// New returns an executor over r.
func New(r *Registry, opts Options) *Executor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Executor{registry: r, opts: opts}
}

// Process runs the handler of inv. timeout bounds the wait for the lock;
// zero or less waits until ctx is done.
func (e *Executor) Process(ctx context.Context, inv *argtree.Invocation, timeout time.Duration) (any, error) {
	h, ok := e.registry.Lookup(inv.TID)
	if !ok {
		return nil, &ActionError{TID: inv.TID, Err: ErrUnknownAction, Message: i18n.T("unknown_action", inv.TID)}
	}

	if e.opts.LockPath != "" {
		lock, err := acquireLock(ctx, e.opts.LockPath, timeout, e.opts.PollInterval)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logging.Warnf("unable to release lock %s: %v", e.opts.LockPath, err)
			}
		}()
	}

	logging.Debugf("processing action '%s'", inv.TID)
	args := inv.Args
	if args == nil {
		args = argtree.Namespace{}
	}
	res, err := run(ctx, inv.TID, h, args)
	if err != nil {
		logging.Debugf("action '%s' failed: %v", inv.TID, err)
		return nil, err
	}
	return res, nil
}

func run(ctx context.Context, tid string, h Handler, args argtree.Namespace) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Debugf("action '%s' panicked: %v\n%s", tid, r, debug.Stack())
			res, err = nil, &ActionError{TID: tid, Err: ErrActionPanicked, Message: i18n.T("error_see_log")}
		}
	}()
	return h(ctx, args)
}
