// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package iface is the command-line interface of kilu. It owns the
// terminal: it parses argument vectors with the argument tree, hands the
// invocation to the executor, answers the signals raised meanwhile and
// prints the result.
package iface

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/Harlan22/kilu/internal/argtree"
	"github.com/Harlan22/kilu/internal/i18n"
	"github.com/Harlan22/kilu/internal/logging"
	"github.com/Harlan22/kilu/internal/render"
	"github.com/Harlan22/kilu/internal/signals"
	"github.com/Harlan22/kilu/internal/termio"
)

var (
	// ErrInvalidUsage is returned for an unsupported output mode.
	ErrInvalidUsage = errors.New("invalid usage")

	// ErrOperationInterrupted is returned when the user interrupts a run
	// or closes its input.
	ErrOperationInterrupted = errors.New("operation interrupted")
)

// DefaultTimeout bounds the wait for the executor's lock.
const DefaultTimeout = 5 * time.Second

// Output modes accepted by Run.
const (
	OutputPretty = ""
	OutputJSON   = "json"
	OutputPlain  = "plain"
)

// Error carries a translated message for one of the sentinel errors.
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

func newError(kind error, messageID string) *Error {
	return &Error{Err: kind, Message: i18n.T(messageID)}
}

// Executor runs a parsed invocation.
type Executor interface {
	Process(ctx context.Context, inv *argtree.Invocation, timeout time.Duration) (any, error)
}

// Prompter reads answers from the user.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	ReadSecret(prompt string) (string, error)
	Restore()
}

// Options configures an Interface.
type Options struct {
	Tree     *argtree.Tree
	Executor Executor
	// Bus defaults to a new bus.
	Bus *signals.Bus
	// Prompter defaults to standard input.
	Prompter Prompter
	// Out defaults to standard output.
	Out io.Writer
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// Lang overrides the detected locale.
	Lang string
	// IsTerminal defaults to a check of the file descriptor behind the
	// writer.
	IsTerminal func(io.Writer) bool
}

// Interface dispatches argument vectors and renders their results.
type Interface struct {
	tree     *argtree.Tree
	executor Executor
	bus      *signals.Bus
	prompter Prompter
	out      io.Writer
	timeout  time.Duration
	color    bool
}

// New sets the user's language and connects the signal handlers. The
// interactive handlers are only connected when the output is a terminal.
func New(opts Options) *Interface {
	if opts.Bus == nil {
		opts.Bus = signals.New()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Prompter == nil {
		opts.Prompter = termio.NewStdPrompter()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.IsTerminal == nil {
		opts.IsTerminal = func(w io.Writer) bool { return termio.IsTerminal(w) }
	}

	lang := opts.Lang
	if lang == "" {
		lang = i18n.DetectLocale()
	}
	i18n.SetLang(lang)

	i := &Interface{
		tree:     opts.Tree,
		executor: opts.Executor,
		bus:      opts.Bus,
		prompter: opts.Prompter,
		out:      opts.Out,
		timeout:  opts.Timeout,
		color:    opts.IsTerminal(opts.Out),
	}

	i.bus.SetHandler(signals.Display, i.handleDisplay)
	if i.color {
		i.bus.SetHandler(signals.Authenticate, i.handleAuthenticate)
		i.bus.SetHandler(signals.Prompt, i.handlePrompt)
	}
	return i
}

// Bus returns the signal bus the interface answers.
func (i *Interface) Bus() *signals.Bus { return i.bus }

// Run processes the action matching argv and prints its result in the
// outputAs mode: "json", "plain", or "" for the pretty layout.
func (i *Interface) Run(ctx context.Context, argv []string, outputAs string) error {
	switch outputAs {
	case OutputPretty, OutputJSON, OutputPlain:
	default:
		return newError(ErrInvalidUsage, "invalid_usage")
	}

	inv, err := i.tree.Parse(argv)
	if errors.Is(err, argtree.ErrHelpRequested) {
		return nil
	}
	if err != nil {
		return err
	}

	res, err := i.dispatch(ctx, inv)
	if err != nil {
		return err
	}
	if render.IsEmpty(res) {
		return nil
	}

	switch outputAs {
	case OutputJSON:
		return render.JSON(i.out, res)
	case OutputPlain:
		return render.Plain(i.out, res)
	}
	return render.Pretty(i.out, res, i.color)
}

type outcome struct {
	res any
	err error
}

// dispatch applies the action's callbacks and runs it on a worker
// goroutine, so that an interrupt is noticed while the action waits.
func (i *Interface) dispatch(ctx context.Context, inv *argtree.Invocation) (any, error) {
	node, ok := i.tree.Lookup(inv.TID)
	if !ok {
		return nil, newError(ErrInvalidUsage, "invalid_usage")
	}
	runCtx := signals.WithBus(ctx, i.bus)

	done := make(chan outcome, 1)
	go func() {
		if err := node.Callbacks().Apply(runCtx, inv); err != nil {
			done <- outcome{err: err}
			return
		}
		res, err := i.executor.Process(runCtx, inv, i.timeout)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			if errors.Is(o.err, io.EOF) || errors.Is(o.err, context.Canceled) {
				return nil, newError(ErrOperationInterrupted, "operation_interrupted")
			}
			return nil, o.err
		}
		return o.res, nil
	case <-ctx.Done():
		i.prompter.Restore()
		logging.Debugf("action '%s' interrupted: %v", inv.TID, ctx.Err())
		return nil, newError(ErrOperationInterrupted, "operation_interrupted")
	}
}
