// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package iface

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Harlan22/kilu/internal/argtree"
	"github.com/Harlan22/kilu/internal/i18n"
	"github.com/Harlan22/kilu/internal/security"
	"github.com/Harlan22/kilu/internal/signals"
)

type fakeExecutor struct {
	mu    sync.Mutex
	calls []*argtree.Invocation
	fn    func(ctx context.Context, inv *argtree.Invocation) (any, error)
}

func (f *fakeExecutor) Process(ctx context.Context, inv *argtree.Invocation, _ time.Duration) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.mu.Unlock()
	return f.fn(ctx, inv)
}

func (f *fakeExecutor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePrompter struct {
	answers  []string
	prompts  []string
	secret   []bool
	restored bool
}

func (p *fakePrompter) next(prompt string, secret bool) (string, error) {
	p.prompts = append(p.prompts, prompt)
	p.secret = append(p.secret, secret)
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *fakePrompter) ReadLine(prompt string) (string, error) { return p.next(prompt, false) }
func (p *fakePrompter) ReadSecret(prompt string) (string, error) { return p.next(prompt, true) }
func (p *fakePrompter) Restore() { p.restored = true }

func testTree(t *testing.T) *argtree.Tree {
	t.Helper()
	tree := argtree.New("kilu", "")
	tree.SetOutput(io.Discard)
	cat, err := tree.AddCategory("demo", "")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	run, err := tree.AddAction(cat, "run", "demo.run", "")
	if err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if err := tree.AddArgument(run, argtree.ArgSpec{Name: "name", Nargs: "?"}); err != nil {
		t.Fatalf("AddArgument: %v", err)
	}
	return tree
}

func newTestInterface(t *testing.T, terminal bool, exec *fakeExecutor, p *fakePrompter) (*Interface, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	i := New(Options{
		Tree:       testTree(t),
		Executor:   exec,
		Prompter:   p,
		Out:        &out,
		Lang:       "en",
		IsTerminal: func(io.Writer) bool { return terminal },
	})
	return i, &out
}

func returning(v any) *fakeExecutor {
	return &fakeExecutor{fn: func(context.Context, *argtree.Invocation) (any, error) { return v, nil }}
}

func mustRun(t *testing.T, i *Interface, mode string, argv ...string) {
	t.Helper()
	if err := i.Run(context.Background(), argv, mode); err != nil {
		t.Fatalf("Run(%v, %q): %v", argv, mode, err)
	}
}

func TestRunRejectsUnknownOutputBeforeParsing(t *testing.T) {
	exec := returning("x")
	i, out := newTestInterface(t, false, exec, &fakePrompter{})

	err := i.Run(context.Background(), []string{"no", "such", "command"}, "xml")
	if !errors.Is(err, ErrInvalidUsage) || errors.Is(err, argtree.ErrArgument) {
		t.Fatalf("expected ErrInvalidUsage only, got %v", err)
	}
	if err.Error() != i18n.T("invalid_usage") {
		t.Fatalf("unexpected message %q", err)
	}
	if exec.count() != 0 || out.Len() != 0 {
		t.Fatalf("nothing must run or print: calls=%d out=%q", exec.count(), out)
	}
}

func TestRunOutputModes(t *testing.T) {
	result := map[string]any{"result": map[string]any{"a": 1, "b": 2}}
	cases := []struct {
		mode string
		want string
	}{
		{OutputJSON, `{"result":{"a":1,"b":2}}` + "\n"},
		{OutputPlain, "#a\n1\n#b\n2\n"},
		{OutputPretty, "result:\n  a: 1\n  b: 2\n"},
	}
	for _, c := range cases {
		i, out := newTestInterface(t, false, returning(result), &fakePrompter{})
		mustRun(t, i, c.mode, "demo", "run")
		if out.String() != c.want {
			t.Errorf("mode %q: output %q, want %q", c.mode, out, c.want)
		}
	}

	i, out := newTestInterface(t, false, returning("plain text"), &fakePrompter{})
	mustRun(t, i, "", "demo", "run")
	if out.String() != "plain text\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunPrintsNothingForEmptyResults(t *testing.T) {
	for _, res := range []any{nil, "", map[string]any{}} {
		i, out := newTestInterface(t, false, returning(res), &fakePrompter{})
		mustRun(t, i, OutputJSON, "demo", "run")
		if out.Len() != 0 {
			t.Errorf("result %#v printed %q", res, out)
		}
	}
}

func TestRunParseErrorsAndHelp(t *testing.T) {
	exec := returning("x")
	i, _ := newTestInterface(t, false, exec, &fakePrompter{})

	if err := i.Run(context.Background(), []string{"demo", "run", "a", "b"}, ""); !errors.Is(err, argtree.ErrArgument) {
		t.Fatalf("expected ErrArgument, got %v", err)
	}
	mustRun(t, i, "", "demo", "--help")
	if exec.count() != 0 {
		t.Fatalf("executor called %d times", exec.count())
	}
}

func TestRunPassesBusToExecutor(t *testing.T) {
	exec := &fakeExecutor{fn: func(ctx context.Context, inv *argtree.Invocation) (any, error) {
		return nil, signals.RaiseDisplay(ctx, inv.Args.String("name"), signals.StyleSuccess)
	}}
	i, out := newTestInterface(t, false, exec, &fakePrompter{})
	mustRun(t, i, "", "demo", "run", "done")
	if want := i18n.T("success") + " done\n"; out.String() != want {
		t.Fatalf("output %q, want %q", out, want)
	}
}

func TestRunInterrupted(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	exec := &fakeExecutor{fn: func(context.Context, *argtree.Invocation) (any, error) {
		<-release
		return "late", nil
	}}
	p := &fakePrompter{}
	i, out := newTestInterface(t, true, exec, p)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for exec.count() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	err := i.Run(ctx, []string{"demo", "run"}, "")
	if !errors.Is(err, ErrOperationInterrupted) {
		t.Fatalf("expected ErrOperationInterrupted, got %v", err)
	}
	if !p.restored {
		t.Fatal("the terminal was not restored")
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunEOFIsInterrupt(t *testing.T) {
	exec := &fakeExecutor{fn: func(ctx context.Context, _ *argtree.Invocation) (any, error) {
		_, err := signals.RaisePrompt(ctx, "Name", false, false, "")
		return nil, err
	}}
	i, _ := newTestInterface(t, true, exec, &fakePrompter{})
	if err := i.Run(context.Background(), []string{"demo", "run"}, ""); !errors.Is(err, ErrOperationInterrupted) {
		t.Fatalf("expected ErrOperationInterrupted, got %v", err)
	}
}

func TestInteractiveHandlersOnlyOnTerminal(t *testing.T) {
	i, _ := newTestInterface(t, false, returning(nil), &fakePrompter{})
	bus := i.Bus()
	if !bus.Handled(signals.Display) || bus.Handled(signals.Prompt) || bus.Handled(signals.Authenticate) {
		t.Fatal("only display may be handled without a terminal")
	}

	i, _ = newTestInterface(t, true, returning(nil), &fakePrompter{})
	if !i.Bus().Handled(signals.Prompt) || !i.Bus().Handled(signals.Authenticate) {
		t.Fatal("prompt and authenticate must be handled on a terminal")
	}
}

func TestPromptConfirmation(t *testing.T) {
	p := &fakePrompter{answers: []string{"secret", "secret"}}
	i, _ := newTestInterface(t, true, returning(nil), p)
	ctx := signals.WithBus(context.Background(), i.Bus())

	v, err := signals.RaisePrompt(ctx, "New password", true, true, "")
	if err != nil {
		t.Fatalf("RaisePrompt: %v", err)
	}
	if v != "secret" {
		t.Fatalf("unexpected answer %q", v)
	}
	if len(p.prompts) != 2 || !strings.Contains(p.prompts[1], i18n.T("confirm", "new password")) {
		t.Fatalf("unexpected prompts %q", p.prompts)
	}
	if !reflect.DeepEqual(p.secret, []bool{true, true}) {
		t.Fatalf("both prompts must be secret: %v", p.secret)
	}

	p.answers = []string{"one", "two"}
	_, err = signals.RaisePrompt(ctx, "New password", true, true, "")
	if !errors.Is(err, signals.ErrConfirmationMismatch) {
		t.Fatalf("expected ErrConfirmationMismatch, got %v", err)
	}
	if err.Error() != i18n.T("values_mismatch") {
		t.Fatalf("unexpected message %q", err)
	}
}

type recordingAuth struct{ got string }

func (a *recordingAuth) Authenticate(pw security.Secret) error {
	a.got = string(pw.Bytes())
	if a.got != "letmein" {
		return errors.New("denied")
	}
	return nil
}

func TestAuthenticateHandler(t *testing.T) {
	p := &fakePrompter{answers: []string{"letmein", "nope"}}
	i, _ := newTestInterface(t, true, returning(nil), p)
	ctx := signals.WithBus(context.Background(), i.Bus())

	auth := &recordingAuth{}
	if _, err := signals.RaiseAuthenticate(ctx, auth, ""); err != nil {
		t.Fatalf("RaiseAuthenticate: %v", err)
	}
	if auth.got != "letmein" {
		t.Fatalf("authenticator got %q", auth.got)
	}
	if !strings.Contains(p.prompts[0], i18n.T("password")) || !p.secret[0] {
		t.Fatalf("unexpected password prompt %q (secret=%v)", p.prompts[0], p.secret[0])
	}

	_, err := signals.RaiseAuthenticate(ctx, auth, "")
	if err == nil || err.Error() != "denied" {
		t.Fatalf("expected the authenticator's error, got %v", err)
	}
}

func TestDisplayStyles(t *testing.T) {
	i, out := newTestInterface(t, false, returning(nil), &fakePrompter{})
	ctx := signals.WithBus(context.Background(), i.Bus())

	for _, d := range []struct{ msg, style string }{
		{"a", signals.StyleWarning},
		{"b", signals.StyleError},
		{"c", ""},
	} {
		if err := signals.RaiseDisplay(ctx, d.msg, d.style); err != nil {
			t.Fatalf("RaiseDisplay(%s): %v", d.msg, err)
		}
	}
	want := i18n.T("warning") + " a\n" + i18n.T("error") + " b\nc\n"
	if out.String() != want {
		t.Fatalf("output %q, want %q", out, want)
	}
}

func TestLowerFirst(t *testing.T) {
	for in, want := range map[string]string{"New password": "new password", "Élan": "élan", "": ""} {
		if got := lowerFirst(in); got != want {
			t.Errorf("lowerFirst(%q) = %q, want %q", in, got, want)
		}
	}
}
