// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package actionsmap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/Harlan22/kilu/internal/argtree"
	"github.com/Harlan22/kilu/internal/i18n"
	"github.com/Harlan22/kilu/internal/signals"
)

func identity(id string, _ ...any) string { return id }

const yamlMap = `
_global:
  name: demo
  help: demo help
  arguments:
    - name: --verbose
      action: store_true
categories:
  host:
    category_help: hosts
    arguments:
      - name: --zone
        default: main
    actions:
      add:
        action_help: add a host
        arguments:
          - name: name
          - name: -p
            full: --port
            type: int
            default: 22
`

const tomlMap = `
[_global]
name = "demo"
help = "demo help"

[[_global.arguments]]
name = "--verbose"
action = "store_true"

[categories.host]
category_help = "hosts"

[[categories.host.arguments]]
name = "--zone"
default = "main"

[categories.host.actions.add]
action_help = "add a host"

[[categories.host.actions.add.arguments]]
name = "name"

[[categories.host.actions.add.arguments]]
name = "-p"
full = "--port"
type = "int"
default = 22
`

const jsoncMap = `{
  // same map as JSON with comments
  "_global": {
    "name": "demo",
    "help": "demo help",
    "arguments": [{"name": "--verbose", "action": "store_true"}],
  },
  "categories": {
    "host": {
      "category_help": "hosts",
      "arguments": [{"name": "--zone", "default": "main"}],
      "actions": {
        "add": {
          "action_help": "add a host",
          "arguments": [
            {"name": "name"},
            {"name": "-p", "full": "--port", "type": "int", "default": 22},
          ],
        },
      },
    },
  },
}`

func buildTree(t *testing.T, doc *Document, err error) *argtree.Tree {
	t.Helper()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tree, err := doc.Build(identity)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func TestFormatsAreEquivalent(t *testing.T) {
	for _, c := range []struct {
		file, body string
	}{
		{"map.yml", yamlMap},
		{"map.toml", tomlMap},
		{"map.jsonc", jsoncMap},
	} {
		t.Run(c.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), c.file)
			if err := os.WriteFile(path, []byte(c.body), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
			doc, err := Load(path)
			tree := buildTree(t, doc, err)

			inv, err := tree.Parse([]string{"host", "add", "box", "--verbose"})
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if inv.TID != "host.add" {
				t.Fatalf("unexpected tid %q", inv.TID)
			}
			if want := (argtree.Namespace{"name": "box", "port": 22, "zone": "main"}); !reflect.DeepEqual(inv.Args, want) {
				t.Fatalf("args = %#v, want %#v", inv.Args, want)
			}
			if inv.Globals["verbose"] != true {
				t.Fatalf("expected verbose global, got %#v", inv.Globals)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("map.ini"); err == nil {
		t.Error("expected an error for an unknown extension")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := Parse([]byte("_global: {name: x}\ncategories: {}\n"), FormatYAML); err == nil || !strings.Contains(err.Error(), "no categories") {
		t.Errorf("expected a 'no categories' error, got %v", err)
	}
	if _, err := Parse([]byte("categories: {a: {actions: {b: {}}}}\n"), FormatYAML); err == nil || !strings.Contains(err.Error(), "_global.name") {
		t.Errorf("expected a missing _global.name error, got %v", err)
	}
}

func TestBuildRejectsConflicts(t *testing.T) {
	doc, err := Parse([]byte(`
_global:
  name: demo
  arguments:
    - name: --verbose
      action: store_true
categories:
  host:
    arguments:
      - name: --verbose
        action: store_true
    actions:
      add: {}
`), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := doc.Build(identity); !errors.Is(err, argtree.ErrOptionConflict) {
		t.Fatalf("expected ErrOptionConflict, got %v", err)
	}
}

func TestDefaultMap(t *testing.T) {
	doc, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	tree, err := doc.Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tids := tree.TIDs()
	sort.Strings(tids)
	want := []string{
		"auth.check", "auth.hash",
		"system.config", "system.greet", "system.info", "system.locale",
		"text.search",
	}
	if !reflect.DeepEqual(tids, want) {
		t.Fatalf("TIDs = %v, want %v", tids, want)
	}

	i18n.Init("en")
	for _, key := range doc.HelpKeys() {
		if !i18n.Has(key) {
			t.Errorf("missing message %q", key)
		}
	}
}

func TestDefaultMapHelp(t *testing.T) {
	i18n.Init("en")
	doc, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	tree, err := doc.Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var out bytes.Buffer
	tree.SetOutput(&out)
	if _, err := tree.Parse([]string{"text", "search", "--help"}); !errors.Is(err, argtree.ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}
	for _, want := range []string{i18n.T("text.search.help"), "--output-as"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("help output misses %q:\n%s", want, out.String())
		}
	}
}

func applyWith(t *testing.T, ctx context.Context, tree *argtree.Tree, argv ...string) (*argtree.Invocation, error) {
	t.Helper()
	inv, err := tree.Parse(argv)
	if err != nil {
		t.Fatalf("Parse(%v): %v", argv, err)
	}
	node, ok := tree.Lookup(inv.TID)
	if !ok {
		t.Fatalf("no node for %q", inv.TID)
	}
	return inv, node.Callbacks().Apply(ctx, inv)
}

func parseAndApply(t *testing.T, ctx context.Context, argv ...string) (*argtree.Invocation, error) {
	t.Helper()
	doc, err := Default()
	return applyWith(t, ctx, buildTree(t, doc, err), argv...)
}

func TestAskExtra(t *testing.T) {
	bus := signals.New()
	var asked signals.PromptRequest
	bus.SetHandler(signals.Prompt, func(_ context.Context, p any) (any, error) {
		asked = p.(signals.PromptRequest)
		return "Ada", nil
	})
	ctx := signals.WithBus(context.Background(), bus)

	inv, err := parseAndApply(t, ctx, "system", "greet")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if inv.Args["name"] != "Ada" {
		t.Fatalf("expected the prompted name, got %#v", inv.Args["name"])
	}
	if asked.Message != "system.greet.ask_name" || asked.Secret {
		t.Fatalf("unexpected prompt %+v", asked)
	}

	// A value given on the command line is not asked for.
	asked = signals.PromptRequest{}
	inv, err = parseAndApply(t, ctx, "system", "greet", "Grace")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if inv.Args["name"] != "Grace" || asked.Message != "" {
		t.Fatalf("unexpected name %#v after prompt %+v", inv.Args["name"], asked)
	}
}

func TestAskWithoutInteractionFallsBackToRequired(t *testing.T) {
	_, err := parseAndApply(t, signals.WithBus(context.Background(), signals.New()), "system", "greet")
	var ae *argtree.ArgumentError
	if !errors.As(err, &ae) {
		t.Fatalf("expected an ArgumentError, got %v", err)
	}
	if ae.Arg != "name" || ae.Reason != "argument_required" {
		t.Fatalf("unexpected error %+v", ae)
	}
}

func TestPasswordExtra(t *testing.T) {
	bus := signals.New()
	answer := "pw"
	var req signals.PromptRequest
	bus.SetHandler(signals.Prompt, func(_ context.Context, p any) (any, error) {
		req = p.(signals.PromptRequest)
		return answer, nil
	})
	ctx := signals.WithBus(context.Background(), bus)

	_, err := parseAndApply(t, ctx, "auth", "hash")
	if !errors.Is(err, argtree.ErrArgument) || !strings.Contains(err.Error(), "pattern_password") {
		t.Fatalf("expected a pattern_password argument error, got %v", err)
	}
	if !req.Secret || !req.Confirm {
		t.Fatalf("password prompts must be secret and confirmed: %+v", req)
	}

	answer = "long enough"
	inv, err := parseAndApply(t, ctx, "auth", "hash")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if inv.Args["password"] != "long enough" || inv.Args["cost"] != 10 {
		t.Fatalf("unexpected args %#v", inv.Args)
	}

	bus.SetHandler(signals.Prompt, func(context.Context, any) (any, error) {
		return nil, signals.ErrConfirmationMismatch
	})
	if _, err := parseAndApply(t, ctx, "auth", "hash"); !errors.Is(err, signals.ErrConfirmationMismatch) {
		t.Fatalf("expected ErrConfirmationMismatch, got %v", err)
	}
}

func TestPatternExtraSupportsLookarounds(t *testing.T) {
	doc, err := Parse([]byte(`
_global:
  name: demo
categories:
  user:
    actions:
      add:
        arguments:
          - name: login
            extra:
              pattern: ['^(?!root$)[a-z]+$', pattern_login]
`), FormatYAML)
	tree := buildTree(t, doc, err)
	ctx := signals.WithBus(context.Background(), signals.New())

	if _, err := applyWith(t, ctx, tree, "user", "add", "ada"); err != nil {
		t.Fatalf("Apply(ada): %v", err)
	}
	for _, login := range []string{"root", "Ada"} {
		_, err := applyWith(t, ctx, tree, "user", "add", login)
		if !errors.Is(err, argtree.ErrArgument) || !strings.Contains(err.Error(), "pattern_login") {
			t.Errorf("Apply(%s): expected a pattern_login error, got %v", login, err)
		}
	}
}
