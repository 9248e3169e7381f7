// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package actionsmap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/Harlan22/kilu/internal/argtree"
	"github.com/Harlan22/kilu/internal/i18n"
	"github.com/Harlan22/kilu/internal/logging"
	"github.com/Harlan22/kilu/internal/signals"
	"github.com/Harlan22/kilu/internal/text"
	"github.com/Harlan22/kilu/util/mapst"
)

// Translator resolves a message ID.
type Translator func(id string, args ...any) string

// Build turns the document into an argument tree. Help message IDs are
// resolved with translate; nil uses the i18n catalog.
func (d *Document) Build(translate Translator) (*argtree.Tree, error) {
	if translate == nil {
		translate = i18n.T
	}
	help := func(id string) string {
		if id == "" {
			return ""
		}
		return translate(id)
	}

	tree := argtree.New(d.Global.Name, help(d.Global.Help))
	for _, a := range d.Global.Arguments {
		if err := tree.AddGlobalOption(a.spec(help)); err != nil {
			return nil, fmt.Errorf("global option %s: %w", a.Name, err)
		}
	}

	for _, cname := range mapst.SortedKeys(d.Categories) {
		c := d.Categories[cname]
		cat, err := tree.AddCategory(cname, help(c.Help))
		if err != nil {
			return nil, err
		}
		for _, a := range c.Arguments {
			if err := tree.AddArgument(cat, a.spec(help)); err != nil {
				return nil, fmt.Errorf("category %s: %w", cname, err)
			}
		}
		for _, aname := range mapst.SortedKeys(c.Actions) {
			act := c.Actions[aname]
			tid := cname + "." + aname
			node, err := tree.AddAction(cat, aname, tid, help(act.Help))
			if err != nil {
				return nil, err
			}
			for _, a := range act.Arguments {
				if err := tree.AddArgument(node, a.spec(help)); err != nil {
					return nil, fmt.Errorf("action %s: %w", tid, err)
				}
			}
			for _, a := range append(append([]Argument{}, c.Arguments...), act.Arguments...) {
				if err := registerExtras(tree, node, a, translate); err != nil {
					return nil, fmt.Errorf("action %s: %w", tid, err)
				}
			}
		}
	}
	logging.Debugf("actions map '%s' built with %d actions", d.Global.Name, len(tree.TIDs()))
	return tree, nil
}

func (a Argument) spec(help func(string) string) argtree.ArgSpec {
	return argtree.ArgSpec{
		Name:     a.Name,
		Full:     a.Full,
		Help:     help(a.Help),
		Type:     a.Type,
		Nargs:    a.Nargs,
		Default:  a.Default,
		Required: a.Required,
		Choices:  a.Choices,
		Action:   a.Action,
		Metavar:  a.Metavar,
		Dest:     a.Dest,
	}
}

// registerExtras queues the callbacks implementing an argument's extras.
// Prompts run first so that the required and pattern checks see the
// answers.
func registerExtras(tree *argtree.Tree, node *argtree.Node, a Argument, translate Translator) error {
	if a.Extra == nil {
		return nil
	}
	dest := argtree.ArgSpec{Name: a.Name, Full: a.Full, Dest: a.Dest}.DestName()
	x := a.Extra

	if x.Ask != "" {
		if err := tree.AddCallback(node, dest, argtree.PhasePre, askCallback(translate(x.Ask), false)); err != nil {
			return err
		}
	}
	if x.Password != "" {
		if err := tree.AddCallback(node, dest, argtree.PhasePre, askCallback(translate(x.Password), true)); err != nil {
			return err
		}
	}
	if x.Required {
		if err := tree.AddCallback(node, dest, argtree.PhasePre, requiredCallback(translate)); err != nil {
			return err
		}
	}
	if len(x.Pattern) == 2 {
		re, err := text.Compile(x.Pattern[0], regexp2.None)
		if err != nil {
			return fmt.Errorf("%s: invalid pattern: %w", a.Name, err)
		}
		if err := tree.AddCallback(node, dest, argtree.PhasePost, patternCallback(re, x.Pattern[1], translate)); err != nil {
			return err
		}
	}
	return nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	}
	return false
}

// askCallback prompts for a missing value. Without an interactive
// interface the value stays absent.
func askCallback(message string, secret bool) argtree.Transform {
	return func(ctx context.Context, v any) (any, error) {
		if !isEmpty(v) {
			return v, nil
		}
		answer, err := signals.RaisePrompt(ctx, message, secret, secret, "")
		if errors.Is(err, signals.ErrUnhandledSignal) {
			return v, nil
		}
		if err != nil {
			return nil, err
		}
		return answer, nil
	}
}

func requiredCallback(translate Translator) argtree.Transform {
	return func(_ context.Context, v any) (any, error) {
		if isEmpty(v) {
			return nil, errors.New(translate("argument_required"))
		}
		return v, nil
	}
}

// patternCallback rejects values with no match of re anywhere in them.
func patternCallback(re *regexp2.Regexp, message string, translate Translator) argtree.Transform {
	return func(_ context.Context, v any) (any, error) {
		values := []any{v}
		if list, ok := v.([]any); ok {
			values = list
		}
		for _, item := range values {
			ok, err := re.MatchString(fmt.Sprint(item))
			if err != nil {
				return nil, fmt.Errorf("pattern: %w", err)
			}
			if !ok {
				return nil, errors.New(translate(message))
			}
		}
		return v, nil
	}
}
