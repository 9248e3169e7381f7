// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package argtree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Harlan22/kilu/internal/logging"
)

// match records which action the command parser dispatched to.
type match struct {
	node *Node
	cmd  *cobra.Command
	args []string
}

// Parse turns argv (without the program name) into an Invocation.
//
// A fresh command parser is derived from the immutable node graph on every
// call, so a tree can parse any number of vectors. Help and completion
// requests are served directly and reported as ErrHelpRequested.
func (t *Tree) Parse(argv []string) (*Invocation, error) {
	if argv == nil {
		argv = []string{}
	}

	var hit *match
	root := t.command(t.root, &hit)
	root.SetArgs(argv)
	root.SetOut(t.out)
	root.SetErr(t.out)

	if _, err := root.ExecuteC(); err != nil {
		return nil, t.fail(argv, err)
	}
	if hit == nil {
		return nil, ErrHelpRequested
	}
	inv, err := t.resolve(hit)
	if err != nil {
		return nil, t.fail(argv, err)
	}
	return inv, nil
}

func (t *Tree) fail(argv []string, err error) error {
	logging.Debugf("unable to parse arguments '%s': %v", strings.Join(argv, " "), err)
	var ae *ArgumentError
	if errors.As(err, &ae) {
		ae.Argv = argv
		return ae
	}
	return &ArgumentError{Reason: err.Error(), Argv: argv, Err: err}
}

func (t *Tree) command(n *Node, hit **match) *cobra.Command {
	cmd := &cobra.Command{
		Use:   n.usage(),
		Short: n.help,
	}

	switch n.kind {
	case KindRoot:
		cmd.Long = n.help
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		cmd.CompletionOptions.HiddenDefaultCmd = true
		for _, a := range t.globals {
			a.register(cmd.PersistentFlags())
		}
		cmd.RunE = func(c *cobra.Command, args []string) error {
			return argErrorf("", "a category is required (choose from %s)", childNames(n))
		}
	case KindCategory:
		for _, a := range n.args {
			a.register(cmd.PersistentFlags())
		}
		cmd.RunE = func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				return argErrorf("", "an action is required (choose from %s)", childNames(n))
			}
			reason := fmt.Sprintf("invalid action %q (choose from %s)", args[0], childNames(n))
			if suggestions := c.SuggestionsFor(args[0]); len(suggestions) > 0 {
				reason += fmt.Sprintf(", did you mean %q?", suggestions[0])
			}
			return argErrorf("", "%s", reason)
		}
	case KindAction:
		cmd.Args = cobra.ArbitraryArgs
		for _, a := range n.args {
			if !a.positional {
				a.register(cmd.Flags())
			}
		}
		cmd.RunE = func(c *cobra.Command, args []string) error {
			*hit = &match{node: n, cmd: c, args: args}
			return nil
		}
	}

	for _, child := range n.children {
		cmd.AddCommand(t.command(child, hit))
	}
	return cmd
}

func (n *Node) usage() string {
	parts := []string{n.name}
	switch n.kind {
	case KindRoot:
		parts = append(parts, "<category>")
	case KindCategory:
		parts = append(parts, "<action>")
	}
	for _, a := range n.args {
		if !a.positional {
			continue
		}
		name := a.spec.Metavar
		if name == "" {
			name = a.dest
		}
		switch {
		case a.max < 0 && a.min == 0:
			parts = append(parts, "["+name+" ...]")
		case a.max < 0:
			parts = append(parts, name+" ["+name+" ...]")
		case a.min == 0:
			parts = append(parts, "["+name+"]")
		default:
			for i := 0; i < a.min; i++ {
				parts = append(parts, name)
			}
		}
	}
	return strings.Join(parts, " ")
}

func childNames(n *Node) string {
	names := make([]string, 0, len(n.children))
	for _, c := range n.children {
		names = append(names, c.name)
	}
	return strings.Join(names, ", ")
}

// register declares the option on fs.
func (a *argument) register(fs *pflag.FlagSet) {
	def, _ := a.defaultValue()
	usage := a.spec.Help
	switch a.spec.Action {
	case ActionStoreTrue:
		fs.BoolP(a.long, a.short, false, usage)
	case ActionStoreFalse:
		fs.BoolP(a.long, a.short, true, usage)
		fs.Lookup(a.long).NoOptDefVal = "false"
	case ActionCount:
		fs.CountP(a.long, a.short, usage)
	case ActionAppend:
		fs.StringArrayP(a.long, a.short, nil, usage)
	default:
		if a.list {
			fs.StringSliceP(a.long, a.short, nil, usage)
			return
		}
		switch a.spec.Type {
		case TypeInt:
			d, _ := def.(int)
			fs.IntP(a.long, a.short, d, usage)
		case TypeFloat:
			d, _ := def.(float64)
			fs.Float64P(a.long, a.short, d, usage)
		default:
			d, _ := def.(string)
			fs.StringP(a.long, a.short, d, usage)
		}
	}
}

// collect reads the option's value after parsing.
func (a *argument) collect(fs *pflag.FlagSet) (any, error) {
	if !fs.Changed(a.long) {
		if a.spec.Required {
			return nil, argErrorf(a.display(), "the option is required")
		}
		return a.defaultValue()
	}
	switch a.spec.Action {
	case ActionStoreTrue, ActionStoreFalse:
		return fs.GetBool(a.long)
	case ActionCount:
		return fs.GetCount(a.long)
	case ActionAppend:
		raw, err := fs.GetStringArray(a.long)
		if err != nil {
			return nil, err
		}
		return a.convertAll(raw)
	}
	if a.list {
		raw, err := fs.GetStringSlice(a.long)
		if err != nil {
			return nil, err
		}
		return a.convertAll(raw)
	}
	switch a.spec.Type {
	case TypeInt:
		return fs.GetInt(a.long)
	case TypeFloat:
		return fs.GetFloat64(a.long)
	default:
		return fs.GetString(a.long)
	}
}

func (a *argument) convertAll(raw []string) ([]any, error) {
	out := make([]any, 0, len(raw))
	for _, r := range raw {
		v, err := convert(r, a.spec.Type)
		if err != nil {
			return nil, argErrorf(a.display(), "%v", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *Tree) resolve(m *match) (*Invocation, error) {
	inv := &Invocation{TID: m.node.tid, Args: Namespace{}, Globals: Namespace{}}
	fs := m.cmd.Flags()

	for _, a := range t.globals {
		v, err := a.collect(fs)
		if err != nil {
			return nil, err
		}
		if err := a.checkChoice(v); err != nil {
			return nil, err
		}
		inv.Globals[a.dest] = v
	}

	var positionals []*argument
	for _, n := range []*Node{m.node.parent, m.node} {
		for _, a := range n.args {
			if a.positional {
				positionals = append(positionals, a)
				continue
			}
			v, err := a.collect(fs)
			if err != nil {
				return nil, err
			}
			if err := a.checkChoice(v); err != nil {
				return nil, err
			}
			inv.Args[a.dest] = v
		}
	}

	if err := assignPositionals(positionals, m.args, inv.Args); err != nil {
		return nil, err
	}
	return inv, nil
}

// assignPositionals distributes tokens over the positional arguments in
// declaration order. Each takes its minimum; surplus tokens go greedily to
// the first arguments that accept more.
func assignPositionals(positionals []*argument, tokens []string, into Namespace) error {
	need := 0
	for _, p := range positionals {
		need += p.min
	}
	if len(tokens) < need {
		var missing []string
		have := len(tokens)
		for _, p := range positionals {
			if have >= p.min {
				have -= p.min
				continue
			}
			missing = append(missing, p.display())
			have = 0
		}
		return argErrorf("", "the following arguments are required: %s", strings.Join(missing, ", "))
	}

	extra := len(tokens) - need
	idx := 0
	for _, p := range positionals {
		n := p.min
		switch {
		case p.max < 0:
			n += extra
			extra = 0
		case p.max > p.min:
			take := min(extra, p.max-p.min)
			n += take
			extra -= take
		}
		chunk := tokens[idx : idx+n]
		idx += n

		var value any
		switch {
		case n == 0:
			def, err := p.defaultValue()
			if err != nil {
				return err
			}
			if def == nil && p.list {
				def = []any{}
			}
			value = def
		case p.list:
			values, err := p.convertAll(chunk)
			if err != nil {
				return err
			}
			value = values
		default:
			v, err := convert(chunk[0], p.spec.Type)
			if err != nil {
				return argErrorf(p.display(), "%v", err)
			}
			value = v
		}
		if err := p.checkChoice(value); err != nil {
			return err
		}
		into[p.dest] = value
	}
	if idx < len(tokens) {
		return argErrorf("", "unrecognized arguments: %s", strings.Join(tokens[idx:], " "))
	}
	return nil
}
