// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package argtree builds the command-line parser hierarchy of kilu: a root,
// its categories and their actions, sharing one group of global options.
// A built tree turns argument vectors into Invocations routed by the
// action's invocation identifier (TID).
package argtree

import (
	"io"
	"os"
	"strings"
)

// Kind is the position of a Node in the tree.
type Kind int

const (
	KindRoot Kind = iota
	KindCategory
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindCategory:
		return "category"
	case KindAction:
		return "action"
	}
	return "unknown"
}

// reserved option names are owned by the underlying command parser.
var reserved = map[string]bool{"help": true, "h": true}

// reservedCommands are root subcommands provided by the command parser.
var reservedCommands = map[string]bool{"help": true, "completion": true}

// Node is one parser in the tree. Categories hold actions; actions are
// leaves carrying a TID and a callback queue.
type Node struct {
	kind     Kind
	name     string
	help     string
	tid      string
	parent   *Node
	children []*Node
	args     []*argument

	callbacks *CallbackQueue
}

func (n *Node) Kind() Kind { return n.kind }
func (n *Node) Name() string { return n.name }
func (n *Node) Help() string { return n.help }
func (n *Node) TID() string { return n.tid }
func (n *Node) Children() []*Node { return n.children }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Callbacks() *CallbackQueue { return n.callbacks }

// Path returns the space separated names from the root to n.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.name
	}
	return n.parent.Path() + " " + n.name
}

// Tree owns the node graph and the global option group.
type Tree struct {
	root    *Node
	globals []*argument
	tids    map[string]*Node
	out     io.Writer
}

// New returns a tree whose root parser is called name.
func New(name, help string) *Tree {
	return &Tree{
		root: &Node{kind: KindRoot, name: name, help: help},
		tids: make(map[string]*Node),
		out:  os.Stdout,
	}
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// SetOutput sets where help and completion output is written.
func (t *Tree) SetOutput(w io.Writer) { t.out = w }

// Lookup returns the action registered under tid.
func (t *Tree) Lookup(tid string) (*Node, bool) {
	n, ok := t.tids[tid]
	return n, ok
}

// TIDs returns every registered invocation identifier.
func (t *Tree) TIDs() []string {
	out := make([]string, 0, len(t.tids))
	for tid := range t.tids {
		out = append(out, tid)
	}
	return out
}

// TakesValue reports whether token, such as "--name" or "-n", names an
// option of the tree that consumes the next token as its value. A token
// that carries its value after '=' never does. The match ignores which
// action the option belongs to.
func (t *Tree) TakesValue(token string) bool {
	var name string
	switch {
	case strings.HasPrefix(token, "--") && len(token) > 2:
		name = token[2:]
		if strings.Contains(name, "=") {
			return false
		}
	case len(token) == 2 && token[0] == '-' && token[1] != '-':
		name = token[1:]
	default:
		return false
	}

	found := false
	check := func(args []*argument) {
		for _, a := range args {
			if a.positional || (a.long != name && a.short != name) {
				continue
			}
			if a.spec.Action == ActionStore || a.spec.Action == ActionAppend {
				found = true
			}
		}
	}
	check(t.globals)
	_ = t.walk(t.root, func(n *Node) error {
		check(n.args)
		return nil
	})
	return found
}

// AddGlobalOption adds an option inherited by every node. It fails when the
// option collides with any option already defined anywhere in the tree.
func (t *Tree) AddGlobalOption(spec ArgSpec) error {
	a, err := compileArg(spec)
	if err != nil {
		return err
	}
	if a.positional {
		return specErrorf(ErrInvalidSpec, "%s: global arguments must be options", spec.Name)
	}
	if err := checkReserved(a); err != nil {
		return err
	}
	if err := checkConflict(a, t.globals, "global option"); err != nil {
		return err
	}
	if err := t.walk(t.root, func(n *Node) error {
		return checkConflict(a, n.args, n.kind.String()+" "+n.Path())
	}); err != nil {
		return err
	}
	t.globals = append(t.globals, a)
	return nil
}

// AddCategory adds a category under the root.
func (t *Tree) AddCategory(name, help string) (*Node, error) {
	if err := t.checkChild(t.root, name); err != nil {
		return nil, err
	}
	n := &Node{kind: KindCategory, name: name, help: help, parent: t.root}
	t.root.children = append(t.root.children, n)
	return n, nil
}

// AddAction adds an action identified by tid under category.
func (t *Tree) AddAction(category *Node, name, tid, help string) (*Node, error) {
	if category == nil || category.kind != KindCategory {
		return nil, specErrorf(ErrInvalidSpec, "actions can only be added to categories")
	}
	if err := t.checkChild(category, name); err != nil {
		return nil, err
	}
	if tid == "" {
		return nil, specErrorf(ErrInvalidSpec, "action %s has no invocation identifier", name)
	}
	if _, ok := t.tids[tid]; ok {
		return nil, specErrorf(ErrDuplicateTID, "%s", tid)
	}
	n := &Node{
		kind:      KindAction,
		name:      name,
		help:      help,
		tid:       tid,
		parent:    category,
		callbacks: &CallbackQueue{},
	}
	category.children = append(category.children, n)
	t.tids[tid] = n
	return n, nil
}

// AddArgument adds an argument local to a category or an action. Category
// arguments must be options; they are inherited by the category's actions.
func (t *Tree) AddArgument(n *Node, spec ArgSpec) error {
	if n == nil || n.kind == KindRoot {
		return specErrorf(ErrInvalidSpec, "use AddGlobalOption for root options")
	}
	a, err := compileArg(spec)
	if err != nil {
		return err
	}
	if a.positional && n.kind == KindCategory {
		return specErrorf(ErrInvalidSpec, "%s: categories only accept options", spec.Name)
	}
	if err := checkReserved(a); err != nil {
		return err
	}
	if err := checkConflict(a, t.globals, "global option"); err != nil {
		return err
	}
	for p := n; p != nil; p = p.parent {
		if err := checkConflict(a, p.args, p.kind.String()+" "+p.Path()); err != nil {
			return err
		}
	}
	if n.kind == KindCategory {
		for _, child := range n.children {
			if err := checkConflict(a, child.args, "action "+child.Path()); err != nil {
				return err
			}
		}
	}
	n.args = append(n.args, a)
	return nil
}

// AddCallback registers a deferred transform for one of an action's
// arguments.
func (t *Tree) AddCallback(n *Node, arg string, phase Phase, fn Transform) error {
	if n == nil || n.kind != KindAction {
		return specErrorf(ErrInvalidSpec, "callbacks can only be attached to actions")
	}
	if !n.hasDest(arg) {
		return specErrorf(ErrInvalidSpec, "action %s has no argument %q", n.Path(), arg)
	}
	n.callbacks.Register(arg, phase, fn)
	return nil
}

func (n *Node) hasDest(dest string) bool {
	for p := n; p != nil; p = p.parent {
		for _, a := range p.args {
			if a.dest == dest {
				return true
			}
		}
	}
	return false
}

func (t *Tree) checkChild(parent *Node, name string) error {
	if name == "" || strings.HasPrefix(name, "-") || strings.ContainsAny(name, " \t") {
		return specErrorf(ErrInvalidSpec, "invalid node name %q", name)
	}
	if parent.kind == KindRoot && reservedCommands[name] {
		return specErrorf(ErrDuplicateNode, "%s is reserved", name)
	}
	for _, c := range parent.children {
		if c.name == name {
			return specErrorf(ErrDuplicateNode, "%s %s", parent.Path(), name)
		}
	}
	return nil
}

func (t *Tree) walk(n *Node, fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := t.walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

func checkReserved(a *argument) error {
	if a.positional {
		return nil
	}
	if reserved[a.long] || reserved[a.short] {
		return specErrorf(ErrOptionConflict, "%s is reserved for help", a.spec.Name)
	}
	return nil
}

// checkConflict fails when a shares a spelling or a destination with any of
// existing.
func checkConflict(a *argument, existing []*argument, where string) error {
	for _, e := range existing {
		if a.dest == e.dest {
			return specErrorf(ErrOptionConflict, "%s conflicts with %s of %s", a.spec.Name, e.spec.Name, where)
		}
		if a.positional || e.positional {
			continue
		}
		if a.long == e.long || (a.short != "" && a.short == e.short) {
			return specErrorf(ErrOptionConflict, "%s conflicts with %s of %s", a.spec.Name, e.spec.Name, where)
		}
	}
	return nil
}
