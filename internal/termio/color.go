// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package termio holds the terminal primitives shared by the interface and
// the log presenter: terminal detection, ANSI coloring and line/secret
// prompting.
package termio

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Color names understood by Colorize, mapped in order to ANSI codes 31-37.
const (
	Red    = "red"
	Green  = "green"
	Yellow = "yellow"
	Blue   = "blue"
	Purple = "purple"
	Cyan   = "cyan"
	White  = "white"
)

var colorCodes = map[string]lipgloss.Color{
	Red:    "1",
	Green:  "2",
	Yellow: "3",
	Blue:   "4",
	Purple: "5",
	Cyan:   "6",
	White:  "7",
}

// renderer is pinned to the basic ANSI profile so the emitted sequences do
// not depend on what the process' own stdout happens to be.
var renderer = newRenderer()

func newRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI))
	r.SetColorProfile(termenv.ANSI)
	return r
}

// Colorize wraps s in a bold ANSI color sequence when enabled is true.
// Unknown color names fall back to white.
func Colorize(s, color string, enabled bool) string {
	if !enabled || s == "" {
		return s
	}
	c, ok := colorCodes[color]
	if !ok {
		c = colorCodes[White]
	}
	return renderer.NewStyle().Bold(true).Foreground(c).Render(s)
}

// IsKnownColor reports whether name is part of the color table.
func IsKnownColor(name string) bool {
	_, ok := colorCodes[name]
	return ok
}

// fdWriter is implemented by *os.File and anything else exposing a file
// descriptor.
type fdWriter interface {
	Fd() uintptr
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
