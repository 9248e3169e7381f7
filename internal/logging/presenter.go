// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/Harlan22/kilu/internal/i18n"
	"github.com/Harlan22/kilu/internal/termio"
)

var levelColors = map[Level]string{
	LevelNotSet:   termio.White,
	LevelDebug:    termio.White,
	LevelInfo:     termio.Cyan,
	LevelSuccess:  termio.Green,
	LevelWarning:  termio.Yellow,
	LevelError:    termio.Red,
	LevelCritical: termio.Red,
}

// Presenter writes records to a terminal-like pair of streams. Records at
// WARNING or above go to Err, the rest to Out. A destination attached to a
// terminal gets a colorized severity label and body; any other destination
// gets the bare message.
type Presenter struct {
	Out       io.Writer
	Err       io.Writer
	Threshold Level

	// IsTerminal decides whether a destination supports color. It defaults
	// to termio.IsTerminal.
	IsTerminal func(w io.Writer) bool
}

// NewPresenter returns a Presenter on the process' standard streams.
func NewPresenter(threshold Level) *Presenter {
	return &Presenter{Out: os.Stdout, Err: os.Stderr, Threshold: threshold}
}

// Emit writes r unless it is below the threshold.
func (p *Presenter) Emit(r Record) {
	if r.Level < p.Threshold {
		return
	}
	w := p.Out
	if r.Level >= LevelWarning {
		w = p.Err
	}
	if w == nil {
		return
	}
	fmt.Fprintln(w, p.Format(r, p.supportsColor(w)))
}

// Format renders r for a destination with or without color support.
func (p *Presenter) Format(r Record, color bool) string {
	if !color {
		return ansi.Strip(r.Message)
	}
	label := ""
	switch {
	case p.Threshold <= LevelDebug:
		label = r.Level.String() + " "
	case r.Level == LevelSuccess || r.Level == LevelWarning || r.Level == LevelError:
		label = i18n.T(strings.ToLower(r.Level.String())) + " "
	}
	c, ok := levelColors[r.Level]
	if !ok {
		c = termio.White
	}
	return termio.Colorize(label+r.Message, c, true)
}

func (p *Presenter) supportsColor(w io.Writer) bool {
	if p.IsTerminal != nil {
		return p.IsTerminal(w)
	}
	return termio.IsTerminal(w)
}
