// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package termio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Prompter reads answers from an input stream, echoing prompts to an output
// stream. Secret reads disable echo when the input is a terminal.
type Prompter struct {
	in  io.Reader
	out io.Writer

	reader *bufio.Reader

	mu    sync.Mutex
	fd    int
	saved *term.State
}

// NewPrompter returns a Prompter reading from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, reader: bufio.NewReader(in), fd: -1}
}

// NewStdPrompter is the Prompter bound to the process' standard streams.
func NewStdPrompter() *Prompter {
	return NewPrompter(os.Stdin, os.Stdout)
}

// ReadLine prints prompt and returns one line of input without its line
// terminator. A closed input yields io.EOF.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return "", io.EOF
		}
		if !errors.Is(err, io.EOF) {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadSecret prints prompt and reads a line with echo disabled. When the
// input is not a terminal it behaves like ReadLine.
func (p *Prompter) ReadSecret(prompt string) (string, error) {
	f, ok := p.in.(fdWriter)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.ReadLine(prompt)
	}
	fd := int(f.Fd())

	fmt.Fprint(p.out, prompt)
	p.remember(fd)
	secret, err := term.ReadPassword(fd)
	p.forget()
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

func (p *Prompter) remember(fd int) {
	state, err := term.GetState(fd)
	if err != nil {
		return
	}
	p.mu.Lock()
	p.fd, p.saved = fd, state
	p.mu.Unlock()
}

func (p *Prompter) forget() {
	p.mu.Lock()
	p.fd, p.saved = -1, nil
	p.mu.Unlock()
}

// Restore puts the terminal back into the state it had before an
// in-flight secret read. It is a no-op when no read is pending.
func (p *Prompter) Restore() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saved == nil {
		return
	}
	_ = term.Restore(p.fd, p.saved)
	fmt.Fprintln(p.out)
	p.fd, p.saved = -1, nil
}
