// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package argtree

import (
	"errors"
	"fmt"
)

var (
	// ErrArgument is matched (errors.Is) by every parse or callback failure.
	ErrArgument = errors.New("invalid arguments")

	// ErrHelpRequested is returned by Parse when the parser fully handled argv
	// itself, e.g. printed help or a completion script. It is not a failure.
	ErrHelpRequested = errors.New("handled by the parser")

	// Build-time errors.
	ErrInvalidSpec    = errors.New("invalid argument specification")
	ErrOptionConflict = errors.New("conflicting option name")
	ErrDuplicateNode  = errors.New("duplicate node name")
	ErrDuplicateTID   = errors.New("duplicate invocation identifier")
)

// ArgumentError describes unparsable, missing or invalid command-line input.
// Arg names the offending argument when known.
type ArgumentError struct {
	Arg    string
	Reason string
	Argv   []string
	Err    error
}

func (e *ArgumentError) Error() string {
	if e.Arg != "" {
		return fmt.Sprintf("argument %s: %s", e.Arg, e.Reason)
	}
	return e.Reason
}

// Is makes every ArgumentError match ErrArgument.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrArgument
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

func argErrorf(arg, format string, a ...any) *ArgumentError {
	return &ArgumentError{Arg: arg, Reason: fmt.Sprintf(format, a...)}
}

func specErrorf(kind error, format string, a ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, a...))
}
