// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/Harlan22/kilu/internal/argtree"
	"github.com/Harlan22/kilu/internal/executor"
	"github.com/Harlan22/kilu/internal/i18n"
	"github.com/Harlan22/kilu/internal/iface"
)

// Exit codes of the kilu binary.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// ExitError requests a specific exit code without a message of its own.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitCode maps the error returned by Execute to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	if errors.Is(err, iface.ErrOperationInterrupted) {
		return ExitInterrupted
	}
	return ExitFailure
}

// Message returns the text printed for err. It is empty for errors that
// only carry an exit code.
func Message(err error) string {
	var coder interface{ ExitCode() int }
	if err == nil || errors.As(err, &coder) {
		return ""
	}
	switch {
	case errors.Is(err, argtree.ErrArgument):
		return err.Error() + "\n" + i18n.T("invalid_usage")
	case errors.Is(err, executor.ErrLockTimeout):
		return i18n.T("instance_already_running")
	}
	return err.Error()
}
