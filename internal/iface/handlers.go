// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package iface

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/Harlan22/kilu/internal/i18n"
	"github.com/Harlan22/kilu/internal/security"
	"github.com/Harlan22/kilu/internal/signals"
	"github.com/Harlan22/kilu/internal/termio"
)

func (i *Interface) handleAuthenticate(ctx context.Context, payload any) (any, error) {
	req, ok := payload.(signals.AuthRequest)
	if !ok {
		return nil, fmt.Errorf("authenticate: unexpected payload %T", payload)
	}
	msg := i18n.T("password")
	if req.Help != "" {
		msg = i18n.T(req.Help)
	}
	pw, err := i.prompt(msg, true, false, termio.Yellow)
	if err != nil {
		return nil, err
	}
	secret := security.FromString(pw)
	defer secret.Zero()
	return nil, req.Authenticator.Authenticate(secret)
}

func (i *Interface) handlePrompt(_ context.Context, payload any) (any, error) {
	req, ok := payload.(signals.PromptRequest)
	if !ok {
		return nil, fmt.Errorf("prompt: unexpected payload %T", payload)
	}
	return i.prompt(req.Message, req.Secret, req.Confirm, req.Color)
}

// prompt asks for a value, and asks again for confirmation when confirm is
// set.
func (i *Interface) prompt(message string, secret, confirm bool, color string) (string, error) {
	if color == "" {
		color = termio.Blue
	}
	ask := func(m string) (string, error) {
		text := termio.Colorize(i18n.T("colon", m), color, i.color)
		if secret {
			return i.prompter.ReadSecret(text)
		}
		return i.prompter.ReadLine(text)
	}

	value, err := ask(message)
	if err != nil {
		return "", err
	}
	if confirm {
		again, err := ask(i18n.T("confirm", lowerFirst(message)))
		if err != nil {
			return "", err
		}
		if again != value {
			return "", newError(signals.ErrConfirmationMismatch, "values_mismatch")
		}
	}
	return value, nil
}

func (i *Interface) handleDisplay(_ context.Context, payload any) (any, error) {
	req, ok := payload.(signals.DisplayRequest)
	if !ok {
		return nil, fmt.Errorf("display: unexpected payload %T", payload)
	}
	line := req.Message
	switch req.Style {
	case signals.StyleSuccess:
		line = termio.Colorize(i18n.T("success"), termio.Green, i.color) + " " + req.Message
	case signals.StyleWarning:
		line = termio.Colorize(i18n.T("warning"), termio.Yellow, i.color) + " " + req.Message
	case signals.StyleError:
		line = termio.Colorize(i18n.T("error"), termio.Red, i.color) + " " + req.Message
	}
	_, err := fmt.Fprintln(i.out, line)
	return nil, err
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
