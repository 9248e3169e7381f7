// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package signals

import (
	"context"
	"fmt"

	"github.com/Harlan22/kilu/internal/security"
)

// Authenticator validates a password supplied by the user.
type Authenticator interface {
	Authenticate(password security.Secret) error
}

// AuthRequest is the payload of the authenticate signal. Help is the
// message ID of the password prompt; empty means the generic one.
type AuthRequest struct {
	Authenticator Authenticator
	Help          string
}

// PromptRequest is the payload of the prompt signal.
type PromptRequest struct {
	Message string
	Secret  bool
	Confirm bool
	Color   string
}

// DisplayRequest is the payload of the display signal.
type DisplayRequest struct {
	Message string
	Style   string
}

// Display styles.
const (
	StyleInfo    = "info"
	StyleSuccess = "success"
	StyleWarning = "warning"
	StyleError   = "error"
)

// RaiseAuthenticate asks the interface to collect a password and run it
// through a. It returns whatever the handler returns, typically the
// authenticator's result.
func RaiseAuthenticate(ctx context.Context, a Authenticator, help string) (any, error) {
	return FromContext(ctx).Raise(ctx, Authenticate, AuthRequest{Authenticator: a, Help: help})
}

// RaisePrompt asks the interface for a value. The default color is blue.
func RaisePrompt(ctx context.Context, message string, secret, confirm bool, color string) (string, error) {
	if color == "" {
		color = "blue"
	}
	v, err := FromContext(ctx).Raise(ctx, Prompt, PromptRequest{
		Message: message,
		Secret:  secret,
		Confirm: confirm,
		Color:   color,
	})
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("prompt handler returned %T", v)
	}
	return s, nil
}

// RaiseDisplay asks the interface to show message. The default style is
// info.
func RaiseDisplay(ctx context.Context, message, style string) error {
	if style == "" {
		style = StyleInfo
	}
	_, err := FromContext(ctx).Raise(ctx, Display, DisplayRequest{Message: message, Style: style})
	return err
}
