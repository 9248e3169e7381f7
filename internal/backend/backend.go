// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backend implements the actions of the bundled actions map. Each
// handler talks to the user only through the signals carried by its
// context.
package backend

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"

	"github.com/Harlan22/kilu/buildvars"
	"github.com/Harlan22/kilu/internal/argtree"
	"github.com/Harlan22/kilu/internal/executor"
	"github.com/Harlan22/kilu/internal/i18n"
	"github.com/Harlan22/kilu/internal/logging"
	"github.com/Harlan22/kilu/internal/security"
	"github.com/Harlan22/kilu/internal/signals"
	"github.com/Harlan22/kilu/internal/text"
)

// Settings carries the configuration the handlers depend on.
type Settings struct {
	// PasswordHash is the bcrypt hash checked by auth.check.
	PasswordHash string
	// MinPasswordLength is enforced by auth.hash.
	MinPasswordLength int
	// SaveConfig writes the effective configuration and returns the path
	// written. Nil disables system.config.
	SaveConfig func(system bool) (string, error)
}

// Register installs every bundled handler in r.
func Register(r *executor.Registry, s Settings) error {
	b := &backend{settings: s}
	handlers := map[string]executor.Handler{
		"text.search":   b.textSearch,
		"auth.check":    b.authCheck,
		"auth.hash":     b.authHash,
		"system.info":   b.systemInfo,
		"system.locale": b.systemLocale,
		"system.greet":  b.systemGreet,
		"system.config": b.systemConfig,
	}
	for tid, h := range handlers {
		if err := r.Register(tid, h); err != nil {
			return err
		}
	}
	return nil
}

type backend struct {
	settings Settings
}

// display raises the display signal. A run without a display handler
// only loses the status line.
func display(ctx context.Context, message, style string) {
	if err := signals.RaiseDisplay(ctx, message, style); err != nil {
		logging.Debugf("unable to display message: %v", err)
	}
}

func (b *backend) textSearch(ctx context.Context, args argtree.Namespace) (any, error) {
	pattern := args.String("pattern")
	if args.Bool("ignore_case") {
		pattern = "(?i)" + pattern
	}
	res, err := text.SearchFile(pattern, args.String("file"), args.Int("count"))
	if err != nil {
		return nil, err
	}
	if res == nil {
		display(ctx, i18n.T("text.search.no_match"), signals.StyleWarning)
		return nil, nil
	}
	n := 1
	if list, ok := res.([]any); ok {
		n = len(list)
	}
	display(ctx, i18n.T("text.search.matches", n), signals.StyleSuccess)
	return map[string]any{"matches": res}, nil
}

// bcryptAuthenticator checks passwords against a bcrypt hash.
type bcryptAuthenticator struct {
	hash []byte
}

func (a bcryptAuthenticator) Authenticate(password security.Secret) error {
	return password.Use(func(pw []byte) error {
		if err := bcrypt.CompareHashAndPassword(a.hash, pw); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return errors.New(i18n.T("invalid_password"))
			}
			return fmt.Errorf("checking password: %w", err)
		}
		return nil
	})
}

func (b *backend) authCheck(ctx context.Context, _ argtree.Namespace) (any, error) {
	if b.settings.PasswordHash == "" {
		return nil, errors.New(i18n.T("auth.check.unset"))
	}
	auth := bcryptAuthenticator{hash: []byte(b.settings.PasswordHash)}
	_, err := signals.RaiseAuthenticate(ctx, auth, "")
	if errors.Is(err, signals.ErrUnhandledSignal) {
		return nil, errors.New(i18n.T("authentication_required"))
	}
	if err != nil {
		return nil, err
	}
	display(ctx, i18n.T("auth.check.valid"), signals.StyleSuccess)
	return nil, nil
}

func (b *backend) authHash(_ context.Context, args argtree.Namespace) (any, error) {
	pw := security.FromString(args.String("password"))
	defer pw.Zero()
	if pw.Len() < b.settings.MinPasswordLength {
		return nil, errors.New(i18n.T("pattern_password"))
	}
	cost := args.Int("cost")
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	var hash []byte
	err := pw.Use(func(raw []byte) error {
		var err error
		hash, err = bcrypt.GenerateFromPassword(raw, cost)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return map[string]any{"hash": string(hash)}, nil
}

func (b *backend) systemInfo(context.Context, argtree.Namespace) (any, error) {
	return map[string]any{
		"system": map[string]any{
			"locale":  i18n.GetLang(),
			"os":      runtime.GOOS,
			"arch":    runtime.GOARCH,
			"version": buildvars.VersionOrDefault("dev"),
		},
	}, nil
}

func (b *backend) systemLocale(context.Context, argtree.Namespace) (any, error) {
	return i18n.GetLang(), nil
}

func (b *backend) systemGreet(_ context.Context, args argtree.Namespace) (any, error) {
	return i18n.T("system.greet.message", args.String("name")), nil
}

func (b *backend) systemConfig(ctx context.Context, args argtree.Namespace) (any, error) {
	if b.settings.SaveConfig == nil {
		return nil, errors.New("configuration cannot be written")
	}
	path, err := b.settings.SaveConfig(args.Bool("system"))
	if err != nil {
		return nil, err
	}
	display(ctx, i18n.T("system.config.saved", path), signals.StyleSuccess)
	return map[string]any{"path": path}, nil
}
