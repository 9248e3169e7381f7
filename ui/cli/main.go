// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/Harlan22/kilu/internal/actionsmap"
	"github.com/Harlan22/kilu/internal/argtree"
	"github.com/Harlan22/kilu/internal/backend"
	"github.com/Harlan22/kilu/internal/config"
	"github.com/Harlan22/kilu/internal/executor"
	"github.com/Harlan22/kilu/internal/i18n"
	"github.com/Harlan22/kilu/internal/iface"
	"github.com/Harlan22/kilu/internal/logging"
	"github.com/Harlan22/kilu/internal/signals"
	"github.com/Harlan22/kilu/internal/termio"
)

// Streams are the standard streams of a run.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Execute runs kilu with the process arguments. An interrupt cancels the
// running action. The main package prints the returned error and exits
// with ExitCode(err).
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return Run(ctx, os.Args[1:], Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}

// Run executes one command line.
//
// The top-level options are read twice: first to find the configuration
// and the actions map, then, once the argument tree is built, again so
// that the value of an action option is never taken for a top-level
// option.
func Run(ctx context.Context, argv []string, s Streams) error {
	opts, flags, _, err := parseTopOptions(argv, nil)
	if err != nil {
		return &iface.Error{Err: iface.ErrInvalidUsage, Message: err.Error()}
	}

	presenter := &logging.Presenter{Out: s.Out, Err: s.Err, Threshold: logging.LevelInfo}
	logging.L.SetPresenter(presenter)

	cfg, err := loadConfig(opts, flags)
	if err != nil {
		return &iface.Error{Err: err, Message: i18n.T("config_error_load", err)}
	}
	i18n.SetLang(language(cfg))
	tree, err := buildTree(cfg.ActionsMap)
	if err != nil {
		return err
	}

	opts, flags, rest, err := parseTopOptions(argv, tree.TakesValue)
	if err != nil {
		return &iface.Error{Err: iface.ErrInvalidUsage, Message: err.Error()}
	}
	mapPath := cfg.ActionsMap
	if cfg, err = loadConfig(opts, flags); err != nil {
		return &iface.Error{Err: err, Message: i18n.T("config_error_load", err)}
	}
	lang := language(cfg)
	i18n.SetLang(lang)
	if cfg.ActionsMap != mapPath {
		if tree, err = buildTree(cfg.ActionsMap); err != nil {
			return err
		}
	}
	tree.SetOutput(s.Out)
	logging.L.SetThreshold(threshold(opts, cfg))

	if cfg.Log.File != "" {
		closer, err := logging.L.OpenFile(cfg.Log.File)
		if err != nil {
			logging.Warnf("%v", err)
		} else {
			defer func() {
				logging.L.SetFileSink(nil)
				_ = closer.Close()
			}()
		}
	}
	if used := config.UsedConfigFile(&opts.Config); used != "" {
		logging.Debugf("using configuration file %s", used)
	}

	registry := executor.NewRegistry()
	if err := backend.Register(registry, backend.Settings{
		PasswordHash:      cfg.Auth.PasswordHash,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		SaveConfig: func(system bool) (string, error) {
			return config.WriteConfigFile(&cfg, system)
		},
	}); err != nil {
		return err
	}
	exec := executor.New(registry, executor.Options{LockPath: cfg.Lock.Path})

	ui := iface.New(iface.Options{
		Tree:     tree,
		Executor: exec,
		Bus:      signals.New(),
		Prompter: termio.NewPrompter(s.In, s.Out),
		Out:      s.Out,
		Timeout:  cfg.Lock.Timeout,
		Lang:     lang,
	})
	return ui.Run(ctx, rest, opts.OutputAs)
}

func language(cfg config.Config) string {
	if cfg.Language != "" {
		return cfg.Language
	}
	return i18n.DetectLocale()
}

func buildTree(actionsMap string) (*argtree.Tree, error) {
	doc, err := loadActionsMap(actionsMap)
	if err != nil {
		return nil, &iface.Error{Err: err, Message: i18n.T("actionsmap_error_load", err)}
	}
	tree, err := doc.Build(nil)
	if err != nil {
		return nil, &iface.Error{Err: err, Message: i18n.T("actionsmap_error_load", err)}
	}
	return tree, nil
}

func loadConfig(opts *topOptions, flags *pflag.FlagSet) (config.Config, error) {
	var path *string
	if opts.Config != "" {
		path = &opts.Config
	}
	return config.LoadConfig[config.Config](flags, config.Defaults(), path)
}

// threshold picks the presenter level: --debug and --quiet win over the
// configured level.
func threshold(opts *topOptions, cfg config.Config) logging.Level {
	switch {
	case opts.Debug:
		return logging.LevelDebug
	case opts.Quiet:
		return logging.LevelWarning
	}
	if level, ok := logging.ParseLevel(cfg.Log.Level); ok {
		return level
	}
	return logging.LevelInfo
}

func loadActionsMap(path string) (*actionsmap.Document, error) {
	if path == "" {
		return actionsmap.Default()
	}
	return actionsmap.Load(path)
}
