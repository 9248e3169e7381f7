// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// topOptions are handled before the actions map parses the command line.
type topOptions struct {
	OutputAs   string
	Debug      bool
	Quiet      bool
	Config     string
	Lang       string
	ActionsMap string
}

// newTopFlagSet declares the top-level options on a flag set bound to o.
// The names match the configuration keys they override.
func newTopFlagSet(o *topOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("kilu", pflag.ContinueOnError)
	fs.StringVar(&o.OutputAs, "output-as", "", "output format: json or plain")
	fs.BoolVar(&o.Debug, "debug", false, "show debug messages")
	fs.BoolVar(&o.Quiet, "quiet", false, "only show warnings and errors")
	fs.StringVar(&o.Config, "config", "", "configuration file")
	fs.StringVar(&o.Lang, "lang", "", "language of the messages")
	fs.StringVar(&o.ActionsMap, "actionsmap", "", "actions map file")
	fs.SortFlags = false
	return fs
}

// splitTopOptions moves the top-level options out of argv wherever they
// appear. Anything after "--" is left untouched. When takesValue reports
// that a token is an action option expecting a value, the token after it
// stays with the action even if it looks like a top-level option.
func splitTopOptions(argv []string, fs *pflag.FlagSet, takesValue func(string) bool) (top, rest []string) {
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			rest = append(rest, argv[i:]...)
			break
		}
		if strings.HasPrefix(arg, "--") {
			name, _, hasValue := strings.Cut(arg[2:], "=")
			if flag := fs.Lookup(name); flag != nil {
				top = append(top, arg)
				if flag.Value.Type() != "bool" && !hasValue && i+1 < len(argv) {
					i++
					top = append(top, argv[i])
				}
				continue
			}
		}
		rest = append(rest, arg)
		if takesValue != nil && takesValue(arg) && i+1 < len(argv) {
			i++
			rest = append(rest, argv[i])
		}
	}
	return top, rest
}

// parseTopOptions returns the top-level options, the flag set holding
// them and the arguments left for the actions map. takesValue may be nil.
func parseTopOptions(argv []string, takesValue func(string) bool) (*topOptions, *pflag.FlagSet, []string, error) {
	o := &topOptions{}
	fs := newTopFlagSet(o)
	top, rest := splitTopOptions(argv, fs, takesValue)
	if err := fs.Parse(top); err != nil {
		return nil, nil, nil, err
	}
	if rest == nil {
		rest = []string{}
	}
	return o, fs, rest, nil
}
