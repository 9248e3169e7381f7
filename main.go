// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for kilu.
//
// Usage:
//
//	go run . [--output-as json|plain] [--debug] [--quiet] <category> <action> [args...]
//	./kilu --help
package main

import (
	"os"

	"github.com/Harlan22/kilu/internal/logging"
	"github.com/Harlan22/kilu/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if msg := cli.Message(err); msg != "" {
			logging.Errorf("%s", msg)
		}
		os.Exit(cli.ExitCode(err))
	}
}
