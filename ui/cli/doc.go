// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli is the entry point of the kilu binary. It separates the
// top-level options from the action's arguments, loads the configuration
// and the actions map, wires the logger, executor and backend together and
// hands the remaining arguments to the command-line interface.
package cli
