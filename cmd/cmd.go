// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/matt-FFFFFF/rashell/cmd/run"
	"github.com/matt-FFFFFF/rashell/cmd/script"
	"github.com/matt-FFFFFF/rashell/cmd/signals"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		script.ScriptCmd,
		signals.SignalsCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "rashell",
	Description: `Rashell is a Go toolkit for declarative construction and supervision
of operating system processes. Commands are described as immutable descriptors in
YAML documents, launched with fine-grained control over standard stream redirection
and environment composition, and supervised through signals and status polling.`,
	Usage:     "rashell run myfile.yaml",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}
