// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signals implements the subcommand that lists the named signals
// known to the signal table.
package signals

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/rashell/internal/signame"
	"github.com/urfave/cli/v3"
)

// SignalsCmd is the command that lists the known signal names and numbers.
var SignalsCmd = &cli.Command{
	Name:        "signals",
	Description: "List the signal names known on this platform and their numbers.",
	Action:      actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	for _, name := range signame.Names() {
		sig, err := signame.Lookup(name)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to resolve signal %s: %s", name, err.Error()), 1)
		}

		fmt.Fprintf(cmd.Writer, "%-8s %d\n", name, int(sig))
	}

	return nil
}
