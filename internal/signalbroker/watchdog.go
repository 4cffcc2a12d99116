// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"syscall"

	"github.com/matt-FFFFFF/rashell/internal/ctxlog"
)

// Signaler delivers a signal to a tracked process. It is satisfied by
// command.Command.
type Signaler interface {
	Signal(sig os.Signal) error
}

// Forward relays caught signals to the supervised child. The first signal of
// each type is passed through as-is; the second of the same type escalates to
// SIGKILL and the watchdog returns. It also returns when the channel closes
// or ctx is done.
func Forward(ctx context.Context, sigCh chan os.Signal, child Signaler) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return

		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Info(ctx, "watchdog",
					"detail", "received second signal of type, killing child", "signal", sig.String())

				if err := child.Signal(syscall.SIGKILL); err != nil {
					ctxlog.Warn(ctx, "watchdog", "detail", "failed to kill child", "error", err)
				}

				return
			}

			seen[sig] = struct{}{}

			ctxlog.Info(ctx, "watchdog", "detail", "forwarding signal to child", "signal", sig.String())

			if err := child.Signal(sig); err != nil {
				ctxlog.Warn(ctx, "watchdog", "detail", "failed to forward signal", "error", err)
			}
		}
	}
}
