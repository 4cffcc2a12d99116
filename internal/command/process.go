// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/rashell/internal/ctxlog"
	"golang.org/x/sys/unix"
)

// pollInterval is how often Wait and the notify monitor re-derive the status.
const pollInterval = 10 * time.Millisecond

// Process is the live handle attached to a started Command. It exclusively
// owns the spawned OS process and the near ends of any pipe redirects. It is
// created by Start and never reassigned.
type Process struct {
	// ID correlates log lines for this process.
	ID uuid.UUID

	pid    int
	handle *os.Process
	stdin  *os.File // write end of a stdin pipe, if requested
	stdout *os.File // read end of a stdout pipe, if requested
	stderr *os.File // read end of a stderr pipe, if requested

	mu    sync.Mutex
	last  Status  // last observed non-terminal status
	final *Status // latched terminal status
}

// Pid returns the operating system process ID.
func (p *Process) Pid() int {
	return p.pid
}

// Status derives the current status from the host on every call. Once a
// terminal status has been observed it is latched and returned unchanged.
func (p *Process) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.statusLocked()
}

// statusLocked consumes every state change the host has queued for the child.
// Reaping happens here and nowhere else, so the pid cannot be collected twice.
func (p *Process) statusLocked() Status {
	if p.final != nil {
		return *p.final
	}

	var ws unix.WaitStatus

	for {
		wpid, err := unix.Wait4(p.pid, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		if err == unix.EINTR {
			continue
		}

		if err != nil || wpid == 0 {
			// No queued transition (or already reaped): last observation stands.
			return p.last
		}

		switch {
		case ws.Exited():
			st := Status{State: StateExited, Code: ws.ExitStatus()}
			p.final = &st

			return st
		case ws.Signaled():
			st := Status{State: StateSignaled, Signal: ws.Signal()}
			p.final = &st

			return st
		case ws.Stopped():
			p.last = Status{State: StateStopped}
		case ws.Continued():
			p.last = Status{State: StateRunning}
		}
	}
}

// Signal delivers sig to the process. Delivering to a process whose terminal
// status has already been observed returns os.ErrProcessDone.
func (p *Process) Signal(sig os.Signal) error {
	if p.Status().Terminal() {
		return os.ErrProcessDone
	}

	return p.handle.Signal(sig)
}

// Wait blocks until the process reaches a terminal status, or ctx is done.
func (p *Process) Wait(ctx context.Context) (Status, error) {
	return p.wait(ctx, false)
}

// WaitStopped blocks until the process reaches a terminal status or becomes
// stopped, or ctx is done.
func (p *Process) WaitStopped(ctx context.Context) (Status, error) {
	return p.wait(ctx, true)
}

func (p *Process) wait(ctx context.Context, stopReturns bool) (Status, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		st := p.Status()
		if st.Terminal() || (stopReturns && st.State == StateStopped) {
			return st, nil
		}

		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stdin returns the write end of the stdin pipe, or nil if stdin was not a
// pipe redirect.
func (p *Process) Stdin() *os.File { return p.stdin }

// Stdout returns the read end of the stdout pipe, or nil if stdout was not a
// pipe redirect.
func (p *Process) Stdout() *os.File { return p.stdout }

// Stderr returns the read end of the stderr pipe, or nil if stderr was not a
// pipe redirect.
func (p *Process) Stderr() *os.File { return p.stderr }

// Close releases the streams attached to the handle. It is idempotent and
// never waits for or terminates the process: closing the streams of a running
// process is permitted.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range []**os.File{&p.stdin, &p.stdout, &p.stderr} {
		if *f != nil {
			_ = (*f).Close()
			*f = nil
		}
	}

	return nil
}

// monitor polls for status transitions and invokes notify on each one. It
// runs concurrently with the caller's control flow and exits once the status
// is terminal or ctx is done.
func (p *Process) monitor(ctx context.Context, notify func(Status)) {
	logger := ctxlog.Logger(ctx).With("id", p.ID, "pid", p.pid)

	prev := Status{State: StateRunning}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		st := p.Status()
		if st != prev {
			logger.Debug("status transition", "from", prev.String(), "to", st.String())
			notify(st)

			prev = st
		}

		if st.Terminal() {
			return
		}
	}
}
