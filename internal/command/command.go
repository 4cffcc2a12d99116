// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/rashell/internal/ctxlog"
	"github.com/matt-FFFFFF/rashell/internal/signame"
)

var (
	// ErrAlreadyStarted is returned when Start is called on a descriptor that
	// already carries a process handle. The first process is unaffected.
	ErrAlreadyStarted = errors.New("command already started")
	// ErrNoProgram is returned when Start is called on a descriptor with an
	// empty program path.
	ErrNoProgram = errors.New("no program to run")
	// ErrCouldNotStartProcess is returned when the host refuses to spawn the process.
	ErrCouldNotStartProcess = errors.New("could not start process")
)

// Command is the immutable specification of one external program invocation.
// Program, Args, Dir, Env and Doc must not be mutated after construction; the
// process handle is attached exactly once, by Start.
type Command struct {
	Program string   // Path to the executable, or a bare name resolved in PATH.
	Args    []string // Arguments, not including the executable name itself.
	Dir     string   // Working directory; empty inherits the caller's.
	Env     []string // Bindings with an optional leading policy marker; see BuildEnviron.
	Doc     string   // Free-text description, informational only.

	proc *Process
}

// StartOption configures one Start call.
type StartOption func(*startConfig)

type startConfig struct {
	stdin  Redirect
	stdout Redirect
	stderr Redirect
	notify func(Status)
}

// WithStdin sets the redirect target for the child's standard input.
func WithStdin(r Redirect) StartOption {
	return func(c *startConfig) { c.stdin = r }
}

// WithStdout sets the redirect target for the child's standard output.
func WithStdout(r Redirect) StartOption {
	return func(c *startConfig) { c.stdout = r }
}

// WithStderr sets the redirect target for the child's standard error.
func WithStderr(r Redirect) StartOption {
	return func(c *startConfig) { c.stderr = r }
}

// WithNotify registers a callback invoked on every status transition of the
// started process. The callback runs concurrently with the caller's control
// flow and must not block for unbounded time.
func WithNotify(fn func(Status)) StartOption {
	return func(c *startConfig) { c.notify = fn }
}

// Start resolves the three redirection targets, the working directory and the
// environment, and asks the host to spawn the process without blocking. It
// attaches the handle to the descriptor and returns it.
//
// A descriptor that already carries a handle fails with ErrAlreadyStarted.
// When a file redirect declines the start under its abort-silently policy,
// Start returns (nil, nil) and the descriptor stays pending.
func (c *Command) Start(ctx context.Context, opts ...StartOption) (*Process, error) {
	if c.proc != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrAlreadyStarted, c.Program, c.Args)
	}

	if c.Program == "" {
		return nil, ErrNoProgram
	}

	cfg := startConfig{
		stdin:  Inherit(),
		stdout: Inherit(),
		stderr: Inherit(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	path := c.Program
	if !strings.ContainsRune(path, os.PathSeparator) {
		lp, err := exec.LookPath(path)
		if err != nil {
			return nil, errors.Join(ErrCouldNotStartProcess, err)
		}

		path = lp
	}

	// Policies are applied across all three targets before any file is
	// opened: a decline or policy error on one stream must not create or
	// truncate another stream's target.
	inDeclined, err := precheckInput(cfg.stdin)
	if err != nil {
		return nil, fmt.Errorf("stdin for %s: %w", c.Program, err)
	}

	outDeclined, err := precheckOutput(cfg.stdout)
	if err != nil {
		return nil, fmt.Errorf("stdout for %s: %w", c.Program, err)
	}

	var errDeclined bool

	if cfg.stderr.kind != redirectMerge {
		errDeclined, err = precheckOutput(cfg.stderr)
		if err != nil {
			return nil, fmt.Errorf("stderr for %s: %w", c.Program, err)
		}
	}

	if inDeclined || outDeclined || errDeclined {
		return nil, nil
	}

	in, err := resolveInput(cfg.stdin)
	if err != nil {
		return nil, fmt.Errorf("stdin for %s: %w", c.Program, err)
	}

	out, err := resolveOutput(cfg.stdout, os.Stdout)
	if err != nil {
		in.close()

		return nil, fmt.Errorf("stdout for %s: %w", c.Program, err)
	}

	var errOut resolved

	if cfg.stderr.kind == redirectMerge {
		// Stderr follows stdout; out keeps ownership of the file.
		errOut = resolved{child: out.child}
	} else {
		errOut, err = resolveOutput(cfg.stderr, os.Stderr)
		if err != nil {
			in.close()
			out.close()

			return nil, fmt.Errorf("stderr for %s: %w", c.Program, err)
		}
	}

	if in.declined || out.declined || errOut.declined {
		in.close()
		out.close()
		errOut.close()

		return nil, nil
	}

	argv := slices.Concat([]string{filepath.Base(path)}, c.Args)

	ps, err := os.StartProcess(path, argv, &os.ProcAttr{
		Dir:   c.Dir,
		Env:   BuildEnviron(c.Env),
		Files: []*os.File{in.child, out.child, errOut.child},
	})
	if err != nil {
		in.close()
		out.close()
		errOut.close()

		return nil, fmt.Errorf("%w: %s %q: %w", ErrCouldNotStartProcess, c.Program, c.Args, err)
	}

	// The child owns its ends now; keeping them open in the parent would keep
	// pipe readers from ever seeing EOF.
	for _, r := range []resolved{in, out, errOut} {
		if r.ownsChild {
			_ = r.child.Close()
		}
	}

	p := &Process{
		ID:     uuid.New(),
		pid:    ps.Pid,
		handle: ps,
		stdin:  in.caller,
		stdout: out.caller,
		stderr: errOut.caller,
		last:   Status{State: StateRunning},
	}
	c.proc = p

	ctxlog.Debug(ctx, "process started", "id", p.ID, "pid", p.pid, "program", c.Program, "args", c.Args)

	if cfg.notify != nil {
		go p.monitor(ctx, cfg.notify)
	}

	return p, nil
}

// Process returns the attached handle, or nil if the descriptor is pending.
func (c *Command) Process() *Process {
	return c.proc
}

// Status returns the current status, StatePending when no handle is attached.
func (c *Command) Status() Status {
	if c.proc == nil {
		return Status{State: StatePending}
	}

	return c.proc.Status()
}

// Signal delivers sig to the tracked process. Delivering to a pending
// descriptor is a no-op, not an error.
func (c *Command) Signal(sig os.Signal) error {
	if c.proc == nil {
		return nil
	}

	return c.proc.Signal(sig)
}

// SignalName resolves a symbolic signal name through the signal table and
// delivers it. An unresolved name is an error even on a pending descriptor.
func (c *Command) SignalName(name string) error {
	sig, err := signame.Lookup(name)
	if err != nil {
		return err
	}

	return c.Signal(sig)
}

// Wait blocks until the tracked process leaves the running state. A pending
// descriptor returns immediately.
func (c *Command) Wait(ctx context.Context) (Status, error) {
	if c.proc == nil {
		return Status{State: StatePending}, nil
	}

	return c.proc.Wait(ctx)
}

// WaitStopped is Wait, but also returns when the process becomes stopped.
func (c *Command) WaitStopped(ctx context.Context) (Status, error) {
	if c.proc == nil {
		return Status{State: StatePending}, nil
	}

	return c.proc.WaitStopped(ctx)
}

// Stdin returns the write end of the stdin pipe, or nil without a handle.
func (c *Command) Stdin() *os.File {
	if c.proc == nil {
		return nil
	}

	return c.proc.Stdin()
}

// Stdout returns the read end of the stdout pipe, or nil without a handle.
func (c *Command) Stdout() *os.File {
	if c.proc == nil {
		return nil
	}

	return c.proc.Stdout()
}

// Stderr returns the read end of the stderr pipe, or nil without a handle.
func (c *Command) Stderr() *os.File {
	if c.proc == nil {
		return nil
	}

	return c.proc.Stderr()
}

// Close releases the streams attached to the handle. It is an idempotent
// no-op on a pending descriptor and never terminates the process.
func (c *Command) Close() error {
	if c.proc == nil {
		return nil
	}

	return c.proc.Close()
}
