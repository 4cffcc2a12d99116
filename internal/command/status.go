// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package command

import (
	"fmt"
	"syscall"
)

// State is the lifecycle tag of a tracked process.
type State int

const (
	// StatePending means the descriptor has no process handle yet.
	StatePending State = iota
	// StateRunning means the process is executing.
	StateRunning
	// StateStopped means the process is suspended by the OS and resumable.
	StateStopped
	// StateExited means the process terminated normally; Status.Code holds the exit code.
	StateExited
	// StateSignaled means the process was terminated by a signal; Status.Signal holds it.
	StateSignaled
)

// String implements fmt.Stringer for State.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateExited:
		return "exited"
	case StateSignaled:
		return "signaled"
	}

	return fmt.Sprintf("state(%d)", int(s))
}

// Status is the tagged status of a tracked process. Code is meaningful only
// when State is StateExited; Signal only when State is StateSignaled.
type Status struct {
	State  State
	Code   int
	Signal syscall.Signal
}

// Terminal reports whether the status is one of the two terminal states.
// Terminal statuses are stable: further queries keep returning the same value.
func (s Status) Terminal() bool {
	return s.State == StateExited || s.State == StateSignaled
}

// String implements fmt.Stringer for Status.
func (s Status) String() string {
	switch s.State {
	case StateExited:
		return fmt.Sprintf("exited(%d)", s.Code)
	case StateSignaled:
		return fmt.Sprintf("signaled(%d)", int(s.Signal))
	default:
		return s.State.String()
	}
}
