// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signame

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// ErrUnknownSignal is returned when a symbolic signal name cannot be resolved.
var ErrUnknownSignal = errors.New("unknown signal name")

// table is the static name to number mapping. It is append-only: init
// functions in platform-conditional files add entries, nothing removes them.
var table = map[string]syscall.Signal{
	"HUP":  unix.SIGHUP,
	"INT":  unix.SIGINT,
	"QUIT": unix.SIGQUIT,
	"ILL":  unix.SIGILL,
	"TRAP": unix.SIGTRAP,
	"ABRT": unix.SIGABRT,
	"FPE":  unix.SIGFPE,
	"KILL": unix.SIGKILL,
	"BUS":  unix.SIGBUS,
	"SEGV": unix.SIGSEGV,
	"SYS":  unix.SIGSYS,
	"PIPE": unix.SIGPIPE,
	"ALRM": unix.SIGALRM,
	"TERM": unix.SIGTERM,
}

// normalize maps the accepted spellings of a signal name onto the table key.
// "term", "TERM" and "SIGTERM" all resolve to the same entry.
func normalize(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))

	return strings.TrimPrefix(name, "SIG")
}

// Lookup resolves a symbolic signal name to its platform signal number.
func Lookup(name string) (syscall.Signal, error) {
	sig, ok := table[normalize(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
	}

	return sig, nil
}

// Names returns the symbolic names known on this platform, sorted.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
