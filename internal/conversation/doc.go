// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package conversation fabricates deterministic subprocesses for testing the
// process controller. A conversation is an ordered list of clauses (sleep,
// write a line to stdout or stderr, read and compare a line from stdin, exit)
// compiled into a small shell script and wrapped in a command descriptor.
//
// This is a testing fixture, not a general scripting facility, and its
// limitations are deliberate: clauses are not validated before code
// generation, text is interpolated into single-quoted shell literals with no
// escaping (a single quote in a clause corrupts the script), and the script
// travels inline as one argument, bounding its size by the host's
// command-line length limit.
package conversation
