// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package conversation

import (
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/rashell/internal/command"
)

// Interpreter is the shell that runs generated conversation scripts.
const Interpreter = "/bin/sh"

type clauseKind int

const (
	kindSleep clauseKind = iota + 1
	kindWriteOutput
	kindWriteError
	kindReadInput
	kindExit
)

// Clause is one step of a scripted conversation. Construct clauses with
// Sleep, WriteOutput, WriteError, ReadInput and Exit.
type Clause struct {
	kind    clauseKind
	text    string
	seconds float64
	code    int
}

// Sleep pauses the conversation for the given number of seconds.
func Sleep(seconds float64) Clause {
	return Clause{kind: kindSleep, seconds: seconds}
}

// WriteOutput emits one line on the conversation's stdout.
func WriteOutput(text string) Clause {
	return Clause{kind: kindWriteOutput, text: text}
}

// WriteError emits one line on the conversation's stderr.
func WriteError(text string) Clause {
	return Clause{kind: kindWriteError, text: text}
}

// ReadInput reads one line from the conversation's stdin and reports a
// mismatch against the expected text to stderr, without halting the script.
func ReadInput(expected string) Clause {
	return Clause{kind: kindReadInput, text: expected}
}

// Exit terminates the conversation with the given code.
func Exit(code int) Clause {
	return Clause{kind: kindExit, code: code}
}

// helpers are the three routines every generated script starts with:
// an unbuffered line write to stdout, the same to stderr, and a
// read-and-compare that reports mismatches to stderr and carries on.
const helpers = `put() {
	printf '%s\n' "$1"
}
put_err() {
	printf '%s\n' "$1" 1>&2
}
expect() {
	read -r reply
	if [ "$reply" != "$1" ]; then
		put_err "expected $1 but read $reply"
	fi
}
`

// Script compiles the clauses into a shell script: the helper routines
// followed by one statement per clause, in clause order. A clause of an
// unknown kind generates no statement.
func Script(clauses []Clause) string {
	sb := strings.Builder{}
	sb.WriteString(helpers)

	for _, c := range clauses {
		switch c.kind {
		case kindSleep:
			sb.WriteString("sleep " + strconv.FormatFloat(c.seconds, 'f', -1, 64))
		case kindWriteOutput:
			sb.WriteString("put '" + c.text + "'")
		case kindWriteError:
			sb.WriteString("put_err '" + c.text + "'")
		case kindReadInput:
			sb.WriteString("expect '" + c.text + "'")
		case kindExit:
			sb.WriteString("exit " + strconv.Itoa(c.code))
		default:
			continue
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// New wraps the clauses in a command descriptor whose program is the shell
// interpreter invoked with the generated inline script.
func New(clauses ...Clause) *command.Command {
	return &command.Command{
		Program: Interpreter,
		Args:    []string{"-c", Script(clauses)},
		Doc:     "scripted conversation fixture",
	}
}
