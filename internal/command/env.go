// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package command

import (
	"os"
	"strings"
)

// Environment policy markers, consumed as the first element of a bindings
// sequence. The remaining elements are literal NAME=VALUE bindings.
const (
	// EnvAppend merges the bindings on top of the current process environment.
	EnvAppend = "@append"
	// EnvSupersede makes the bindings the entire child environment.
	EnvSupersede = "@supersede"
)

// BuildEnviron normalizes a bindings sequence into the environment handed to
// the child, or nil when the child should inherit the caller's environment
// unmodified.
//
// The three-way rule: an empty sequence inherits everything; a sequence
// headed by EnvAppend merges the remaining bindings on top of os.Environ(),
// later duplicate names shadowing earlier ones (inherited ones included); a
// sequence headed by EnvSupersede, or a non-empty sequence with no marker,
// becomes the entire child environment with nothing inherited.
func BuildEnviron(bindings []string) []string {
	if len(bindings) == 0 {
		return nil
	}

	switch bindings[0] {
	case EnvAppend:
		return dedupe(append(os.Environ(), bindings[1:]...))
	case EnvSupersede:
		return append([]string(nil), bindings[1:]...)
	default:
		return append([]string(nil), bindings...)
	}
}

// dedupe keeps the last binding for each name, preserving first-seen order.
func dedupe(bindings []string) []string {
	byName := make(map[string]string, len(bindings))
	order := make([]string, 0, len(bindings))

	for _, b := range bindings {
		name, _, _ := strings.Cut(b, "=")
		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}

		byName[name] = b
	}

	out := make([]string, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}

	return out
}
