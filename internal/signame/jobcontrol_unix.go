// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build unix

package signame

import "golang.org/x/sys/unix"

// Job-control signals are only registered where the host supports them.
func init() {
	table["STOP"] = unix.SIGSTOP
	table["TSTP"] = unix.SIGTSTP
	table["CONT"] = unix.SIGCONT
}
