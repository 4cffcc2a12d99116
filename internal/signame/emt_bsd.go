// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package signame

import "golang.org/x/sys/unix"

// SIGEMT does not exist on linux, so it joins the table on BSD-derived hosts only.
func init() {
	table["EMT"] = unix.SIGEMT
}
