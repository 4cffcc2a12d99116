// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package command provides the immutable command descriptor, the environment
// normalization rules, the I/O redirection vocabulary and the process
// controller: start, status, signal, wait, stream access and close.
//
// A Command describes one invocation of an external program. Starting it
// attaches a Process handle exactly once; the spawned program runs as an
// independent OS process and the controller derives its status from the live
// handle on every query. The package wraps the host's process facility
// (os.StartProcess and wait4), it does not reimplement it.
package command
