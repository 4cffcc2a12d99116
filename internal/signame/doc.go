// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signame maps symbolic signal names to platform signal numbers.
// The table covers the common POSIX termination and control signals and is
// extended with job-control signals on hosts that support them.
// Lookups are case-insensitive and accept an optional "SIG" prefix.
// An unresolved name is an error, never silently mapped to 0.
package signame
