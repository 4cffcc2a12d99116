// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package utilities carries fixed builder schemas for a handful of common
// external programs. Each schema is registered in the default command
// registry at init, so YAML command documents can name them directly.
// These are convenience wrappers over the builder; nothing here adds
// semantics of its own.
package utilities
