// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package define turns a typed option schema into a factory producing command
// descriptors. A schema declares the program to run and its named options,
// each either a flag (a literal token emitted when bound true) or a value
// (a prefix token paired with each stringified bound value). Schemas are
// validated when the factory is constructed, never at call time: a malformed
// declaration can never produce a factory.
package define
