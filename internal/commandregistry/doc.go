// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandregistry maps command names to builder factories and turns
// YAML command documents into command descriptors.
package commandregistry
