// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package spec defines the normalized command specification model.
//
// A CommandSpec describes one wrapped command: its identity, its fields
// (flags, options and positional arguments) and whether it is destructive.
// Specs are produced by the LLM parser from raw help text, validated once,
// and then shared read-only by the cache, the form engine and the builder.
package spec
