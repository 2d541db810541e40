// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses quocli's own arguments and runs the selected entry
// point: the interactive form session (default), the plain sequential
// prompt fallback, direct execution from cached values, or the cache
// maintenance subcommands.
//
// quocli's flag surface is deliberately tiny. Everything after the first
// positional argument names the target command and its subcommands; the
// target's flags are never typed on quocli's command line, they come out
// of the form.
package cli
