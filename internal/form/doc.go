// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package form holds the interactive session state machine for filling in
// a command's fields. It is renderer-agnostic: the Bubble Tea view and the
// plain-prompt fallback both drive the same Form and render its state.
//
// A Form moves through four states:
//
//	Navigating — cursor moves over the field list
//	Editing    — a text buffer is open for the focused field
//	Confirming — a dangerous command awaits explicit confirmation
//	Done       — terminal; either Executed or Cancelled
//
// Transitions are methods; illegal transitions are no-ops rather than
// errors, which keeps key handlers trivial. Sensitive field values are
// zeroed when the form is closed, on every exit path.
package form
