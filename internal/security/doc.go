// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security provides the cross-cutting policy consulted by every
// component that persists or displays data: sensitive-field classification,
// value redaction, danger detection, audit logging and at-rest encryption
// of cached values.
//
// The guard is a set of pure functions derived entirely from the command
// spec; it carries no state of its own, so the same policy applies at every
// call site. When in doubt it fails closed: a value it cannot classify is
// treated as sensitive.
package security
