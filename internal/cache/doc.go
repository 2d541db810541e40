// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache persists parsed command specs and previously entered field
// values in a local SQLite database.
//
// Specs are content-addressed: the cache key is a SHA-256 fingerprint of
// the raw help text that produced the spec, so a tool upgrade that changes
// its help output is a guaranteed miss and forces a re-parse. Entries carry
// a TTL; expired entries are treated as misses on lookup and reclaimed by
// PurgeExpired.
//
// Concurrent invocations racing on the same fingerprint coalesce into a
// single LLM call via singleflight — the expensive parse runs once and the
// result is shared with every waiter.
//
// The value cache never stores sensitive fields. That is enforced here, at
// write time, with the security guard — not left to callers.
package cache
