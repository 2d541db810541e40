// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the content address of raw help text: a SHA-256 hex
// digest. Identical text always produces the same key; any byte difference
// produces a different one. The input is hashed exactly as captured — no
// normalization — so the fingerprint tracks the tool's real output.
func Fingerprint(helpText string) string {
	sum := sha256.Sum256([]byte(helpText))
	return hex.EncodeToString(sum[:])
}
