// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os"
)

// Warnf writes an operational warning to stderr. Used for degraded-mode
// notices (cache unavailable, history export failed) that must not break
// the session or corrupt the TUI's stdout.
func Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "quocli: warning: "+format+"\n", args...)
}

// Errorf writes an error message to stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "quocli: error: "+format+"\n", args...)
}
