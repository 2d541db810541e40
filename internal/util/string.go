// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"github.com/mattn/go-runewidth"
)

// UNICODE: width-aware truncation prevents mid-character cuts and keeps
// CJK and fullwidth text aligned in the TUI.

// TruncateWidth truncates a string to a maximum display width, appending
// an ellipsis when something was cut.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// TruncateRunes truncates a string to a maximum number of runes without
// regard to display width. Safe for UTF-8; counts characters, not bytes.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// StringWidth returns the display width of a string in terminal columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadRight pads a string with spaces to an exact display width,
// truncating when it is already wider.
func PadRight(s string, width int) string {
	w := StringWidth(s)
	if w > width {
		return TruncateWidth(s, width)
	}
	for ; w < width; w++ {
		s += " "
	}
	return s
}
