// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/quocli/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom bar: a notice slot (missing-required hints,
// cache state) and context-sensitive key hints.
type StatusBar struct {
	Notice    string
	Shortcuts []Shortcut
	Width     int
	theme     *styles.Theme
}

// NewStatusBar builds an empty status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetNotice replaces the notice text. Empty clears it.
func (s *StatusBar) SetNotice(notice string) {
	s.Notice = notice
}

// SetShortcuts replaces the key hints.
func (s *StatusBar) SetShortcuts(shortcuts []Shortcut) {
	s.Shortcuts = shortcuts
}

// View renders the bar.
func (s *StatusBar) View() string {
	var parts []string
	if s.Notice != "" {
		parts = append(parts, s.theme.StatusNotice.Render(s.Notice))
	}
	for _, sc := range s.Shortcuts {
		parts = append(parts,
			s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}

	line := strings.Join(parts, "  ")
	return s.theme.StatusBar.Width(s.Width).MaxWidth(s.Width).Render(line)
}
