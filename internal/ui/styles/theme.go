// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the form view. It detects
// the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderDesc  lipgloss.Style
	DangerBadge lipgloss.Style

	// ==========================================================================
	// FIELD LIST STYLES
	// ==========================================================================

	FieldRow        lipgloss.Style
	FieldRowFocused lipgloss.Style
	FieldLabel      lipgloss.Style
	FieldValue      lipgloss.Style
	FieldValueEmpty lipgloss.Style
	FieldSecret     lipgloss.Style
	FieldError      lipgloss.Style
	RequiredMark    lipgloss.Style
	FieldHelp       lipgloss.Style
	EnumChoice      lipgloss.Style

	// ==========================================================================
	// PREVIEW PANEL STYLES
	// ==========================================================================

	PreviewBox   lipgloss.Style
	PreviewTitle lipgloss.Style

	// ==========================================================================
	// CONFIRM DIALOG STYLES
	// ==========================================================================

	ConfirmBox          lipgloss.Style
	ConfirmTitle        lipgloss.Style
	ConfirmWarning      lipgloss.Style
	ConfirmButton       lipgloss.Style
	ConfirmButtonActive lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusNotice lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a theme with all styles configured. mode is "dark",
// "light", or "auto"; auto defers to terminal background detection.
func NewTheme(mode string) *Theme {
	switch mode {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}

	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.HeaderDesc = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.DangerBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 1)

	t.FieldRow = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)
	t.FieldRowFocused = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Padding(0, 1)
	t.FieldLabel = lipgloss.NewStyle().
		Foreground(Purple)
	t.FieldValue = lipgloss.NewStyle().
		Foreground(Emerald)
	t.FieldValueEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.FieldSecret = lipgloss.NewStyle().
		Foreground(Amber)
	t.FieldError = lipgloss.NewStyle().
		Foreground(Rose)
	t.RequiredMark = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)
	t.FieldHelp = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.EnumChoice = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.PreviewBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PreviewTitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.ConfirmBox = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 2)
	t.ConfirmTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
	t.ConfirmWarning = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.ConfirmButton = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)
	t.ConfirmButtonActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 2)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusNotice = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	return t
}

// SetSize records the terminal dimensions for layout decisions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
