// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/quocli/internal/ui/styles"
)

// =============================================================================
// CONFIRM DIALOG COMPONENT
// =============================================================================

// Confirm is the danger confirmation dialog. Deny is the initial focus;
// executing a destructive command takes a deliberate keypress.
type Confirm struct {
	Warning     string
	CommandLine string
	YesFocused  bool
	Width       int
	theme       *styles.Theme
}

// NewConfirm builds a confirm dialog with Deny focused.
func NewConfirm(theme *styles.Theme, warning, commandLine string) *Confirm {
	if warning == "" {
		warning = "This command may delete or overwrite data."
	}
	return &Confirm{
		Warning:     warning,
		CommandLine: commandLine,
		Width:       80,
		theme:       theme,
	}
}

// SetWidth updates the dialog width.
func (c *Confirm) SetWidth(width int) {
	c.Width = width
}

// Toggle flips which button has focus.
func (c *Confirm) Toggle() {
	c.YesFocused = !c.YesFocused
}

// View renders the dialog.
func (c *Confirm) View() string {
	title := c.theme.ConfirmTitle.Render(styles.StatusIndicators.Warning + " Dangerous command")
	warning := c.theme.ConfirmWarning.Render(c.Warning)
	cmdLine := c.theme.HeaderDesc.Render(c.CommandLine)

	yes := c.theme.ConfirmButton.Render("Run it")
	no := c.theme.ConfirmButtonActive.Render("Cancel")
	if c.YesFocused {
		yes = c.theme.ConfirmButtonActive.Render("Run it")
		no = c.theme.ConfirmButton.Render("Cancel")
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, no, "  ", yes)

	body := lipgloss.JoinVertical(lipgloss.Left, title, "", warning, cmdLine, "", buttons)

	box := c.theme.ConfirmBox.Render(body)
	return lipgloss.Place(c.Width, lipgloss.Height(box)+2, lipgloss.Center, lipgloss.Center, box)
}
