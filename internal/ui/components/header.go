// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the quocli
// form: header, command preview, confirm dialog, and status bar.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/quocli/internal/spec"
	"github.com/jeranaias/quocli/internal/ui/styles"
	"github.com/jeranaias/quocli/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: command identity, description, and the danger
// badge when the spec is flagged destructive.
type Header struct {
	Identity    string
	Description string
	Dangerous   bool
	Width       int
	theme       *styles.Theme
}

// NewHeader builds the header for a spec.
func NewHeader(theme *styles.Theme, cs *spec.CommandSpec, dangerous bool) *Header {
	return &Header{
		Identity:    cs.Identity,
		Description: cs.Description,
		Dangerous:   dangerous,
		Width:       80,
		theme:       theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}

	title := h.theme.HeaderTitle.Render(h.Identity)
	if h.Dangerous {
		title += " " + h.theme.DangerBadge.Render("DANGEROUS")
	}

	lines := []string{title}
	if h.Description != "" {
		lines = append(lines, h.theme.HeaderDesc.Render(
			util.TruncateWidth(h.Description, width-4)))
	}

	return h.theme.Header.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// ViewCompact renders a single-line header for narrow terminals.
func (h *Header) ViewCompact() string {
	parts := []string{h.theme.HeaderTitle.Render(h.Identity)}
	if h.Dangerous {
		parts = append(parts, h.theme.DangerBadge.Render("DANGEROUS"))
	}
	return strings.Join(parts, " ")
}
