// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/muesli/termenv"

	"github.com/jeranaias/quocli/internal/builder"
	"github.com/jeranaias/quocli/internal/security"
	"github.com/jeranaias/quocli/internal/spec"
	"github.com/jeranaias/quocli/internal/ui/styles"
)

// =============================================================================
// COMMAND PREVIEW COMPONENT
// =============================================================================

// Preview renders the live command line as the user fills the form.
// Secrets appear as the fixed mask; the real value never reaches this
// component's output.
type Preview struct {
	Width int
	theme *styles.Theme
}

// NewPreview builds the preview panel.
func NewPreview(theme *styles.Theme) *Preview {
	return &Preview{Width: 80, theme: theme}
}

// SetWidth updates the preview width.
func (p *Preview) SetWidth(width int) {
	p.Width = width
}

// View renders the preview box for the current values. Missing required
// fields render as <name> so the shape of the final command is always
// visible.
func (p *Preview) View(cs *spec.CommandSpec, values map[string]string) string {
	line := CommandLine(cs, values)
	body := p.highlight(line)

	title := p.theme.PreviewTitle.Render("Command")
	return p.theme.PreviewBox.Width(p.Width - 2).Render(title + "\n" + body)
}

// CommandLine produces the redacted, display-ready command string.
// Exported for the plain fallback mode, which prints it without styling.
func CommandLine(cs *spec.CommandSpec, values map[string]string) string {
	filled := make(map[string]string, len(values))
	for k, v := range values {
		filled[k] = v
	}
	for i := range cs.Fields {
		f := &cs.Fields[i]
		if f.Required && filled[f.Name] == "" {
			filled[f.Name] = "<" + f.Name + ">"
		}
	}

	argv, err := builder.Build(cs, filled)
	if err != nil {
		// Required gaps were plugged above; any remaining failure is a
		// value that would be rejected at build time. Show what we can.
		return cs.Identity
	}

	tokens := make([]string, len(argv))
	for i, tok := range argv {
		if _, ok := builder.PlaceholderName(tok); ok {
			tokens[i] = security.Mask
			continue
		}
		tokens[i] = shellQuote(tok)
	}
	return strings.Join(tokens, " ")
}

// highlight runs the command line through chroma's bash lexer, sized to
// the terminal's color capability. Highlighting failures fall back to
// plain text; the preview must never break the form.
func (p *Preview) highlight(line string) string {
	if termenv.ColorProfile() == termenv.Ascii {
		return line
	}
	formatter := "terminal256"
	if p.theme.HasTrueColor {
		formatter = "terminal16m"
	}
	style := "friendly"
	if p.theme.IsDark {
		style = "monokai"
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, line, "bash", formatter, style); err != nil {
		return line
	}
	return strings.TrimRight(buf.String(), "\n")
}

// shellQuote quotes a token for display when it contains whitespace or
// shell metacharacters. Display only: execution always uses the argv
// vector, never this string.
func shellQuote(tok string) string {
	if tok == "" {
		return "''"
	}
	if !strings.ContainsAny(tok, " \t\n\"'`$&|;<>()*?[]#~") {
		return tok
	}
	return "'" + strings.ReplaceAll(tok, "'", `'\''`) + "'"
}
