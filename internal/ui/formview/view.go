// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package formview

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/quocli/internal/form"
	"github.com/jeranaias/quocli/internal/security"
	"github.com/jeranaias/quocli/internal/shell"
	"github.com/jeranaias/quocli/internal/spec"
	"github.com/jeranaias/quocli/internal/ui/components"
	"github.com/jeranaias/quocli/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// labelColumn is the width of the field-name column.
const labelColumn = 24

// View implements tea.Model.
func (m *Model) View() string {
	if m.form.State() == form.StateDone {
		return ""
	}
	if m.form.State() == form.StateConfirming && m.confirm != nil {
		return m.confirm.View()
	}

	sections := []string{m.header.View(), m.fieldList()}

	if m.opts.ShowExamples {
		if ex := m.examples(); ex != "" {
			sections = append(sections, ex)
		}
	}
	if m.opts.ShowPreview {
		sections = append(sections, m.preview.View(m.form.Spec(), m.form.Values()))
	}
	sections = append(sections, m.statusLine())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// fieldList renders one row per field, with the focused row highlighted
// and the editor inlined when open.
func (m *Model) fieldList() string {
	var rows []string
	for i, f := range m.form.Fields() {
		focused := i == m.form.Cursor()
		if focused && m.form.State() == form.StateEditing {
			rows = append(rows, m.editRow(f))
			continue
		}
		rows = append(rows, m.fieldRow(f, focused))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) fieldRow(f *form.Field, focused bool) string {
	label := m.theme.FieldLabel.Render(f.Spec.Label())
	if f.Spec.Required {
		label += m.theme.RequiredMark.Render("*")
	}

	value := m.renderValue(f)

	pad := labelColumn - lipgloss.Width(label)
	if pad < 1 {
		pad = 1
	}
	row := label + strings.Repeat(" ", pad) + value

	if f.Err != "" {
		row += "  " + m.theme.FieldError.Render(f.Err)
	} else if focused && f.Spec.Help != "" {
		row += "  " + m.theme.FieldHelp.Render(util.TruncateWidth(f.Spec.Help, m.width/2))
	}

	if focused {
		return m.theme.FieldRowFocused.Width(m.width).Render(row)
	}
	return m.theme.FieldRow.Width(m.width).Render(row)
}

// renderValue shows a field's committed value: mask for secrets, on/off
// for flags, a muted hint when empty.
func (m *Model) renderValue(f *form.Field) string {
	switch f.Spec.Kind {
	case spec.KindFlag:
		if f.Value == form.FlagSet {
			return m.theme.FieldValue.Render("[x]")
		}
		return m.theme.FieldValueEmpty.Render("[ ]")
	case spec.KindEnum:
		if f.Value == "" {
			return m.theme.FieldValueEmpty.Render("(none)")
		}
		return m.theme.EnumChoice.Render(f.Value)
	}

	if f.Value == "" {
		hint := "(empty)"
		if f.Spec.Default != "" {
			hint = "(default: " + f.Spec.Default + ")"
		}
		return m.theme.FieldValueEmpty.Render(hint)
	}
	if security.IsSensitive(f.Spec) {
		return m.theme.FieldSecret.Render(security.Redact(f.Value))
	}
	return m.theme.FieldValue.Render(util.TruncateWidth(f.Value, m.width/2))
}

func (m *Model) editRow(f *form.Field) string {
	label := m.theme.FieldLabel.Render(f.Spec.Label())
	row := label + " " + m.input.View()
	if f.Err != "" {
		row += "  " + m.theme.FieldError.Render(f.Err)
	}
	if hints := m.envSuggestions(); hints != "" {
		row += "\n" + hints
	}
	return m.theme.FieldRowFocused.Width(m.width).Render(row)
}

// envSuggestions renders completion hints while the edit buffer ends in
// an environment variable reference. Never shown for secret fields.
func (m *Model) envSuggestions() string {
	if m.input.EchoMode != textinput.EchoNormal {
		return ""
	}
	buf := m.input.Value()
	i := strings.LastIndexByte(buf, '$')
	if i < 0 || strings.ContainsAny(buf[i+1:], " \t}/") {
		return ""
	}

	suggestions := shell.Suggestions(buf[i+1:])
	if len(suggestions) == 0 {
		return ""
	}

	parts := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		hint := "$" + s.Name
		if s.Value != "" {
			hint += "=" + util.TruncateWidth(s.Value, 16)
		}
		parts = append(parts, hint)
	}
	return m.theme.FieldHelp.Render(util.TruncateWidth(strings.Join(parts, "  "), m.width-4))
}

// examples renders the spec's usage examples, when present.
func (m *Model) examples() string {
	ex := m.form.Spec().Examples
	if len(ex) == 0 {
		return ""
	}
	var lines []string
	for _, e := range ex {
		lines = append(lines, m.theme.FieldHelp.Render("  "+util.TruncateWidth(e, m.width-4)))
	}
	return m.theme.PreviewTitle.Render("Examples") + "\n" + strings.Join(lines, "\n")
}

func (m *Model) statusLine() string {
	m.status.SetNotice(m.form.Message())
	m.status.SetShortcuts(m.shortcuts())
	return m.status.View()
}

// shortcuts returns the key hints for the current state.
func (m *Model) shortcuts() []components.Shortcut {
	switch m.form.State() {
	case form.StateEditing:
		return []components.Shortcut{
			{Key: "enter", Desc: "commit"},
			{Key: "esc", Desc: "cancel"},
		}
	default:
		hints := []components.Shortcut{
			{Key: "up/down", Desc: "move"},
			{Key: "enter", Desc: "edit/toggle"},
			{Key: "ctrl+r", Desc: "run"},
			{Key: "q", Desc: "quit"},
		}
		if cur := m.form.Current(); cur != nil && cur.Spec.Kind == spec.KindEnum {
			hints = append(hints[:2], append([]components.Shortcut{
				{Key: "S-tab", Desc: "prev choice"},
			}, hints[2:]...)...)
		}
		return hints
	}
}

