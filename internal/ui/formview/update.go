// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package formview

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/quocli/internal/form"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.setWidths()
		return m, nil

	case ConfigReloadedMsg:
		m.applyConfig(msg)
		return m, nil

	case tea.KeyMsg:
		// Ctrl+C cancels from every state, including mid-edit.
		if msg.String() == "ctrl+c" {
			m.form.Cancel()
			return m, tea.Quit
		}

		switch m.form.State() {
		case form.StateEditing:
			return m.updateEditing(msg)
		case form.StateConfirming:
			return m.updateConfirming(msg)
		case form.StateNavigating:
			return m.updateNavigating(msg)
		}
	}

	return m, nil
}

func (m *Model) updateNavigating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.form.Cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.form.Prev()

	case key.Matches(msg, m.keys.Down):
		m.form.Next()

	case key.Matches(msg, m.keys.Home):
		m.form.First()

	case key.Matches(msg, m.keys.End):
		m.form.Last()

	case key.Matches(msg, m.keys.CycleBack):
		m.form.CycleBack()

	case key.Matches(msg, m.keys.Activate):
		m.startEdit()

	case key.Matches(msg, m.keys.Execute):
		m.form.RequestExecute()
		switch m.form.State() {
		case form.StateConfirming:
			m.openConfirm()
		case form.StateDone:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Commit):
		m.form.SetBuffer(m.input.Value())
		if m.form.Commit() {
			m.input.Blur()
			m.input.SetValue("")
		}
		return m, nil

	case key.Matches(msg, m.keys.CancelOp):
		m.form.CancelEdit()
		m.input.Blur()
		m.input.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.form.SetBuffer(m.input.Value())
	return m, cmd
}

func (m *Model) updateConfirming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CancelOp), key.Matches(msg, m.keys.Quit):
		m.form.Deny()
		m.confirm = nil
		return m, nil

	case key.Matches(msg, m.keys.CycleBack),
		msg.String() == "right", msg.String() == "tab", msg.String() == "left":
		if m.confirm != nil {
			m.confirm.Toggle()
		}
		return m, nil

	case key.Matches(msg, m.keys.Activate):
		if m.confirm != nil && m.confirm.YesFocused {
			m.form.Confirm()
			return m, tea.Quit
		}
		m.form.Deny()
		m.confirm = nil
		return m, nil
	}
	return m, nil
}
