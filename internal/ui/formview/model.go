// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package formview

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/quocli/internal/form"
	"github.com/jeranaias/quocli/internal/security"
	"github.com/jeranaias/quocli/internal/spec"
	"github.com/jeranaias/quocli/internal/ui/components"
	"github.com/jeranaias/quocli/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// Options configure the form view.
type Options struct {
	// ShowPreview renders the live command preview panel.
	ShowPreview bool
	// ShowExamples renders the spec's usage examples under the fields.
	ShowExamples bool
}

// Model is the Bubble Tea model wrapping a form. The form owns all
// session state; the model only translates keys and renders.
type Model struct {
	form    *form.Form
	keys    KeyMap
	theme   *styles.Theme
	opts    Options
	header  *components.Header
	preview *components.Preview
	status  *components.StatusBar
	confirm *components.Confirm
	input   textinput.Model

	width  int
	height int
}

// New builds the view for a form.
func New(f *form.Form, theme *styles.Theme, opts Options) *Model {
	cs := f.Spec()

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 0

	return &Model{
		form:    f,
		keys:    DefaultKeyMap(),
		theme:   theme,
		opts:    opts,
		header:  components.NewHeader(theme, cs, security.IsDangerous(cs)),
		preview: components.NewPreview(theme),
		status:  components.NewStatusBar(theme),
		input:   ti,
		width:   80,
		height:  24,
	}
}

// Form exposes the underlying form for the session owner.
func (m *Model) Form() *form.Form {
	return m.form
}

// ConfigReloadedMsg tells a running view that the config file changed on
// disk. The session owner sends it from the config watcher's callback.
type ConfigReloadedMsg struct {
	Theme        *styles.Theme
	ShowPreview  bool
	ShowExamples bool
}

// applyConfig swaps the theme and rebuilds every themed component,
// keeping the form state untouched.
func (m *Model) applyConfig(msg ConfigReloadedMsg) {
	if msg.Theme == nil {
		return
	}
	cs := m.form.Spec()
	m.theme = msg.Theme
	m.theme.SetSize(m.width, m.height)
	m.opts.ShowPreview = msg.ShowPreview
	m.opts.ShowExamples = msg.ShowExamples
	m.header = components.NewHeader(m.theme, cs, security.IsDangerous(cs))
	m.preview = components.NewPreview(m.theme)
	m.status = components.NewStatusBar(m.theme)
	if m.confirm != nil {
		yes := m.confirm.YesFocused
		m.openConfirm()
		m.confirm.YesFocused = yes
	}
	m.setWidths()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// startEdit configures the text input for the focused field and hands
// the form to Editing. Secrets echo as dots and never show their
// current value as a placeholder.
func (m *Model) startEdit() {
	f := m.form.Current()
	if f == nil {
		return
	}
	m.form.Activate()
	if m.form.State() != form.StateEditing {
		return // flags and enums act immediately
	}

	m.input.SetValue(m.form.Buffer())
	m.input.CursorEnd()
	m.input.Placeholder = f.Spec.Default
	if f.Spec.IsSecret() || f.Spec.Kind == spec.KindSecret {
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '•'
		m.input.Placeholder = ""
	} else {
		m.input.EchoMode = textinput.EchoNormal
	}
	m.input.Focus()
}

// openConfirm builds the danger dialog for the current form values.
func (m *Model) openConfirm() {
	cs := m.form.Spec()
	m.confirm = components.NewConfirm(
		m.theme,
		security.DangerWarning(cs),
		components.CommandLine(cs, m.form.Values()),
	)
	m.confirm.SetWidth(m.width)
}

func (m *Model) setWidths() {
	m.header.SetWidth(m.width)
	m.preview.SetWidth(m.width)
	m.status.SetWidth(m.width)
	if m.confirm != nil {
		m.confirm.SetWidth(m.width)
	}
	m.input.Width = m.width - 8
}
