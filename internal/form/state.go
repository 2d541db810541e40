// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package form

import (
	"fmt"

	"github.com/jeranaias/quocli/internal/security"
	"github.com/jeranaias/quocli/internal/spec"
)

// =============================================================================
// STATES
// =============================================================================

// State identifies where the session is in its lifecycle.
type State int

const (
	// StateNavigating moves the cursor over the field list.
	StateNavigating State = iota
	// StateEditing has an open text buffer on the focused field.
	StateEditing
	// StateConfirming awaits an explicit yes/no for a dangerous command.
	StateConfirming
	// StateDone is terminal; check Outcome for how the session ended.
	StateDone
)

// String returns the state name for status displays.
func (s State) String() string {
	switch s {
	case StateNavigating:
		return "navigating"
	case StateEditing:
		return "editing"
	case StateConfirming:
		return "confirming"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome says how a Done form ended.
type Outcome int

const (
	// OutcomeNone means the form is still live.
	OutcomeNone Outcome = iota
	// OutcomeExecute means the user asked for the command to run.
	OutcomeExecute
	// OutcomeCancelled means the user quit without executing.
	OutcomeCancelled
)

// =============================================================================
// FORM
// =============================================================================

// Form is the session state machine. It is not safe for concurrent use;
// both renderers drive it from a single goroutine.
type Form struct {
	spec    *spec.CommandSpec
	fields  []*Field
	cursor  int
	state   State
	outcome Outcome
	buffer  string
	message string
	closed  bool

	// confirmDangerous gates the Confirming detour; policy from config.
	confirmDangerous bool
}

// New builds a form for a spec. Positionals come first in argv order,
// then options in declaration order. Pre-fill values (from the value
// cache) are applied to non-sensitive fields only; field defaults fill
// whatever pre-fill left empty.
func New(cs *spec.CommandSpec, prefill map[string]string) *Form {
	f := &Form{spec: cs, state: StateNavigating, confirmDangerous: true}

	for _, p := range cs.Positionals() {
		f.fields = append(f.fields, &Field{Spec: p})
	}
	for _, o := range cs.Options() {
		f.fields = append(f.fields, &Field{Spec: o})
	}

	for _, fld := range f.fields {
		if v, ok := prefill[fld.Spec.Name]; ok && v != "" && !security.IsSensitive(fld.Spec) {
			if fld.validate(v) == "" {
				fld.Value = v
				continue
			}
		}
		if fld.Spec.Default != "" {
			fld.Value = fld.Spec.Default
		}
	}
	return f
}

// Spec returns the command spec the form was built from.
func (f *Form) Spec() *spec.CommandSpec { return f.spec }

// State returns the current state.
func (f *Form) State() State { return f.state }

// Outcome is meaningful once State is StateDone.
func (f *Form) Outcome() Outcome { return f.outcome }

// Fields exposes the ordered field list for rendering.
func (f *Form) Fields() []*Field { return f.fields }

// Cursor returns the focused field index.
func (f *Form) Cursor() int { return f.cursor }

// Current returns the focused field, or nil for an empty form.
func (f *Form) Current() *Field {
	if len(f.fields) == 0 {
		return nil
	}
	return f.fields[f.cursor]
}

// Message returns the current form-level notice (missing-required hint
// and similar). Cleared by the next successful transition.
func (f *Form) Message() string { return f.message }

// Buffer returns the open edit buffer. Only meaningful while Editing.
func (f *Form) Buffer() string { return f.buffer }

// =============================================================================
// NAVIGATION
// =============================================================================

// Next moves the cursor down one field, clamping at the last.
func (f *Form) Next() {
	if f.state != StateNavigating {
		return
	}
	f.message = ""
	if f.cursor < len(f.fields)-1 {
		f.cursor++
	}
}

// Prev moves the cursor up one field, clamping at the first.
func (f *Form) Prev() {
	if f.state != StateNavigating {
		return
	}
	f.message = ""
	if f.cursor > 0 {
		f.cursor--
	}
}

// First jumps to the top of the list.
func (f *Form) First() {
	if f.state == StateNavigating {
		f.message = ""
		f.cursor = 0
	}
}

// Last jumps to the bottom of the list.
func (f *Form) Last() {
	if f.state == StateNavigating && len(f.fields) > 0 {
		f.message = ""
		f.cursor = len(f.fields) - 1
	}
}

// =============================================================================
// ACTIVATION AND EDITING
// =============================================================================

// Activate acts on the focused field: flags toggle, enums cycle forward,
// everything else opens the editor with the buffer seeded from the
// current value.
func (f *Form) Activate() {
	cur := f.Current()
	if f.state != StateNavigating || cur == nil {
		return
	}
	f.message = ""
	cur.Err = ""

	switch cur.Spec.Kind {
	case spec.KindFlag:
		cur.Toggle()
	case spec.KindEnum:
		cur.Cycle(false)
	default:
		f.buffer = cur.Value
		f.state = StateEditing
	}
}

// CycleBack cycles the focused enum in reverse. No-op for other kinds.
func (f *Form) CycleBack() {
	cur := f.Current()
	if f.state != StateNavigating || cur == nil {
		return
	}
	if cur.Spec.Kind == spec.KindEnum {
		f.message = ""
		cur.Err = ""
		cur.Cycle(true)
	}
}

// SetBuffer replaces the edit buffer. The renderer owns keystrokes; the
// form only sees the resulting text.
func (f *Form) SetBuffer(s string) {
	if f.state == StateEditing {
		f.buffer = s
	}
}

// Commit validates the buffer against the field's kind and stores it.
// A rejected value keeps the form in Editing with the error attached to
// the field so the renderer can show it inline.
func (f *Form) Commit() bool {
	cur := f.Current()
	if f.state != StateEditing || cur == nil {
		return false
	}
	if msg := cur.validate(f.buffer); msg != "" {
		cur.Err = msg
		return false
	}
	cur.Value = f.buffer
	cur.Err = ""
	f.buffer = ""
	f.state = StateNavigating
	return true
}

// CancelEdit discards the buffer and returns to Navigating.
func (f *Form) CancelEdit() {
	if f.state != StateEditing {
		return
	}
	f.buffer = ""
	if cur := f.Current(); cur != nil {
		cur.Err = ""
	}
	f.state = StateNavigating
}

// =============================================================================
// EXECUTION GATE
// =============================================================================

// MissingRequired lists the names of required fields without a value, in
// display order.
func (f *Form) MissingRequired() []string {
	var missing []string
	for _, fld := range f.fields {
		if fld.Spec.Required && !fld.Set() {
			missing = append(missing, fld.Spec.Name)
		}
	}
	return missing
}

// RequestExecute asks to run the command. With required fields missing it
// refuses, jumps the cursor to the first gap, and stays in Navigating.
// Dangerous commands detour through Confirming; everything else completes
// immediately.
func (f *Form) RequestExecute() {
	if f.state != StateNavigating {
		return
	}

	if missing := f.MissingRequired(); len(missing) > 0 {
		f.message = "required: " + missing[0]
		for i, fld := range f.fields {
			if fld.Spec.Name == missing[0] {
				f.cursor = i
				break
			}
		}
		return
	}

	if f.confirmDangerous && security.IsDangerous(f.spec) {
		f.state = StateConfirming
		return
	}
	f.finish(OutcomeExecute)
}

// SetConfirmDangerous controls whether dangerous commands detour through
// Confirming. On by default; only config policy turns it off.
func (f *Form) SetConfirmDangerous(on bool) {
	f.confirmDangerous = on
}

// Confirm accepts the danger prompt and completes the form.
func (f *Form) Confirm() {
	if f.state == StateConfirming {
		f.finish(OutcomeExecute)
	}
}

// Deny rejects the danger prompt and returns to Navigating.
func (f *Form) Deny() {
	if f.state == StateConfirming {
		f.state = StateNavigating
	}
}

// Cancel ends the session without executing, from any live state.
func (f *Form) Cancel() {
	if f.state == StateDone {
		return
	}
	f.buffer = ""
	f.finish(OutcomeCancelled)
}

func (f *Form) finish(o Outcome) {
	f.state = StateDone
	f.outcome = o
	f.message = ""
}

// =============================================================================
// RESULTS AND TEARDOWN
// =============================================================================

// Values snapshots the committed field values by name. Secrets are
// included; the caller routes them through the builder's placeholder
// scheme and must Close the form when finished with them.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, fld := range f.fields {
		out[fld.Spec.Name] = fld.Value
	}
	return out
}

// CacheableValues snapshots only the values the value cache may keep:
// non-sensitive and non-empty.
func (f *Form) CacheableValues() map[string]string {
	out := make(map[string]string)
	for _, fld := range f.fields {
		if fld.Value != "" && !security.IsSensitive(fld.Spec) {
			out[fld.Spec.Name] = fld.Value
		}
	}
	return out
}

// Close zeroes sensitive field values and the edit buffer. Idempotent;
// the session owner defers it so every exit path scrubs. A live form is
// cancelled first.
func (f *Form) Close() {
	if f.closed {
		return
	}
	f.closed = true
	if f.state != StateDone {
		f.finish(OutcomeCancelled)
	}
	f.buffer = ""
	for _, fld := range f.fields {
		fld.zero()
	}
}
