// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package form

import (
	"strconv"
	"strings"

	"github.com/jeranaias/quocli/internal/security"
	"github.com/jeranaias/quocli/internal/spec"
)

// FlagSet is the committed value of a toggled-on flag field. Flags are
// either this or empty; no other value is ever stored for them.
const FlagSet = "true"

// Field pairs a field definition with its session value and the last
// commit error, if any.
type Field struct {
	Spec  *spec.FieldSpec
	Value string
	Err   string
}

// Set reports whether the field currently holds a value.
func (f *Field) Set() bool {
	return f.Value != ""
}

// Toggle flips a flag field. Non-flag fields are left alone.
func (f *Field) Toggle() {
	if f.Spec.Kind != spec.KindFlag {
		return
	}
	if f.Value == FlagSet {
		f.Value = ""
	} else {
		f.Value = FlagSet
	}
}

// Cycle advances an enum field to its next choice. Required enums wrap
// through the choices; optional enums pass through an empty slot after the
// last choice so the field can be unset again. A value not present in the
// choices (stale pre-fill) restarts at the first choice.
func (f *Field) Cycle(back bool) {
	if f.Spec.Kind != spec.KindEnum || len(f.Spec.Choices) == 0 {
		return
	}

	choices := f.Spec.Choices
	n := len(choices)
	if !f.Spec.Required {
		n++ // the empty slot
	}

	idx := -1
	for i, c := range choices {
		if c == f.Value {
			idx = i
			break
		}
	}
	if idx == -1 && f.Value != "" {
		f.Value = choices[0]
		return
	}
	if idx == -1 {
		// Empty: for required enums the empty slot does not exist, so
		// entry lands on the first (or last) real choice.
		if f.Spec.Required {
			if back {
				f.Value = choices[len(choices)-1]
			} else {
				f.Value = choices[0]
			}
			return
		}
		idx = n - 1 // the empty slot's position
	}

	if back {
		idx = (idx - 1 + n) % n
	} else {
		idx = (idx + 1) % n
	}

	if idx >= len(choices) {
		f.Value = ""
	} else {
		f.Value = choices[idx]
	}
}

// Apply assigns a value directly, bypassing the edit buffer. Used by the
// non-interactive entry paths where there is no keystroke loop. Returns
// false and records Err when the value fails validation.
func (f *Field) Apply(value string) bool {
	if msg := f.validate(value); msg != "" {
		f.Err = msg
		return false
	}
	f.Value = value
	f.Err = ""
	return true
}

// validate checks a candidate value against the field's kind. Empty is
// always acceptable at commit time; required-ness is enforced at the
// execute gate, not per keystroke.
func (f *Field) validate(value string) string {
	if value == "" {
		return ""
	}
	switch f.Spec.Kind {
	case spec.KindNumeric:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return "not a number"
		}
	case spec.KindEnum:
		for _, c := range f.Spec.Choices {
			if c == value {
				return ""
			}
		}
		return "must be one of: " + strings.Join(f.Spec.Choices, ", ")
	}
	return ""
}

// zero drops sensitive values before release. Go strings are immutable,
// so the best available guarantee is releasing the last reference.
func (f *Field) zero() {
	if !security.IsSensitive(f.Spec) {
		return
	}
	f.Value = ""
	f.Err = ""
}
