// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spec

import "fmt"

// =============================================================================
// ERRORS
// =============================================================================

// SpecError reports a malformed command spec.
// Use errors.As to recover the reason.
type SpecError struct {
	Reason string
}

func (e *SpecError) Error() string {
	return "malformed command spec: " + e.Reason
}

// Is lets callers match any *SpecError with errors.Is.
func (e *SpecError) Is(target error) bool {
	_, ok := target.(*SpecError)
	return ok
}

// ErrMalformed is the sentinel for errors.Is checks against spec validation
// failures.
var ErrMalformed = &SpecError{Reason: "malformed"}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the structural invariants every downstream component
// relies on:
//
//   - a non-empty identity
//   - unique field names
//   - enum fields have at least one choice
//   - flag fields are never required
//   - positional fields have unique order values
func (s *CommandSpec) Validate() error {
	if s.Identity == "" {
		return &SpecError{Reason: "empty identity"}
	}

	names := make(map[string]struct{}, len(s.Fields))
	orders := make(map[int]string)

	for i := range s.Fields {
		f := &s.Fields[i]

		if f.Name == "" {
			return &SpecError{Reason: fmt.Sprintf("field %d has no name", i)}
		}
		if _, dup := names[f.Name]; dup {
			return &SpecError{Reason: "duplicate field name: " + f.Name}
		}
		names[f.Name] = struct{}{}

		if f.Kind == KindEnum && len(f.Choices) == 0 {
			return &SpecError{Reason: "enum field has no choices: " + f.Name}
		}
		if f.Kind == KindFlag && f.Required {
			return &SpecError{Reason: "flag field cannot be required: " + f.Name}
		}

		if f.Positional {
			if prev, dup := orders[f.Order]; dup {
				return &SpecError{Reason: fmt.Sprintf(
					"positional fields %q and %q share order %d", prev, f.Name, f.Order)}
			}
			orders[f.Order] = f.Name
		}
	}

	return nil
}
