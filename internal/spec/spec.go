// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// FIELD KINDS
// =============================================================================

// Kind is the closed set of field types a wrapped command can expose.
// Every component that renders, builds or classifies a field switches
// exhaustively over this set.
type Kind int

const (
	// KindString is a free-form text value (the default).
	KindString Kind = iota
	// KindFlag is a boolean switch with no argument.
	KindFlag
	// KindEnum is a value restricted to an ordered set of choices.
	KindEnum
	// KindSecret is a password or token; never cached, logged or echoed.
	KindSecret
	// KindPath is a filesystem path; tilde-expanded at build time.
	KindPath
	// KindNumeric is an integer or decimal value.
	KindNumeric
)

// String returns the canonical wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindEnum:
		return "enum"
	case KindSecret:
		return "secret"
	case KindPath:
		return "path"
	case KindNumeric:
		return "numeric"
	default:
		return "string"
	}
}

// MarshalJSON encodes the kind as its canonical name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind from the many spellings LLMs produce.
// Unknown names decode to KindString rather than failing: a wrong widget
// is recoverable, a rejected spec is not.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("field kind must be a string: %w", err)
	}
	*k = ParseKind(s)
	return nil
}

// ParseKind maps a kind name (including common LLM synonyms) to a Kind.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flag", "bool", "boolean", "switch":
		return KindFlag
	case "enum", "choice", "choices", "select", "option":
		return KindEnum
	case "secret", "password", "token", "credential":
		return KindSecret
	case "path", "file", "filename", "filepath", "directory", "dir":
		return KindPath
	case "numeric", "number", "int", "integer", "float", "decimal", "double":
		return KindNumeric
	default:
		return KindString
	}
}

// =============================================================================
// FIELD SPEC
// =============================================================================

// FieldSpec describes one argument, flag or option of a wrapped command.
type FieldSpec struct {
	// Name is the stable identifier: the long flag (e.g. "--output") for
	// options, or the bare argument name for positionals. It keys the value
	// cache and the argv mapping.
	Name string `json:"name"`

	// ShortName is the optional short flag alias (e.g. "-o").
	ShortName string `json:"short_name,omitempty"`

	// Kind selects the widget, the builder emission and the guard policy.
	Kind Kind `json:"kind"`

	// Required fields must be non-empty before the command may execute.
	Required bool `json:"required"`

	// Positional fields are emitted by Order instead of by flag name.
	Positional bool `json:"positional"`

	// Order is the argv position for positional fields (ignored otherwise).
	Order int `json:"order"`

	// Sensitive values are excluded from caching, logging and history.
	// KindSecret is always sensitive regardless of this flag.
	Sensitive bool `json:"sensitive"`

	// Help is the short description shown next to the field.
	Help string `json:"help,omitempty"`

	// Choices is the ordered value set for KindEnum.
	Choices []string `json:"choices,omitempty"`

	// Default is the value used when the user leaves the field empty.
	Default string `json:"default,omitempty"`
}

// IsSecret reports whether the field must be treated as sensitive.
// Kind wins over the explicit flag so a misclassified password can only
// fail closed.
func (f *FieldSpec) IsSecret() bool {
	return f.Kind == KindSecret || f.Sensitive
}

// ArgvFlag returns the flag token as it appears in a built argv:
// "--name" for long names, "-x" for single letters, and names already
// carrying a dash pass through. The builder and the redaction guard must
// agree on this spelling.
func (f *FieldSpec) ArgvFlag() string {
	if strings.HasPrefix(f.Name, "-") {
		return f.Name
	}
	if len(f.Name) == 1 {
		return "-" + f.Name
	}
	return "--" + f.Name
}

// Label returns the display label: "short, long" when a short alias exists.
func (f *FieldSpec) Label() string {
	if f.ShortName != "" && f.ShortName != f.Name {
		return f.ShortName + ", " + f.Name
	}
	return f.Name
}

// =============================================================================
// COMMAND SPEC
// =============================================================================

// CommandSpec is the root entity for one wrapped command.
// It is immutable after Validate succeeds and is shared by reference.
type CommandSpec struct {
	// Identity is the command name plus argument path, e.g. "git commit".
	Identity string `json:"identity"`

	// Description is a one-line summary from the help text.
	Description string `json:"description,omitempty"`

	// Fields in form-navigation order. Positional fields additionally carry
	// an Order that fixes their argv position.
	Fields []FieldSpec `json:"fields"`

	// Dangerous marks destructive commands; execution requires confirmation.
	Dangerous bool `json:"dangerous"`

	// DangerWarning is optional free text explaining why.
	DangerWarning string `json:"danger_warning,omitempty"`

	// Examples are usage lines lifted from the help text.
	Examples []string `json:"examples,omitempty"`
}

// Field returns the field with the given name, or nil.
func (s *CommandSpec) Field(name string) *FieldSpec {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// Positionals returns the positional fields sorted by ascending Order.
// Fields are returned by reference, like Field.
func (s *CommandSpec) Positionals() []*FieldSpec {
	var out []*FieldSpec
	for i := range s.Fields {
		if s.Fields[i].Positional {
			out = append(out, &s.Fields[i])
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Order < out[j-1].Order; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Options returns the non-positional fields in spec order, by reference.
func (s *CommandSpec) Options() []*FieldSpec {
	var out []*FieldSpec
	for i := range s.Fields {
		if !s.Fields[i].Positional {
			out = append(out, &s.Fields[i])
		}
	}
	return out
}

// Argv0 returns the program tokens of the identity ("git commit" ->
// ["git", "commit"]).
func (s *CommandSpec) Argv0() []string {
	return strings.Fields(s.Identity)
}

// =============================================================================
// DECODING
// =============================================================================

// Decode parses a CommandSpec from the structured output of the LLM parser
// and validates it. Malformed input is rejected with a *SpecError rather
// than coerced: downstream components assume a validated spec.
//
// Decoding is tolerant of scalar type drift (numbers or booleans where
// strings are expected) because models produce it routinely; structural
// problems are still hard errors.
func Decode(data []byte) (*CommandSpec, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw rawSpec
	if err := dec.Decode(&raw); err != nil {
		return nil, &SpecError{Reason: "invalid JSON: " + err.Error()}
	}

	s := &CommandSpec{
		Identity:      strings.TrimSpace(raw.Identity.String()),
		Description:   raw.Description.String(),
		Dangerous:     raw.Dangerous,
		DangerWarning: raw.DangerWarning.String(),
		Examples:      raw.Examples,
	}

	for i, rf := range raw.Fields {
		f := FieldSpec{
			Name:       strings.TrimSpace(rf.Name.String()),
			ShortName:  strings.TrimSpace(rf.ShortName.String()),
			Kind:       ParseKind(rf.Kind.String()),
			Required:   rf.Required,
			Positional: rf.Positional,
			Sensitive:  rf.Sensitive,
			Help:       rf.Help.String(),
			Choices:    rf.Choices,
			Default:    rf.Default.String(),
		}
		if rf.Order != nil {
			f.Order = *rf.Order
		} else if rf.Positional {
			f.Order = i
		}
		// Flags carry no argument, so a "required flag" is a contradiction
		// the model sometimes emits. Demote rather than reject.
		if f.Kind == KindFlag {
			f.Required = false
		}
		s.Fields = append(s.Fields, f)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// rawSpec mirrors CommandSpec with drift-tolerant scalar types.
type rawSpec struct {
	Identity      flexString `json:"identity"`
	Description   flexString `json:"description"`
	Fields        []rawField `json:"fields"`
	Dangerous     bool       `json:"dangerous"`
	DangerWarning flexString `json:"danger_warning"`
	Examples      []string   `json:"examples"`
}

type rawField struct {
	Name       flexString `json:"name"`
	ShortName  flexString `json:"short_name"`
	Kind       flexString `json:"kind"`
	Required   bool       `json:"required"`
	Positional bool       `json:"positional"`
	Order      *int       `json:"order"`
	Sensitive  bool       `json:"sensitive"`
	Help       flexString `json:"help"`
	Choices    []string   `json:"choices"`
	Default    flexString `json:"default"`
}

// flexString accepts a JSON string, number, boolean or null.
// Models return `false` or `0` where they mean "no value"; both map to "".
type flexString struct {
	value string
}

func (f *flexString) String() string { return f.value }

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" || string(trimmed) == "false" {
		f.value = ""
		return nil
	}
	if string(trimmed) == "true" {
		f.value = "true"
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		f.value = s
		return nil
	}
	// Bare number: keep its textual form.
	if _, err := strconv.ParseFloat(string(trimmed), 64); err == nil {
		f.value = string(trimmed)
		return nil
	}
	return fmt.Errorf("cannot decode %s as string", string(trimmed))
}
