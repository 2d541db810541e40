// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package builder turns a spec plus committed values into an argv token
// vector. It never produces a shell string, and it never embeds a secret:
// secret-kind values come out as placeholder tokens that the executor
// resolves at the last possible moment.
package builder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jeranaias/quocli/internal/form"
	"github.com/jeranaias/quocli/internal/security"
	"github.com/jeranaias/quocli/internal/shell"
	"github.com/jeranaias/quocli/internal/spec"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrMissingRequired is matched by errors.Is against MissingRequiredError.
var ErrMissingRequired = errors.New("missing required fields")

// MissingRequiredError names the required fields without values.
type MissingRequiredError struct {
	Fields []string
}

// Error implements the error interface.
func (e *MissingRequiredError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Is matches ErrMissingRequired.
func (e *MissingRequiredError) Is(target error) bool {
	return target == ErrMissingRequired
}

// =============================================================================
// SECRET PLACEHOLDERS
// =============================================================================

// Placeholder returns the argv token standing in for a secret field's
// value. The token format lives in the security package so the redaction
// guard recognizes it too.
func Placeholder(name string) string {
	return security.SecretToken(name)
}

// PlaceholderName extracts the field name from a placeholder token. The
// second return is false for ordinary tokens.
func PlaceholderName(token string) (string, bool) {
	return security.SecretTokenName(token)
}

// =============================================================================
// BUILD
// =============================================================================

// Build assembles the argv token vector for a spec and its values.
// Layout: command words, positionals in ascending order, then options in
// declaration order. Flags emit `--name` only when set; value kinds emit
// the pair `--name`, `value`; secrets emit a placeholder in the value
// slot. Deterministic: equal inputs give equal output.
func Build(cs *spec.CommandSpec, values map[string]string) ([]string, error) {
	if missing := missingRequired(cs, values); len(missing) > 0 {
		return nil, &MissingRequiredError{Fields: missing}
	}

	argv := append([]string(nil), strings.Fields(cs.Identity)...)

	for _, f := range cs.Positionals() {
		v := values[f.Name]
		if v == "" {
			continue // optional positional left blank
		}
		token, err := renderValue(f, v)
		if err != nil {
			return nil, err
		}
		argv = append(argv, token)
	}

	for _, f := range cs.Options() {
		v := values[f.Name]
		if f.Kind == spec.KindFlag {
			if v == form.FlagSet {
				argv = append(argv, f.ArgvFlag())
			}
			continue
		}
		if v == "" {
			continue
		}
		token, err := renderValue(f, v)
		if err != nil {
			return nil, err
		}
		argv = append(argv, f.ArgvFlag(), token)
	}

	return argv, nil
}

func missingRequired(cs *spec.CommandSpec, values map[string]string) []string {
	var missing []string
	for i := range cs.Fields {
		f := &cs.Fields[i]
		if f.Required && values[f.Name] == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// renderValue produces the value token for a field, applying kind rules:
// sensitive fields become placeholders, paths get tilde expansion, numerics
// must still parse (the form validates, but Build is also reachable from
// --direct with cached values).
func renderValue(f *spec.FieldSpec, v string) (string, error) {
	if security.IsSensitive(f) {
		return Placeholder(f.Name), nil
	}

	// quocli execs the child directly, no shell in between, so $VAR
	// references typed into the form are resolved here. Secrets never
	// reach this path.
	if shell.ContainsEnvVar(v) {
		v = shell.ResolveEnvVars(v)
	}

	switch f.Kind {
	case spec.KindPath:
		return expandTilde(v), nil
	case spec.KindNumeric:
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return "", fmt.Errorf("field %s: %q is not a number", f.Name, v)
		}
	case spec.KindEnum:
		for _, c := range f.Choices {
			if c == v {
				return v, nil
			}
		}
		return "", fmt.Errorf("field %s: %q is not a valid choice", f.Name, v)
	}
	return v, nil
}

// expandTilde resolves a leading ~ against the current user's home
// directory. Anything else passes through untouched.
func expandTilde(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		if p == "~" {
			return home
		}
		return filepath.Join(home, p[2:])
	}
	return p
}
