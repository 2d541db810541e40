// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"strings"

	"github.com/jeranaias/quocli/internal/spec"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// Mask is the fixed replacement for sensitive values in any displayed or
// persisted text. A fixed mask leaks neither length nor content.
const Mask = "***"

// dangerKeywords is the heuristic vocabulary for destructive behavior.
// The list is deliberately short and high-precision: a false positive only
// costs the user one extra confirmation.
var dangerKeywords = []string{
	"delete",
	"remove",
	"destroy",
	"overwrite",
	"format",
	"purge",
	"wipe",
	"erase",
	"force",
	"irreversib",
	"permanent",
	"kill",
}

// secretNameFragments match field or environment variable names that imply
// a credential even when the spec forgot to flag them.
var secretNameFragments = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api-key",
	"api_key",
	"apikey",
	"credential",
	"private-key",
	"private_key",
}

// =============================================================================
// SENSITIVITY
// =============================================================================

// IsSensitive reports whether a field's value must never be cached, logged
// or displayed unmasked. Secret kind, the explicit sensitive flag, and a
// credential-looking name all qualify; the name check is the fail-closed
// backstop for misclassified specs.
func IsSensitive(f *spec.FieldSpec) bool {
	if f == nil {
		return true
	}
	if f.IsSecret() {
		return true
	}
	return looksSecret(f.Name)
}

// looksSecret reports whether an identifier resembles a credential name.
func looksSecret(name string) bool {
	lower := strings.ToLower(name)
	for _, frag := range secretNameFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// IsSecretEnvName reports whether an environment variable name should have
// its value suppressed in suggestion popups.
func IsSecretEnvName(name string) bool {
	return looksSecret(name)
}

// =============================================================================
// SECRET PLACEHOLDERS
// =============================================================================

// Placeholder tokens stand in for secret values inside a built argv so that
// the raw secret never travels through previews, logs, or history. NUL bytes
// cannot appear in real arguments, which makes the token unambiguous.
const (
	placeholderPrefix = "\x00secret:"
	placeholderSuffix = "\x00"
)

// SecretToken returns the placeholder token standing in for the named
// secret field's value.
func SecretToken(name string) string {
	return placeholderPrefix + name + placeholderSuffix
}

// SecretTokenName returns the field name encoded in a placeholder token,
// and whether the string is one.
func SecretTokenName(token string) (string, bool) {
	if !strings.HasPrefix(token, placeholderPrefix) || !strings.HasSuffix(token, placeholderSuffix) {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(token, placeholderPrefix), placeholderSuffix)
	if name == "" {
		return "", false
	}
	return name, true
}

// =============================================================================
// REDACTION
// =============================================================================

// Redact returns the fixed mask for any non-empty value.
// Empty stays empty so redacted output still shows which fields were unset.
func Redact(value string) string {
	if value == "" {
		return ""
	}
	return Mask
}

// RedactValues returns a copy of values with every sensitive field masked.
// Names absent from the spec are masked too (fail closed).
func RedactValues(s *spec.CommandSpec, values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for name, v := range values {
		f := s.Field(name)
		if f == nil || IsSensitive(f) {
			out[name] = Redact(v)
		} else {
			out[name] = v
		}
	}
	return out
}

// RedactArgs masks the argv tokens that hold sensitive values: placeholder
// tokens the builder emitted for secret fields, and any token following a
// sensitive field's flag as the builder spells it.
func RedactArgs(s *spec.CommandSpec, argv []string) []string {
	sensitiveFlag := make(map[string]bool)
	for i := range s.Fields {
		f := &s.Fields[i]
		if !f.Positional && IsSensitive(f) {
			sensitiveFlag[f.ArgvFlag()] = true
		}
	}

	out := make([]string, len(argv))
	maskNext := false
	for i, tok := range argv {
		if _, ok := SecretTokenName(tok); ok {
			out[i] = Mask
			maskNext = false
			continue
		}
		if maskNext {
			out[i] = Redact(tok)
			maskNext = false
			continue
		}
		out[i] = tok
		maskNext = sensitiveFlag[tok]
	}
	return out
}

// =============================================================================
// DANGER DETECTION
// =============================================================================

// IsDangerous reports whether executing the spec requires confirmation.
// The LLM's own flag wins; the keyword heuristic over the description and
// field help catches specs where the model missed it.
func IsDangerous(s *spec.CommandSpec) bool {
	if s.Dangerous {
		return true
	}
	if containsDangerKeyword(s.Description) {
		return true
	}
	for i := range s.Fields {
		if containsDangerKeyword(s.Fields[i].Help) && s.Fields[i].Kind == spec.KindFlag {
			return true
		}
	}
	return false
}

// DangerWarning returns the text shown in the confirmation dialog.
func DangerWarning(s *spec.CommandSpec) string {
	if s.DangerWarning != "" {
		return s.DangerWarning
	}
	return "This command may modify or destroy data."
}

func containsDangerKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range dangerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
