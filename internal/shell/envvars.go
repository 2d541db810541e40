// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/jeranaias/quocli/internal/security"
)

// envVarPattern matches $VAR and ${VAR} references.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// maxSuggestions caps the completion list shown in the editor.
const maxSuggestions = 10

// ContainsEnvVar reports whether a value references an environment
// variable.
func ContainsEnvVar(value string) bool {
	return envVarPattern.MatchString(value)
}

// ResolveEnvVars expands $VAR and ${VAR} references against the current
// environment. Unknown variables are left as written so the target
// command can see the raw reference.
func ResolveEnvVars(value string) string {
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		name = strings.TrimPrefix(name, "{")
		name = strings.TrimSuffix(name, "}")
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return match
	})
}

// Suggestion is one env-var completion candidate. Value is empty for
// secret-looking names; only the name is ever surfaced for those.
type Suggestion struct {
	Name  string
	Value string
}

// Suggestions returns env vars whose names start with the prefix,
// case-insensitively, sorted by name and capped. Values of names that
// look like credentials are withheld.
func Suggestions(prefix string) []Suggestion {
	prefixLower := strings.ToLower(prefix)
	var out []Suggestion
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(strings.ToLower(name), prefixLower) {
			continue
		}
		if security.IsSecretEnvName(name) {
			value = ""
		}
		out = append(out, Suggestion{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// SuggestedName derives the conventional override variable name for a
// command flag, e.g. ("curl", "--header") -> QUOCLI_CURL_HEADER.
func SuggestedName(command, flag string) string {
	clean := strings.TrimLeft(flag, "-")
	clean = strings.ToUpper(strings.ReplaceAll(clean, "-", "_"))
	cmd := strings.ToUpper(strings.ReplaceAll(command, "-", "_"))
	return "QUOCLI_" + cmd + "_" + clean
}
