// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// spec_cmd.go - Pretty-print a parsed command spec (--show-spec).

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/quocli/internal/security"
	"github.com/jeranaias/quocli/internal/spec"
)

// ShowSpec prints a rendered summary of the spec followed by its JSON
// form, then exits without running anything.
func ShowSpec(cs *spec.CommandSpec, args Args) int {
	md := specMarkdown(cs)

	if ColorEnabled(args.NoColor) {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(TerminalWidth()),
		)
		if err == nil {
			if out, err := renderer.Render(md); err == nil {
				md = out
			}
		}
	}
	fmt.Print(md)

	data, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return Fail(err)
	}
	fmt.Println(string(data))
	return 0
}

// specMarkdown summarizes the spec as markdown for glamour.
func specMarkdown(cs *spec.CommandSpec) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", cs.Identity)
	if cs.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", cs.Description)
	}
	if security.IsDangerous(cs) {
		fmt.Fprintf(&b, "**Dangerous:** %s\n\n", security.DangerWarning(cs))
	}

	if len(cs.Fields) > 0 {
		b.WriteString("## Fields\n\n")
		for i := range cs.Fields {
			f := &cs.Fields[i]
			fmt.Fprintf(&b, "- `%s` (%s)", f.Label(), f.Kind)
			if f.Required {
				b.WriteString(" **required**")
			}
			if security.IsSensitive(f) {
				b.WriteString(" *secret*")
			}
			if len(f.Choices) > 0 {
				fmt.Fprintf(&b, " — one of %s", strings.Join(f.Choices, ", "))
			}
			if f.Default != "" {
				fmt.Fprintf(&b, " — default `%s`", f.Default)
			}
			if f.Help != "" {
				fmt.Fprintf(&b, " — %s", f.Help)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(cs.Examples) > 0 {
		b.WriteString("## Examples\n\n")
		for _, e := range cs.Examples {
			fmt.Fprintf(&b, "    %s\n", e)
		}
		b.WriteString("\n")
	}

	return b.String()
}
