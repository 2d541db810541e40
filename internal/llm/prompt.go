// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxHelpBytes caps how much help text goes into a prompt. Longer texts
// are truncated on a line boundary; the usage section is always at the top
// of real help output, so truncation loses the least important part.
const maxHelpBytes = 32 * 1024

const systemPrompt = `You convert command-line help text into a JSON description of the command's parameters. Respond with a single JSON object and nothing else.

Schema:
{
  "identity": "<command words>",
  "description": "<one-line summary>",
  "dangerous": <true if the command can destroy data>,
  "danger_warning": "<short warning when dangerous, else omit>",
  "fields": [
    {
      "name": "<long option name without dashes, or positional name>",
      "short_name": "<single-letter alias without dash, or omit>",
      "kind": "<string|flag|enum|secret|path|numeric>",
      "required": <bool>,
      "positional": <bool>,
      "order": <int, position among positionals, 0-based>,
      "sensitive": <true for passwords, tokens, keys>,
      "help": "<one-line description>",
      "choices": ["<enum values>"],
      "default": "<default value or omit>"
    }
  ],
  "examples": ["<usage example lines, up to 3>"]
}

Rules:
- flags (boolean switches) are kind "flag" and never required.
- anything accepting a password, token, key or credential is kind "secret".
- file and directory arguments are kind "path".
- options with a fixed set of values are kind "enum" with "choices".
- include only parameters a person would plausibly set; skip --help/--version.`

// buildPrompt assembles the user prompt for a request. Help text is
// NFKC-normalized so visually identical option names compare equal in the
// model's output, then size-capped.
func buildPrompt(req Request) string {
	help := norm.NFKC.String(req.HelpText)
	if len(help) > maxHelpBytes {
		cut := help[:maxHelpBytes]
		if i := strings.LastIndexByte(cut, '\n'); i > 0 {
			cut = cut[:i]
		}
		help = cut
	}

	var b strings.Builder
	b.WriteString("Command: ")
	b.WriteString(req.Identity())
	b.WriteString("\n\nHelp text:\n")
	b.WriteString(help)
	return b.String()
}
