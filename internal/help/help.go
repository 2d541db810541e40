// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package help obtains a command's help text by running the command
// itself. Many tools print help to stderr, exit non-zero on --help, or
// only document subcommands through `help <sub>`; Fetch works through
// the common conventions and falls back to the man page.
package help

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// ErrHelpUnavailable means every strategy came back empty.
var ErrHelpUnavailable = errors.New("no help text available for command")

// Output below this many bytes is treated as noise ("unknown flag" style
// complaints), not help.
const minHelpLength = 24

// Runner executes argv and returns stdout and stderr. Injected in tests;
// the default shells out. The returned error is ignored by Fetch — help
// conventions make exit codes meaningless here.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

func execRunner(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errOut strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	return out.String(), errOut.String(), err
}

// Fetcher resolves help text for commands.
type Fetcher struct {
	run Runner
}

// NewFetcher returns a Fetcher backed by real subprocesses.
func NewFetcher() *Fetcher {
	return &Fetcher{run: execRunner}
}

// NewFetcherWithRunner injects a runner; used by tests.
func NewFetcherWithRunner(run Runner) *Fetcher {
	return &Fetcher{run: run}
}

// Fetch returns the help text for a command and optional subcommand
// chain. Strategies, in order: `--help`, `-h`, `help <sub...>`, and for
// bare commands the man page. stderr counts when stdout is blank.
func (f *Fetcher) Fetch(ctx context.Context, command string, subcommands []string) (string, error) {
	if command == "" {
		return "", ErrHelpUnavailable
	}

	attempts := [][]string{
		append(append([]string(nil), subcommands...), "--help"),
		append(append([]string(nil), subcommands...), "-h"),
	}
	if len(subcommands) > 0 {
		attempts = append(attempts, append([]string{"help"}, subcommands...))
	}

	for _, args := range attempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		stdout, stderr, _ := f.run(ctx, command, args...)
		if text := pick(stdout, stderr); text != "" {
			return text, nil
		}
	}

	if len(subcommands) == 0 {
		if text, err := f.manPage(ctx, command); err == nil {
			return text, nil
		}
	}

	return "", ErrHelpUnavailable
}

// manPage renders the command's man page with the pager disabled and the
// overstrike formatting stripped.
func (f *Fetcher) manPage(ctx context.Context, command string) (string, error) {
	stdout, _, err := f.run(ctx, "man", "-P", "cat", command)
	if err != nil && stdout == "" {
		return "", ErrHelpUnavailable
	}
	text := stripOverstrike(stdout)
	if len(strings.TrimSpace(text)) < minHelpLength {
		return "", ErrHelpUnavailable
	}
	return text, nil
}

// pick chooses the usable stream: stdout if substantial, else stderr.
func pick(stdout, stderr string) string {
	if s := strings.TrimSpace(stdout); len(s) >= minHelpLength {
		return stdout
	}
	if s := strings.TrimSpace(stderr); len(s) >= minHelpLength {
		return stderr
	}
	return ""
}

// stripOverstrike removes the char-backspace-char bold/underline encoding
// nroff emits, the part `col -b` would normally clean up.
func stripOverstrike(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if i+1 < len(runes) && runes[i+1] == '\b' {
			i++ // drop this rune and the backspace; keep the overstruck rune
			continue
		}
		if runes[i] == '\b' {
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
