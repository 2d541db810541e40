// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell integrates executed commands with the user's shell:
// history export in the native format of bash, zsh, or fish, and
// environment variable expansion for field values. History only ever
// receives the redacted command line; the caller is responsible for
// passing the masked form.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Shell types recognized by the exporter.
const (
	ShellBash = "bash"
	ShellZsh  = "zsh"
	ShellFish = "fish"
)

// historyMarker trails every exported entry so users can tell which
// history lines came from here.
const historyMarker = "# via quocli\n"

// Exporter appends executed commands to a shell history file.
type Exporter struct {
	// ShellType is bash, zsh, fish, or "auto" to detect from $SHELL.
	ShellType string
	// HistoryFile overrides the per-shell default; "auto" or empty uses it.
	HistoryFile string
	// now is injected in tests.
	now func() time.Time
}

// NewExporter builds an exporter from config values.
func NewExporter(shellType, historyFile string) *Exporter {
	return &Exporter{ShellType: shellType, HistoryFile: historyFile, now: time.Now}
}

// Export appends the command line to the history file in the shell's
// native format. commandLine must already be redacted.
func (e *Exporter) Export(commandLine string) error {
	shell := e.shell()
	path, err := e.historyPath(shell)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(e.format(shell, commandLine) + historyMarker); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// format renders one history entry for the given shell.
func (e *Exporter) format(shell, commandLine string) string {
	ts := e.now().Unix()
	switch shell {
	case ShellZsh:
		// Extended history format.
		return fmt.Sprintf(": %d:0;%s\n", ts, commandLine)
	case ShellFish:
		return fmt.Sprintf("- cmd: %s\n  when: %d\n", commandLine, ts)
	default:
		return commandLine + "\n"
	}
}

// shell resolves the effective shell type, detecting from $SHELL when
// configured as auto.
func (e *Exporter) shell() string {
	if e.ShellType != "" && e.ShellType != "auto" {
		return e.ShellType
	}
	return DetectShell(os.Getenv("SHELL"))
}

// DetectShell maps a $SHELL value to a supported shell type. Unknown
// shells get the bash format, which everything else can at least read.
func DetectShell(shellEnv string) string {
	switch {
	case strings.Contains(shellEnv, ShellZsh):
		return ShellZsh
	case strings.Contains(shellEnv, ShellFish):
		return ShellFish
	default:
		return ShellBash
	}
}

// historyPath resolves the effective history file for a shell.
func (e *Exporter) historyPath(shell string) (string, error) {
	if e.HistoryFile != "" && e.HistoryFile != "auto" {
		return expandTilde(e.HistoryFile), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve history path: %w", err)
	}

	switch shell {
	case ShellZsh:
		return filepath.Join(home, ".zsh_history"), nil
	case ShellFish:
		return filepath.Join(home, ".local", "share", "fish", "fish_history"), nil
	default:
		if hf := os.Getenv("HISTFILE"); hf != "" {
			return hf, nil
		}
		return filepath.Join(home, ".bash_history"), nil
	}
}

func expandTilde(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			if p == "~" {
				return home
			}
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
