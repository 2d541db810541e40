// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing and dispatch for quocli.

package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/quocli/internal/util"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the entry point selected by the arguments.
type Command int

const (
	// CmdRun wraps the target command in a form session (default).
	CmdRun Command = iota
	// CmdCache runs cache maintenance: stats, clear, purge.
	CmdCache
	// CmdConfig shows or initializes the config file.
	CmdConfig
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

// Args holds quocli's parsed arguments.
type Args struct {
	// Target is the wrapped command followed by its subcommands,
	// e.g. ["git", "commit"].
	Target []string

	Refresh     bool // drop the cached spec and re-parse
	ClearValues bool // drop remembered field values for the target
	ShowSpec    bool // print the parsed spec instead of running
	Direct      bool // build from cached values and run without the form
	Plain       bool // sequential prompts instead of the full-screen form
	NoColor     bool
	JSON        bool // machine output for maintenance subcommands

	// ConfigPath overrides the default config file location.
	ConfigPath string

	// Shell overrides the detected shell for history export.
	Shell string

	// Subcommand is the maintenance verb for cache/config commands.
	Subcommand string
}

const usageText = `quocli - interactive forms for any command line tool

quocli reads a command's --help output, turns it into a structured form,
and builds the final command line for you. Parsed specs and non-sensitive
answers are cached, so repeat runs are instant and pre-filled.

Usage:
  quocli <command> [subcommand...]   Open the form for a command
  quocli cache [stats|clear|purge]   Cache maintenance
  quocli config [show|init|path]     Configuration
  quocli version                     Print version

Flags:
  --refresh        Re-parse the help text, ignoring the cached spec
  --clear-values   Forget remembered answers for this command
  --show-spec      Print the parsed spec and exit (no execution)
  --direct         Build from cached values and run without the form
  --plain          Sequential prompts (automatic when not a TTY)
  --no-color       Disable styled output (NO_COLOR is also honored)
  --json           JSON output for cache subcommands
  --config PATH    Use an alternate config file
  --shell NAME     Override shell for history export (bash, zsh, fish)

Examples:
  quocli tar                   Form for tar
  quocli git commit            Form for git commit
  quocli rsync --refresh       Re-parse rsync's help text
  quocli curl --direct         Re-run curl from remembered answers
  quocli cache stats --json    Cache statistics for scripts

Environment:
  QUOCLI_PROVIDER, QUOCLI_MODEL, QUOCLI_OLLAMA_URL, QUOCLI_CACHE_PATH,
  QUOCLI_THEME, QUOCLI_NO_CACHE, QUOCLI_NO_AUDIT override config values.
`

// Parse classifies raw arguments into a command and its parsed Args.
func Parse(raw []string) (Command, Args) {
	p := NewArgParser(raw)

	args := Args{
		Refresh:     p.BoolFlag("refresh"),
		ClearValues: p.BoolFlag("clear-values"),
		ShowSpec:    p.BoolFlag("show-spec"),
		Direct:      p.BoolFlag("direct"),
		Plain:       p.BoolFlag("plain"),
		NoColor:     p.BoolFlag("no-color"),
		JSON:        p.BoolFlag("json"),
		ConfigPath:  p.Flag("config"),
		Shell:       p.Flag("shell"),
	}

	if p.BoolFlag("version") || p.BoolFlag("V") {
		return CmdVersion, args
	}
	if p.BoolFlag("help") || p.BoolFlag("h") {
		return CmdHelp, args
	}
	if p.PositionalCount() == 0 {
		return CmdHelp, args
	}

	switch strings.ToLower(p.Positional(0)) {
	case "cache":
		args.Subcommand = strings.ToLower(p.Positional(1))
		return CmdCache, args
	case "config":
		args.Subcommand = strings.ToLower(p.Positional(1))
		return CmdConfig, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	}

	args.Target = p.PositionalFrom(0)
	return CmdRun, args
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("quocli %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// Fail prints an error to stderr and returns a non-zero exit code.
func Fail(err error) int {
	util.Errorf("%v", err)
	return 1
}
