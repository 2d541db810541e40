// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package executor runs the built command. Secret placeholders in the
// argv are resolved immediately before the spawn and the resolved vector
// is never logged or returned; everything upstream only ever sees the
// placeholder form.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/jeranaias/quocli/internal/builder"
)

// ErrEmptyArgv means there was no command to run.
var ErrEmptyArgv = errors.New("empty argv")

// UnresolvedSecretError reports a placeholder with no matching secret.
type UnresolvedSecretError struct {
	Field string
}

func (e *UnresolvedSecretError) Error() string {
	return "no value for secret field: " + e.Field
}

// ResolveSecrets replaces placeholder tokens with their real values.
// The input slice is not modified. Every placeholder must resolve; a
// missing secret is an error rather than an empty argument handed to the
// target command.
func ResolveSecrets(argv []string, secrets map[string]string) ([]string, error) {
	out := make([]string, len(argv))
	for i, tok := range argv {
		if name, ok := builder.PlaceholderName(tok); ok {
			v, ok := secrets[name]
			if !ok || v == "" {
				return nil, &UnresolvedSecretError{Field: name}
			}
			out[i] = v
			continue
		}
		out[i] = tok
	}
	return out, nil
}

// Runner spawns commands. The default implementation uses os/exec with
// inherited stdio so interactive targets keep working.
type Runner struct {
	// Stdin, Stdout, Stderr default to the process's own streams.
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// Run resolves secrets in argv and executes it, returning the command's
// exit code. The exit code is also returned for "normal" non-zero exits;
// err is non-nil only when the command could not run at all.
func (r *Runner) Run(ctx context.Context, argv []string, secrets map[string]string) (int, error) {
	if len(argv) == 0 {
		return -1, ErrEmptyArgv
	}

	resolved, err := ResolveSecrets(argv, secrets)
	if err != nil {
		return -1, err
	}

	cmd := exec.CommandContext(ctx, resolved[0], resolved[1:]...)
	cmd.Stdin = r.stdin()
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("run %s: %w", resolved[0], err)
	}
	return 0, nil
}

func (r *Runner) stdin() *os.File {
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

func (r *Runner) stdout() *os.File {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() *os.File {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
