// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// plain.go - Sequential prompt fallback for dumb terminals and pipes.
//
// When the full-screen form cannot run (--plain, or stdin/stdout is not a
// TTY) the session walks the fields one prompt at a time. Secrets are read
// without echo, enums list their choices, and an aborted prompt cancels
// the whole session.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/quocli/internal/form"
	"github.com/jeranaias/quocli/internal/security"
	"github.com/jeranaias/quocli/internal/spec"
)

// fillPlain collects field values with line-oriented prompts and drives
// the form to an outcome. Only form state is mutated; the caller reads
// the outcome afterwards.
func fillPlain(f *form.Form) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	cs := f.Spec()
	fmt.Fprintf(os.Stderr, "%s — %s\n", cs.Identity, cs.Description)
	if security.IsDangerous(cs) {
		fmt.Fprintln(os.Stderr, "warning: "+security.DangerWarning(cs))
	}

	for _, fld := range f.Fields() {
		if err := promptField(line, fld); err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				f.Cancel()
				return nil
			}
			return err
		}
	}

	f.RequestExecute()
	if missing := f.MissingRequired(); f.State() == form.StateNavigating && len(missing) > 0 {
		f.Cancel()
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	if f.State() == form.StateConfirming {
		ok, err := promptYesNoLiner(line, security.DangerWarning(cs)+" Run it?")
		if err != nil || !ok {
			f.Deny()
			f.Cancel()
			return err
		}
		f.Confirm()
	}
	return nil
}

// promptField asks for one field until the answer validates. Empty input
// keeps whatever the form already holds (prefill or default).
func promptField(line *liner.State, fld *form.Field) error {
	for {
		answer, err := ask(line, fld)
		if err != nil {
			return err
		}
		if answer == "" {
			return nil
		}

		if fld.Spec.Kind == spec.KindFlag {
			applyFlagAnswer(fld, answer)
			return nil
		}
		if fld.Apply(answer) {
			return nil
		}
		fmt.Fprintf(os.Stderr, "  %s\n", fld.Err)
	}
}

func ask(line *liner.State, fld *form.Field) (string, error) {
	prompt := promptText(fld)
	if security.IsSensitive(fld.Spec) {
		return line.PasswordPrompt(prompt)
	}

	if len(fld.Spec.Choices) > 0 {
		line.SetCompleter(func(prefix string) []string {
			var out []string
			for _, c := range fld.Spec.Choices {
				if strings.HasPrefix(c, prefix) {
					out = append(out, c)
				}
			}
			return out
		})
		defer line.SetCompleter(nil)
	}
	return line.Prompt(prompt)
}

func promptText(fld *form.Field) string {
	var b strings.Builder
	b.WriteString(fld.Spec.Name)
	if fld.Spec.Required {
		b.WriteString(" (required)")
	}

	switch {
	case fld.Spec.Kind == spec.KindFlag:
		b.WriteString(" [y/N]")
	case len(fld.Spec.Choices) > 0:
		b.WriteString(" (" + strings.Join(fld.Spec.Choices, ", ") + ")")
	}

	if fld.Value != "" && !security.IsSensitive(fld.Spec) && fld.Spec.Kind != spec.KindFlag {
		b.WriteString(" [" + fld.Value + "]")
	}
	b.WriteString(": ")
	return b.String()
}

func promptYesNoLiner(line *liner.State, question string) (bool, error) {
	answer, err := line.Prompt(question + " [y/N]: ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return isAffirmative(answer), nil
}

// promptYesNo is the standalone confirmation used outside a prompt loop.
func promptYesNo(question string) (bool, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	return promptYesNoLiner(line, question)
}

// applyFlagAnswer interprets a yes/no answer for a flag field. An
// explicit negative clears a prefilled value; anything unrecognized
// leaves the field as it was.
func applyFlagAnswer(fld *form.Field, answer string) {
	switch {
	case isAffirmative(answer):
		fld.Apply(form.FlagSet)
	case isNegative(answer):
		fld.Apply("")
	}
}

func isAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

func isNegative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "n", "no", "false", "0":
		return true
	}
	return false
}
