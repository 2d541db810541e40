// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session.go - The default quocli run: help text in, executed command out.
//
// A session walks the whole pipeline: fetch the target's help text,
// resolve its spec (cache first, LLM on miss), collect values in the
// full-screen form or the plain prompt fallback, build the argv, execute,
// and persist what the next run can reuse.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/quocli/internal/builder"
	"github.com/jeranaias/quocli/internal/cache"
	"github.com/jeranaias/quocli/internal/config"
	"github.com/jeranaias/quocli/internal/executor"
	"github.com/jeranaias/quocli/internal/form"
	"github.com/jeranaias/quocli/internal/help"
	"github.com/jeranaias/quocli/internal/llm"
	"github.com/jeranaias/quocli/internal/security"
	"github.com/jeranaias/quocli/internal/shell"
	"github.com/jeranaias/quocli/internal/spec"
	"github.com/jeranaias/quocli/internal/ui/components"
	"github.com/jeranaias/quocli/internal/ui/formview"
	"github.com/jeranaias/quocli/internal/ui/styles"
	"github.com/jeranaias/quocli/internal/util"
)

// exitCancelled mirrors the shell convention for interrupted commands.
const exitCancelled = 130

// HandleRun executes the default form session for args.Target.
func HandleRun(args Args) int {
	if len(args.Target) == 0 {
		PrintUsage()
		return 1
	}

	cfg := config.Global()
	ctx := context.Background()
	identity := strings.Join(args.Target, " ")

	audit := newAuditLogger(cfg)

	// A broken cache degrades to an LLM call, never to a failed session.
	var store *cache.Store
	if cfg.Cache.Enabled {
		s, err := openStore(cfg)
		if err != nil {
			util.Warnf("cache unavailable, continuing without it: %v", err)
		} else {
			store = s
			defer store.Close()
		}
	}

	if store != nil && args.Refresh {
		if err := store.Invalidate(ctx, identity); err != nil {
			util.Warnf("refresh: %v", err)
		}
	}
	if store != nil && args.ClearValues {
		if err := store.ClearValues(ctx, identity); err != nil {
			util.Warnf("clear values: %v", err)
		}
	}

	helpText, err := help.NewFetcher().Fetch(ctx, args.Target[0], args.Target[1:])
	if err != nil {
		return Fail(fmt.Errorf("no help text for %q: %w", identity, err))
	}

	cs, hit, err := resolveSpec(ctx, cfg, store, llm.Request{
		Command:     args.Target[0],
		Subcommands: args.Target[1:],
		HelpText:    helpText,
	})
	if err != nil {
		return Fail(err)
	}

	if hit {
		logAudit(audit, security.AuditEvent{EventType: security.EventCacheHit, Identity: identity})
	} else {
		logAudit(audit, security.AuditEvent{EventType: security.EventCacheMiss, Identity: identity})
		logAudit(audit, security.AuditEvent{EventType: security.EventSpecGenerated, Identity: identity})
	}

	if args.ShowSpec {
		return ShowSpec(cs, args)
	}

	var prefill map[string]string
	if store != nil {
		prefill, err = store.LoadValues(ctx, identity)
		if err != nil {
			util.Warnf("cached values: %v", err)
		}
	}

	f := form.New(cs, prefill)
	defer f.Close()
	f.SetConfirmDangerous(cfg.Security.ConfirmDangerous)
	applySecretEnv(f, args.Target[0])

	switch {
	case args.Direct:
		if err := resolveDirect(f); err != nil {
			logAudit(audit, security.AuditEvent{EventType: security.EventRefused, Identity: identity, Error: err.Error()})
			return Fail(err)
		}
	case args.Plain || !IsInteractive():
		if err := fillPlain(f); err != nil {
			return Fail(err)
		}
	default:
		if !ColorEnabled(args.NoColor) {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
		theme := styles.NewTheme(cfg.UI.Theme)
		model := formview.New(f, theme, formview.Options{
			ShowPreview:  cfg.UI.ShowPreview,
			ShowExamples: cfg.UI.ShowExamples,
		})
		p := tea.NewProgram(model, tea.WithAltScreen())

		// Config edits made while the form is open take effect live.
		if w, err := config.NewWatcher(0, func(fresh *config.Config) {
			p.Send(formview.ConfigReloadedMsg{
				Theme:        styles.NewTheme(fresh.UI.Theme),
				ShowPreview:  fresh.UI.ShowPreview,
				ShowExamples: fresh.UI.ShowExamples,
			})
		}); err == nil {
			if err := w.Watch(); err == nil {
				defer w.Close()
			} else {
				w.Close()
			}
		}

		if _, err := p.Run(); err != nil {
			return Fail(fmt.Errorf("form session: %w", err))
		}
	}

	if f.Outcome() != form.OutcomeExecute {
		logAudit(audit, security.AuditEvent{EventType: security.EventCancelled, Identity: identity})
		fmt.Fprintln(os.Stderr, "quocli: cancelled")
		return exitCancelled
	}

	return execute(ctx, cfg, store, audit, args, f)
}

// resolveSpec returns the command spec for the request, preferring the
// cache and coalescing concurrent misses. The second return reports a
// cache hit.
func resolveSpec(ctx context.Context, cfg *config.Config, store *cache.Store, req llm.Request) (*spec.CommandSpec, bool, error) {
	pc := llm.ProviderConfig{
		Provider:   cfg.LLM.Provider,
		Model:      cfg.LLM.Model,
		APIKey:     cfg.APIKey(),
		RatePerMin: cfg.LLM.RatePerMin,
	}
	if pc.Provider != "anthropic" {
		pc.BaseURL = cfg.LLM.OllamaURL
	}
	parser, err := llm.NewParser(pc)
	if err != nil {
		return nil, false, err
	}

	parse := func(ctx context.Context, helpText string) (*spec.CommandSpec, error) {
		r := req
		r.HelpText = helpText
		return parser.ParseSpec(ctx, r)
	}

	if store == nil {
		cs, err := parse(ctx, req.HelpText)
		return cs, false, err
	}
	return store.GetOrParse(ctx, req.HelpText, parse)
}

// resolveDirect finishes a form without any prompting, from cached values
// and defaults alone. Dangerous commands still require a terminal yes.
func resolveDirect(f *form.Form) error {
	if missing := f.MissingRequired(); len(missing) > 0 {
		return fmt.Errorf("--direct needs every required field cached or defaulted; missing: %s",
			strings.Join(missing, ", "))
	}

	f.RequestExecute()
	if f.State() != form.StateConfirming {
		return nil
	}

	if !IsTTY() {
		f.Deny()
		f.Cancel()
		return errors.New("refusing to run a dangerous command non-interactively")
	}
	ok, err := promptYesNo(security.DangerWarning(f.Spec()) + " Run it?")
	if err != nil || !ok {
		f.Deny()
		f.Cancel()
		if err != nil {
			return err
		}
		return nil
	}
	f.Confirm()
	return nil
}

// execute builds the argv, runs it, and persists the aftermath.
func execute(ctx context.Context, cfg *config.Config, store *cache.Store, audit *security.AuditLogger, args Args, f *form.Form) int {
	cs := f.Spec()
	values := f.Values()

	argv, err := builder.Build(cs, values)
	if err != nil {
		var missing *builder.MissingRequiredError
		if errors.As(err, &missing) {
			return Fail(fmt.Errorf("missing required fields: %s", strings.Join(missing.Fields, ", ")))
		}
		return Fail(err)
	}

	redacted := security.RedactArgs(cs, argv)
	fmt.Fprintf(os.Stderr, "quocli: running: %s\n", strings.Join(redacted, " "))

	runner := &executor.Runner{}
	exitCode, err := runner.Run(ctx, argv, secretValues(cs, values))
	if err != nil {
		logAudit(audit, security.AuditEvent{
			EventType: security.EventRefused,
			Identity:  cs.Identity,
			Argv:      redacted,
			Error:     err.Error(),
		})
		return Fail(err)
	}

	logAudit(audit, security.AuditEvent{
		EventType: security.EventExecuted,
		Identity:  cs.Identity,
		Argv:      redacted,
		ExitCode:  &exitCode,
	})

	if store != nil {
		if err := store.SaveValues(ctx, cs, f.CacheableValues()); err != nil {
			util.Warnf("remember values: %v", err)
		}
		if err := store.RecordExecution(ctx, cs.Identity, redacted, exitCode); err != nil {
			util.Warnf("record execution: %v", err)
		}
	}

	if cfg.Shell.Export {
		exportHistory(cfg, args, components.CommandLine(cs, values))
	}

	return exitCode
}

// exportHistory appends the redacted command line to the shell history.
// Best effort: a read-only history file must not fail the run.
func exportHistory(cfg *config.Config, args Args, commandLine string) {
	shellType := args.Shell
	if shellType == "" {
		shellType = cfg.Shell.Type
	}
	if shellType == "" || shellType == "auto" {
		shellType = shell.DetectShell(os.Getenv("SHELL"))
	}
	exporter := shell.NewExporter(shellType, cfg.Shell.HistoryFile)
	if err := exporter.Export(commandLine); err != nil {
		util.Warnf("history export: %v", err)
	}
}

// applySecretEnv fills empty secret fields from their conventional
// override variables (QUOCLI_<CMD>_<FIELD>). Secrets are never cached,
// but an exported variable is an explicit user decision.
func applySecretEnv(f *form.Form, command string) {
	for _, fld := range f.Fields() {
		if !security.IsSensitive(fld.Spec) || fld.Value != "" {
			continue
		}
		if v := os.Getenv(shell.SuggestedName(command, fld.Spec.Name)); v != "" {
			fld.Apply(v)
		}
	}
}

// secretValues extracts the sensitive field values the executor resolves
// placeholders with. They exist only in memory, on the way to the child's
// argv.
func secretValues(cs *spec.CommandSpec, values map[string]string) map[string]string {
	secrets := make(map[string]string)
	for i := range cs.Fields {
		fld := &cs.Fields[i]
		if security.IsSensitive(fld) && values[fld.Name] != "" {
			secrets[fld.Name] = values[fld.Name]
		}
	}
	return secrets
}

func newAuditLogger(cfg *config.Config) *security.AuditLogger {
	path, err := cfg.AuditLogPath()
	if err != nil {
		util.Warnf("audit log path: %v", err)
		return security.NewAuditLogger("", false)
	}
	return security.NewAuditLogger(path, cfg.Security.AuditEnabled)
}

func logAudit(audit *security.AuditLogger, event security.AuditEvent) {
	if err := audit.Log(event); err != nil {
		util.Warnf("audit: %v", err)
	}
}
