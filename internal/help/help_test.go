// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package help

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const usage = "Usage: widget [OPTIONS] <input>\n\nOptions:\n  --verbose  chatty output\n"

// scriptRunner replays canned responses keyed by the full argv line.
type scriptRunner struct {
	responses map[string][2]string // argv line -> {stdout, stderr}
	calls     []string
}

func (s *scriptRunner) run(ctx context.Context, name string, args ...string) (string, string, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	s.calls = append(s.calls, line)
	if r, ok := s.responses[line]; ok {
		return r[0], r[1], nil
	}
	return "", "unknown option", errors.New("exit status 2")
}

func TestFetchFirstStrategyWins(t *testing.T) {
	r := &scriptRunner{responses: map[string][2]string{
		"widget --help": {usage, ""},
	}}
	f := NewFetcherWithRunner(r.run)

	text, err := f.Fetch(context.Background(), "widget", nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != usage {
		t.Fatalf("text = %q", text)
	}
	if len(r.calls) != 1 {
		t.Fatalf("calls = %v, want a single attempt", r.calls)
	}
}

func TestFetchStderrFallback(t *testing.T) {
	r := &scriptRunner{responses: map[string][2]string{
		"widget --help": {"", usage}, // prints help to stderr, like many tools
	}}
	f := NewFetcherWithRunner(r.run)

	text, err := f.Fetch(context.Background(), "widget", nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != usage {
		t.Fatalf("text = %q", text)
	}
}

func TestFetchFallsThroughToShortFlag(t *testing.T) {
	r := &scriptRunner{responses: map[string][2]string{
		"widget -h": {usage, ""},
	}}
	f := NewFetcherWithRunner(r.run)

	if _, err := f.Fetch(context.Background(), "widget", nil); err != nil {
		t.Fatal(err)
	}
	if r.calls[0] != "widget --help" || r.calls[1] != "widget -h" {
		t.Fatalf("calls = %v", r.calls)
	}
}

func TestFetchSubcommandUsesHelpVerb(t *testing.T) {
	r := &scriptRunner{responses: map[string][2]string{
		"widget help frob": {usage, ""},
	}}
	f := NewFetcherWithRunner(r.run)

	if _, err := f.Fetch(context.Background(), "widget", []string{"frob"}); err != nil {
		t.Fatal(err)
	}
	want := []string{"widget frob --help", "widget frob -h", "widget help frob"}
	for i, w := range want {
		if r.calls[i] != w {
			t.Fatalf("call %d = %q, want %q", i, r.calls[i], w)
		}
	}
}

func TestFetchManPageFallback(t *testing.T) {
	manText := "W\bWI\bID\bDG\bGE\bET\bT(1)\n\nNAME\n    widget - frobnicates inputs\n"
	r := &scriptRunner{responses: map[string][2]string{
		"man -P cat widget": {manText, ""},
	}}
	f := NewFetcherWithRunner(r.run)

	text, err := f.Fetch(context.Background(), "widget", nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(text, "\b") {
		t.Fatal("overstrike formatting not stripped")
	}
	if !strings.Contains(text, "WIDGET(1)") {
		t.Fatalf("text = %q", text)
	}
}

func TestFetchUnavailable(t *testing.T) {
	r := &scriptRunner{responses: map[string][2]string{}}
	f := NewFetcherWithRunner(r.run)

	_, err := f.Fetch(context.Background(), "widget", nil)
	if !errors.Is(err, ErrHelpUnavailable) {
		t.Fatalf("err = %v, want ErrHelpUnavailable", err)
	}
}

func TestFetchShortNoiseRejected(t *testing.T) {
	r := &scriptRunner{responses: map[string][2]string{
		"widget --help": {"err\n", ""},
		"widget -h":     {usage, ""},
	}}
	f := NewFetcherWithRunner(r.run)

	text, err := f.Fetch(context.Background(), "widget", nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != usage {
		t.Fatalf("short noise accepted: %q", text)
	}
}

func TestFetchEmptyCommand(t *testing.T) {
	f := NewFetcherWithRunner((&scriptRunner{}).run)
	if _, err := f.Fetch(context.Background(), "", nil); !errors.Is(err, ErrHelpUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestFetchHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFetcherWithRunner((&scriptRunner{}).run)

	_, err := f.Fetch(ctx, "widget", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
