// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAuditLogger_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	logger := NewAuditLogger(path, true)

	code := 0
	events := []AuditEvent{
		{EventType: EventCacheMiss, Identity: "tar"},
		{EventType: EventExecuted, Identity: "tar", Argv: []string{"tar", "-xf", "a.tgz"}, ExitCode: &code},
	}
	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var got []AuditEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e AuditEvent
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		got = append(got, e)
	}

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].ID == "" || got[0].Timestamp.IsZero() {
		t.Error("event missing generated ID or timestamp")
	}
	if got[1].ExitCode == nil || *got[1].ExitCode != 0 {
		t.Error("exit code not recorded")
	}
}

func TestAuditLogger_ClampsFreeText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	logger := NewAuditLogger(path, true)

	long := strings.Repeat("x", maxFreeTextRunes*3)
	if err := logger.Log(AuditEvent{EventType: EventRefused, Error: long, Detail: long}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var got AuditEvent
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &got); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if len([]rune(got.Error)) != maxFreeTextRunes {
		t.Errorf("error length = %d, want %d", len([]rune(got.Error)), maxFreeTextRunes)
	}
	if len([]rune(got.Detail)) != maxFreeTextRunes {
		t.Errorf("detail length = %d, want %d", len([]rune(got.Detail)), maxFreeTextRunes)
	}
}

func TestAuditLogger_DisabledDropsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	logger := NewAuditLogger(path, false)

	if err := logger.Log(AuditEvent{EventType: EventExecuted}); err != nil {
		t.Fatalf("disabled logger returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("disabled logger created a file")
	}
}

func TestAuditLogger_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")
	logger := NewAuditLogger(path, true)
	logger.maxSize = 256 // force rotation quickly

	for i := 0; i < 20; i++ {
		err := logger.Log(AuditEvent{
			EventType: EventExecuted,
			Identity:  "cmd",
			Detail:    strings.Repeat("x", 64),
		})
		if err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	rotated := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "audit.log.") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Error("expected at least one rotated log file")
	}
}
