// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Fatalf("default provider = %q", cfg.LLM.Provider)
	}
	if !cfg.Security.ConfirmDangerous {
		t.Fatal("dangerous confirmation not on by default")
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.TTLDays != 30 {
		t.Fatalf("TTLDays = %d", cfg.Cache.TTLDays)
	}
}

func TestSaveRoundTripsAndLeavesNoTempFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Default()
	cfg.UI.Theme = "light"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.UI.Theme != "light" {
		t.Fatalf("theme = %q after round trip", loaded.UI.Theme)
	}

	// The atomic write must not leave its temp file behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLoadFromPathTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[llm]
provider = "anthropic"
model = "claude-3-5-haiku-latest"

[cache]
ttl_days = 7

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.UI.Theme != "light" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Cache.TTLDays != 7 {
		t.Fatalf("TTLDays = %d", cfg.Cache.TTLDays)
	}
	// Untouched sections keep defaults.
	if cfg.Shell.Type != "auto" {
		t.Fatalf("shell type = %q", cfg.Shell.Type)
	}
}

func TestLoadFixesPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("permissions = %o, want 0600", info.Mode().Perm())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "skynet"
	cfg.UI.Theme = "hotdog"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid config passed validation")
	}
	msg := err.Error()
	if !strings.Contains(msg, "llm.provider") || !strings.Contains(msg, "ui.theme") {
		t.Fatalf("error = %q", msg)
	}
}

func TestSetDefaultsClampsTTL(t *testing.T) {
	cfg := Default()
	cfg.Cache.TTLDays = 9999
	cfg.Cache.ValuesTTLDays = -5
	cfg.SetDefaults()

	if cfg.Cache.TTLDays != 365 {
		t.Fatalf("TTLDays = %d, want clamped 365", cfg.Cache.TTLDays)
	}
	if cfg.Cache.ValuesTTLDays != 90 {
		t.Fatalf("ValuesTTLDays = %d, want default 90", cfg.Cache.ValuesTTLDays)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("QUOCLI_PROVIDER", "anthropic")
	t.Setenv("QUOCLI_THEME", "dark")
	t.Setenv("QUOCLI_NO_CACHE", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.LLM.Provider != "anthropic" || cfg.UI.Theme != "dark" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Cache.Enabled {
		t.Fatal("QUOCLI_NO_CACHE ignored")
	}
}

func TestAPIKeyResolvedFromEnv(t *testing.T) {
	t.Setenv("QUOCLI_TEST_KEY", "sk-xyz")
	cfg := Default()
	cfg.LLM.APIKeyEnv = "QUOCLI_TEST_KEY"
	if cfg.APIKey() != "sk-xyz" {
		t.Fatalf("APIKey() = %q", cfg.APIKey())
	}
}

func TestGlobalAccessors(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	custom := Default()
	custom.UI.Theme = "light"
	SetGlobal(custom)

	if Global().UI.Theme != "light" {
		t.Fatal("SetGlobal not visible through Global")
	}
}
