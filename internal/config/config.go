// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for quocli.
//
// TOML format with sensible defaults, environment variable overrides,
// and validation.
//
// Configuration file location:
//   - ~/.quocli/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/quocli/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete quocli configuration.
type Config struct {
	Version string `toml:"version"`

	// LLM provider configuration
	LLM LLMConfig `toml:"llm"`

	// Cache configuration
	Cache CacheConfig `toml:"cache"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Shell integration configuration
	Shell ShellConfig `toml:"shell"`

	// Security configuration
	Security SecurityConfig `toml:"security"`
}

// LLMConfig selects and configures the spec parser provider.
type LLMConfig struct {
	// Provider is "anthropic" or "ollama"
	Provider string `toml:"provider"`
	// Model overrides the provider default
	Model string `toml:"model"`
	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	APIKeyEnv string `toml:"api_key_env"`
	// OllamaURL is the local Ollama base URL
	OllamaURL string `toml:"ollama_url"`
	// RatePerMin caps outbound parse calls per minute (0 = unlimited)
	RatePerMin int `toml:"rate_per_min"`
}

// CacheConfig controls the spec and value caches.
type CacheConfig struct {
	// Enabled controls whether caching is active
	Enabled bool `toml:"enabled"`
	// Path is the database file (empty = ~/.quocli/cache.db)
	Path string `toml:"path"`
	// TTLDays is the spec cache time-to-live in days
	TTLDays int `toml:"ttl_days"`
	// ValuesTTLDays is the value cache time-to-live in days
	ValuesTTLDays int `toml:"values_ttl_days"`
	// EncryptValues seals cached field values at rest
	EncryptValues bool `toml:"encrypt_values"`
}

// UIConfig controls the TUI.
type UIConfig struct {
	// Theme is "dark", "light", or "auto"
	Theme string `toml:"theme"`
	// ShowPreview renders the live command preview panel
	ShowPreview bool `toml:"show_preview"`
	// ShowExamples renders usage examples from the spec
	ShowExamples bool `toml:"show_examples"`
}

// ShellConfig controls history export.
type ShellConfig struct {
	// Type is bash, zsh, fish, or "auto"
	Type string `toml:"type"`
	// HistoryFile overrides the per-shell default ("auto" = detect)
	HistoryFile string `toml:"history_file"`
	// Export enables history export after execution
	Export bool `toml:"export"`
}

// SecurityConfig controls confirmation and audit behavior.
type SecurityConfig struct {
	// ConfirmDangerous requires explicit confirmation for destructive
	// commands. Turning this off does not skip the danger badge.
	ConfirmDangerous bool `toml:"confirm_dangerous"`
	// AuditEnabled enables the JSON-lines audit log
	AuditEnabled bool `toml:"audit_enabled"`
	// AuditLogPath overrides the default ~/.quocli/audit.log
	AuditLogPath string `toml:"audit_log_path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1.0",
		LLM: LLMConfig{
			Provider:   "ollama",
			APIKeyEnv:  "ANTHROPIC_API_KEY",
			OllamaURL:  "http://127.0.0.1:11434",
			RatePerMin: 20,
		},
		Cache: CacheConfig{
			Enabled:       true,
			TTLDays:       30,
			ValuesTTLDays: 90,
			EncryptValues: true,
		},
		UI: UIConfig{
			Theme:        "auto",
			ShowPreview:  true,
			ShowExamples: true,
		},
		Shell: ShellConfig{
			Type:        "auto",
			HistoryFile: "auto",
			Export:      true,
		},
		Security: SecurityConfig{
			ConfirmDangerous: true,
			AuditEnabled:     true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the quocli configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".quocli"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// CachePath resolves the effective cache database location.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}

// AuditLogPath resolves the effective audit log location.
func (c *Config) AuditLogPath() (string, error) {
	if c.Security.AuditLogPath != "" {
		return c.Security.AuditLogPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "audit.log"), nil
}

// KeyPath returns the value-cache encryption key location, or empty when
// encryption is disabled.
func (c *Config) KeyPath() (string, error) {
	if !c.Cache.EncryptValues {
		return "", nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.key"), nil
}

// APIKey resolves the provider API key from the configured env var.
func (c *Config) APIKey() string {
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.LLM.APIKeyEnv)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to
// defaults when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file. A missing file
// is not an error; defaults apply.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := ensureSecurePermissions(path); err != nil {
			return nil, err
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ensureSecurePermissions checks and fixes permissions on the config
// file. Config may name an API key env var but never hold secrets;
// 0600 still keeps local-policy knobs private.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// Save writes the configuration to the default location. The write is
// atomic so a crash mid-save never leaves a truncated config behind.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies QUOCLI_* environment variables over the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("QUOCLI_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("QUOCLI_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("QUOCLI_OLLAMA_URL"); v != "" {
		c.LLM.OllamaURL = v
	}
	if v := os.Getenv("QUOCLI_CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("QUOCLI_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("QUOCLI_NO_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Cache.Enabled = false
		}
	}
	if v := os.Getenv("QUOCLI_NO_AUDIT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Security.AuditEnabled = false
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	validProviders := map[string]bool{"anthropic": true, "ollama": true}
	if !validProviders[strings.ToLower(c.LLM.Provider)] {
		errs = append(errs, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("invalid provider '%s', must be one of: anthropic, ollama", c.LLM.Provider),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	validShells := map[string]bool{"bash": true, "zsh": true, "fish": true, "auto": true}
	if !validShells[strings.ToLower(c.Shell.Type)] {
		errs = append(errs, ValidationError{
			Field:   "shell.type",
			Message: fmt.Sprintf("invalid shell '%s', must be one of: bash, zsh, fish, auto", c.Shell.Type),
		})
	}

	if c.LLM.RatePerMin < 0 {
		errs = append(errs, ValidationError{
			Field:   "llm.rate_per_min",
			Message: "cannot be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values and clamps out-of-range settings. Unlike
// Validate it never fails; it normalizes.
func (c *Config) SetDefaults() {
	d := Default()
	if c.LLM.Provider == "" {
		c.LLM.Provider = d.LLM.Provider
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = d.LLM.APIKeyEnv
	}
	if c.LLM.OllamaURL == "" {
		c.LLM.OllamaURL = d.LLM.OllamaURL
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Shell.Type == "" {
		c.Shell.Type = d.Shell.Type
	}
	if c.Shell.HistoryFile == "" {
		c.Shell.HistoryFile = d.Shell.HistoryFile
	}

	// TTLs: clamp to a sane range rather than erroring.
	if c.Cache.TTLDays <= 0 {
		c.Cache.TTLDays = d.Cache.TTLDays
	}
	if c.Cache.TTLDays > 365 {
		c.Cache.TTLDays = 365
	}
	if c.Cache.ValuesTTLDays <= 0 {
		c.Cache.ValuesTTLDays = d.Cache.ValuesTTLDays
	}
	if c.Cache.ValuesTTLDays > 365 {
		c.Cache.ValuesTTLDays = 365
	}
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalConfig *Config
	globalMu     sync.RWMutex
)

// Global returns the global configuration, loading it on first use.
func Global() *Config {
	globalMu.RLock()
	if globalConfig != nil {
		defer globalMu.RUnlock()
		return globalConfig
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalConfig = cfg
	}
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalMu.Lock()
	globalConfig = cfg
	globalMu.Unlock()
	return nil
}

// SetGlobal replaces the global configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	globalConfig = cfg
	globalMu.Unlock()
}

// ResetGlobalForTesting clears the global configuration.
func ResetGlobalForTesting() {
	globalMu.Lock()
	globalConfig = nil
	globalMu.Unlock()
}
