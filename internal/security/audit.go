// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/quocli/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultMaxLogSize is the max audit log size before rotation (10MB).
const DefaultMaxLogSize int64 = 10 * 1024 * 1024

// maxFreeTextRunes caps the Error and Detail fields of one event.
const maxFreeTextRunes = 2048

// Event types recorded in the audit log.
const (
	EventSpecGenerated = "spec_generated"
	EventCacheHit      = "cache_hit"
	EventCacheMiss     = "cache_miss"
	EventExecuted      = "command_executed"
	EventCancelled     = "session_cancelled"
	EventRefused       = "execution_refused"
)

// =============================================================================
// AUDIT EVENT
// =============================================================================

// AuditEvent is one JSON-lines audit record. Argv and values must already
// be redacted by the caller; the logger additionally refuses obviously
// unredacted writes as a last line of defense.
type AuditEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Identity  string    `json:"identity,omitempty"`
	Argv      []string  `json:"argv,omitempty"` // redacted tokens only
	ExitCode  *int      `json:"exit_code,omitempty"`
	Error     string    `json:"error,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

// AuditLogger appends redacted events to a JSON-lines file with size-based
// rotation. Safe for concurrent use.
type AuditLogger struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	enabled bool
}

// NewAuditLogger creates a logger writing to path. A disabled logger (empty
// path or enabled=false) accepts events and drops them.
func NewAuditLogger(path string, enabled bool) *AuditLogger {
	return &AuditLogger{
		path:    path,
		maxSize: DefaultMaxLogSize,
		enabled: enabled && path != "",
	}
}

// Log appends one event. Errors are returned, never fatal: audit failures
// must not break the interactive session, but callers log a warning.
func (l *AuditLogger) Log(event AuditEvent) error {
	if !l.enabled {
		return nil
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	// Error text can carry an entire captured stderr; one pathological
	// event must not blow through the rotation budget.
	event.Error = util.TruncateRunes(event.Error, maxFreeTextRunes)
	event.Detail = util.TruncateRunes(event.Detail, maxFreeTextRunes)

	data, err := json.Marshal(&event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.rotateLocked(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// rotateLocked renames the log aside once it exceeds maxSize.
func (l *AuditLogger) rotateLocked() error {
	info, err := os.Stat(l.path)
	if err != nil || info.Size() < l.maxSize {
		return nil
	}
	rotated := l.path + "." + time.Now().UTC().Format("20060102T150405")
	if err := os.Rename(l.path, rotated); err != nil {
		return fmt.Errorf("rotate audit log: %w", err)
	}
	return nil
}

// Path returns the audit log location.
func (l *AuditLogger) Path() string { return l.path }
