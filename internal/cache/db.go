// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/quocli/internal/security"
	"github.com/jeranaias/quocli/internal/spec"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnavailable indicates the store could not be reached or created.
	// Callers degrade to always-miss and continue without caching.
	ErrUnavailable = errors.New("cache store unavailable")
	// ErrSensitiveValue indicates an attempted value-cache write for a
	// sensitive field. This is a caller bug; the write is refused.
	ErrSensitiveValue = errors.New("refusing to cache sensitive field value")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS specs (
	fingerprint TEXT PRIMARY KEY,
	identity    TEXT NOT NULL,
	spec_json   TEXT NOT NULL,
	dangerous   INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	last_used   INTEGER,
	use_count   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_specs_identity ON specs(identity);

CREATE TABLE IF NOT EXISTS field_values (
	identity   TEXT NOT NULL,
	field      TEXT NOT NULL,
	value      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (identity, field)
);

CREATE TABLE IF NOT EXISTS history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	identity   TEXT NOT NULL,
	argv_json  TEXT NOT NULL,
	exit_code  INTEGER,
	created_at INTEGER NOT NULL
);
`

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed spec and value cache. It is safe for
// concurrent use; SQLite's single-writer model is respected by limiting
// the pool to one connection.
type Store struct {
	db        *sql.DB
	specTTL   time.Duration
	valueTTL  time.Duration
	vault     *security.Vault
	coalescer coalescer
	now       func() time.Time
}

// Options configure a Store.
type Options struct {
	// Path is the database file location.
	Path string
	// SpecTTL is how long a cached spec stays fresh (default 30 days).
	SpecTTL time.Duration
	// ValueTTL is how long cached field values stay fresh (default 90 days).
	ValueTTL time.Duration
	// KeyPath locates the at-rest encryption key for value rows.
	// Empty disables sealing (values stored in plain text).
	KeyPath string
}

// Open opens (creating if needed) the cache database. Failures wrap
// ErrUnavailable so callers can degrade gracefully.
func Open(opts Options) (*Store, error) {
	if opts.SpecTTL == 0 {
		opts.SpecTTL = 30 * 24 * time.Hour
	}
	if opts.ValueTTL == 0 {
		opts.ValueTTL = 90 * 24 * time.Hour
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: set pragma: %v", ErrUnavailable, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init schema: %v", ErrUnavailable, err)
	}

	s := &Store{
		db:       db,
		specTTL:  opts.SpecTTL,
		valueTTL: opts.ValueTTL,
		now:      time.Now,
	}

	if opts.KeyPath != "" {
		vault, err := security.NewVault(opts.KeyPath)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: open vault: %v", ErrUnavailable, err)
		}
		s.vault = vault
	}

	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// SPEC CACHE
// =============================================================================

// Lookup returns the cached spec for a help-text fingerprint, or nil on
// miss. Entries older than the spec TTL are misses even when physically
// present.
func (s *Store) Lookup(ctx context.Context, fingerprint string) (*spec.CommandSpec, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT spec_json, created_at FROM specs WHERE fingerprint = ?", fingerprint)

	var specJSON string
	var createdAt int64
	if err := row.Scan(&specJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if s.expired(createdAt, s.specTTL) {
		return nil, nil
	}

	cs, err := spec.Decode([]byte(specJSON))
	if err != nil {
		// A spec we once validated no longer decodes: drop the row and
		// treat it as a miss rather than surfacing a corrupt entry.
		_, _ = s.db.ExecContext(ctx, "DELETE FROM specs WHERE fingerprint = ?", fingerprint)
		return nil, nil
	}

	_, _ = s.db.ExecContext(ctx,
		"UPDATE specs SET last_used = ?, use_count = use_count + 1 WHERE fingerprint = ?",
		s.now().Unix(), fingerprint)

	return cs, nil
}

// Store persists a validated spec under its help-text fingerprint.
func (s *Store) Store(ctx context.Context, fingerprint string, cs *spec.CommandSpec) error {
	if err := cs.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}

	dangerous := 0
	if security.IsDangerous(cs) {
		dangerous = 1
	}

	now := s.now().Unix()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO specs (fingerprint, identity, spec_json, dangerous, created_at, last_used, use_count)
		VALUES (?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(fingerprint) DO UPDATE SET
			identity   = excluded.identity,
			spec_json  = excluded.spec_json,
			dangerous  = excluded.dangerous,
			created_at = excluded.created_at,
			last_used  = excluded.last_used`,
		fingerprint, cs.Identity, string(data), dangerous, now, now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Invalidate removes all cached specs for a command identity, independent
// of TTL. Used by manual refresh.
func (s *Store) Invalidate(ctx context.Context, identity string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM specs WHERE identity = ?", identity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Clear drops every cached spec and remembered value. Execution history
// is kept; it is an audit record, not a cache.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var cleared int64

	res, err := s.db.ExecContext(ctx, "DELETE FROM specs")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	n, _ := res.RowsAffected()
	cleared += n

	res, err = s.db.ExecContext(ctx, "DELETE FROM field_values")
	if err != nil {
		return cleared, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	n, _ = res.RowsAffected()
	cleared += n

	return cleared, nil
}

// PurgeExpired reclaims expired spec and value rows. Not required for
// correctness — Lookup/LoadValues already treat expired rows as misses —
// only for space.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var purged int64

	res, err := s.db.ExecContext(ctx, "DELETE FROM specs WHERE created_at < ?",
		now.Add(-s.specTTL).Unix())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	n, _ := res.RowsAffected()
	purged += n

	res, err = s.db.ExecContext(ctx, "DELETE FROM field_values WHERE created_at < ?",
		now.Add(-s.valueTTL).Unix())
	if err != nil {
		return purged, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	n, _ = res.RowsAffected()
	purged += n

	return purged, nil
}

// =============================================================================
// VALUE CACHE
// =============================================================================

// SaveValues stores the non-sensitive field values of a completed session,
// keyed by (identity, field). Sensitive fields are skipped unconditionally;
// fields the spec does not know are skipped too (fail closed). Empty values
// are not stored.
func (s *Store) SaveValues(ctx context.Context, cs *spec.CommandSpec, values map[string]string) error {
	now := s.now().Unix()

	for name, value := range values {
		if value == "" {
			continue
		}
		f := cs.Field(name)
		if f == nil || security.IsSensitive(f) {
			continue
		}

		stored := value
		if s.vault != nil {
			sealed, err := s.vault.Seal(value)
			if err != nil {
				return fmt.Errorf("seal value for %s: %w", name, err)
			}
			stored = sealed
		}

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO field_values (identity, field, value, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(identity, field) DO UPDATE SET
				value      = excluded.value,
				created_at = excluded.created_at`,
			cs.Identity, name, stored, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

// SaveValue stores a single field value, refusing sensitive fields with
// ErrSensitiveValue. The batch path (SaveValues) skips instead of refusing
// because it handles whole sessions; this entry point is for explicit
// writes where silence would hide a bug.
func (s *Store) SaveValue(ctx context.Context, cs *spec.CommandSpec, field, value string) error {
	f := cs.Field(field)
	if f == nil || security.IsSensitive(f) {
		return fmt.Errorf("%w: %s", ErrSensitiveValue, field)
	}
	return s.SaveValues(ctx, cs, map[string]string{field: value})
}

// LoadValues returns the cached non-sensitive values for an identity.
// Expired rows are misses.
func (s *Store) LoadValues(ctx context.Context, identity string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT field, value, created_at FROM field_values WHERE identity = ?", identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var field, stored string
		var createdAt int64
		if err := rows.Scan(&field, &stored, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if s.expired(createdAt, s.valueTTL) {
			continue
		}

		value := stored
		if s.vault != nil {
			opened, err := s.vault.Open(stored)
			if err != nil {
				// Undecryptable row (key rotated, tampered): drop silently,
				// it is only a convenience pre-fill.
				continue
			}
			value = opened
		}
		values[field] = value
	}
	return values, rows.Err()
}

// ClearValues removes all cached values for an identity.
func (s *Store) ClearValues(ctx context.Context, identity string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM field_values WHERE identity = ?", identity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// =============================================================================
// HISTORY
// =============================================================================

// RecordExecution appends a redacted argv and its exit code to the local
// history table. Callers must pass argv through security.RedactArgs first;
// this method stores what it is given.
func (s *Store) RecordExecution(ctx context.Context, identity string, redactedArgv []string, exitCode int) error {
	data, err := json.Marshal(redactedArgv)
	if err != nil {
		return fmt.Errorf("marshal argv: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO history (identity, argv_json, exit_code, created_at) VALUES (?, ?, ?, ?)",
		identity, string(data), exitCode, s.now().Unix())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// =============================================================================
// STATS
// =============================================================================

// Stats summarizes cache contents for the `quocli cache stats` command.
type Stats struct {
	Specs      int `json:"specs"`
	Values     int `json:"values"`
	Executions int `json:"executions"`
}

// Stats returns row counts per table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM specs", &st.Specs},
		{"SELECT COUNT(*) FROM field_values", &st.Values},
		{"SELECT COUNT(*) FROM history", &st.Executions},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return st, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return st, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) expired(createdAt int64, ttl time.Duration) bool {
	return s.now().Sub(time.Unix(createdAt, 0)) > ttl
}
