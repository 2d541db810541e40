// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/quocli/internal/spec"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(Options{
		Path:    filepath.Join(dir, "cache.db"),
		KeyPath: filepath.Join(dir, "key"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSpec() *spec.CommandSpec {
	return &spec.CommandSpec{
		Identity:    "tar",
		Description: "archive files",
		Fields: []spec.FieldSpec{
			{Name: "file", Kind: spec.KindPath, Positional: true, Order: 0, Required: true},
			{Name: "verbose", Kind: spec.KindFlag},
			{Name: "password", Kind: spec.KindSecret},
		},
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("Usage: tar [OPTIONS]")
	b := Fingerprint("Usage: tar [OPTIONS]")
	c := Fingerprint("Usage: tar [OPTIONS]\n")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "whitespace differences must change the fingerprint")
	assert.Len(t, a, 64)
}

func TestStoreLookupRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	fp := Fingerprint("tar help")

	got, err := s.Lookup(ctx, fp)
	require.NoError(t, err)
	assert.Nil(t, got, "empty cache must miss")

	require.NoError(t, s.Store(ctx, fp, testSpec()))

	got, err = s.Lookup(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tar", got.Identity)
	assert.Len(t, got.Fields, 3)
}

func TestStoreRejectsInvalidSpec(t *testing.T) {
	s := testStore(t)
	bad := &spec.CommandSpec{} // no identity

	err := s.Store(context.Background(), Fingerprint("x"), bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, spec.ErrMalformed)
}

func TestLookupExpiredIsMiss(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	fp := Fingerprint("tar help")

	require.NoError(t, s.Store(ctx, fp, testSpec()))

	s.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	got, err := s.Lookup(ctx, fp)
	require.NoError(t, err)
	assert.Nil(t, got, "entries past the TTL are misses")
}

func TestInvalidateByIdentity(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	fp := Fingerprint("tar help")

	require.NoError(t, s.Store(ctx, fp, testSpec()))
	require.NoError(t, s.Invalidate(ctx, "tar"))

	got, err := s.Lookup(ctx, fp)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPurgeExpired(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, Fingerprint("a"), testSpec()))

	n, err := s.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n, "fresh rows survive a purge")

	n, err = s.PurgeExpired(ctx, time.Now().Add(100*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSaveValuesSkipsSensitiveAndUnknown(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	cs := testSpec()

	require.NoError(t, s.SaveValues(ctx, cs, map[string]string{
		"file":     "/tmp/out.tar",
		"password": "hunter2",
		"bogus":    "nope",
		"verbose":  "",
	}))

	values, err := s.LoadValues(ctx, "tar")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"file": "/tmp/out.tar"}, values)
}

func TestSaveValueRefusesSensitive(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	cs := testSpec()

	err := s.SaveValue(ctx, cs, "password", "hunter2")
	assert.ErrorIs(t, err, ErrSensitiveValue)

	err = s.SaveValue(ctx, cs, "unknown", "x")
	assert.ErrorIs(t, err, ErrSensitiveValue)

	require.NoError(t, s.SaveValue(ctx, cs, "file", "/tmp/a"))
}

func TestLoadValuesExpiredIsMiss(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	cs := testSpec()

	require.NoError(t, s.SaveValues(ctx, cs, map[string]string{"file": "/tmp/a"}))

	s.now = func() time.Time { return time.Now().Add(91 * 24 * time.Hour) }

	values, err := s.LoadValues(ctx, "tar")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestValuesSealedAtRest(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	cs := testSpec()

	require.NoError(t, s.SaveValues(ctx, cs, map[string]string{"file": "/tmp/a"}))

	var stored string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM field_values WHERE identity = 'tar' AND field = 'file'").Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "/tmp/a", stored, "values must not be stored in plain text")
}

func TestClearValues(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	cs := testSpec()

	require.NoError(t, s.SaveValues(ctx, cs, map[string]string{"file": "/tmp/a"}))
	require.NoError(t, s.ClearValues(ctx, "tar"))

	values, err := s.LoadValues(ctx, "tar")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestGetOrParseCachesResult(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var calls atomic.Int32
	parse := func(ctx context.Context, helpText string) (*spec.CommandSpec, error) {
		calls.Add(1)
		return testSpec(), nil
	}

	cs, hit, err := s.GetOrParse(ctx, "tar help", parse)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "tar", cs.Identity)

	cs, hit, err = s.GetOrParse(ctx, "tar help", parse)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "tar", cs.Identity)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrParseCoalescesConcurrent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	parse := func(ctx context.Context, helpText string) (*spec.CommandSpec, error) {
		calls.Add(1)
		<-release
		return testSpec(), nil
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = s.GetOrParse(ctx, "tar help", parse)
		}(i)
	}

	// Give every goroutine time to miss the cache and join the flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load(), "concurrent misses share one parse")
}

func TestGetOrParsePropagatesParseError(t *testing.T) {
	s := testStore(t)
	sentinel := errors.New("model unreachable")

	_, _, err := s.GetOrParse(context.Background(), "tar help",
		func(ctx context.Context, helpText string) (*spec.CommandSpec, error) {
			return nil, sentinel
		})
	assert.ErrorIs(t, err, sentinel)
}

func TestGetOrParseSurvivesBrokenStore(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Close())

	// Lookup and Store both fail against the closed database; the parse
	// result must still reach the caller.
	cs, hit, err := s.GetOrParse(context.Background(), "tar help",
		func(ctx context.Context, helpText string) (*spec.CommandSpec, error) {
			return testSpec(), nil
		})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "tar", cs.Identity)
}

func TestGetOrParseRejectsInvalidParse(t *testing.T) {
	s := testStore(t)

	_, _, err := s.GetOrParse(context.Background(), "tar help",
		func(ctx context.Context, helpText string) (*spec.CommandSpec, error) {
			return &spec.CommandSpec{}, nil
		})
	assert.ErrorIs(t, err, spec.ErrMalformed)
}

func TestRecordExecutionAndStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, Fingerprint("a"), testSpec()))
	require.NoError(t, s.SaveValues(ctx, testSpec(), map[string]string{"file": "/tmp/a"}))
	require.NoError(t, s.RecordExecution(ctx, "tar", []string{"tar", "--password", "***"}, 0))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Specs: 1, Values: 1, Executions: 1}, st)
}
