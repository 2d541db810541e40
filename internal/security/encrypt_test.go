// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := NewVault(filepath.Join(t.TempDir(), "cache.key"))
	require.NoError(t, err)
	return v
}

func TestVault_SealOpenRoundTrip(t *testing.T) {
	v := newTestVault(t)

	for _, plain := range []string{"hello", "path with spaces/and/ühî", "10"} {
		sealed, err := v.Seal(plain)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(sealed, encryptedPrefix))
		require.NotContains(t, sealed, plain)

		opened, err := v.Open(sealed)
		require.NoError(t, err)
		require.Equal(t, plain, opened)
	}
}

func TestVault_EmptyValue(t *testing.T) {
	v := newTestVault(t)
	sealed, err := v.Seal("")
	require.NoError(t, err)
	require.Equal(t, "", sealed)
}

func TestVault_LegacyPlainValuePassesThrough(t *testing.T) {
	v := newTestVault(t)
	opened, err := v.Open("unsealed-legacy-value")
	require.NoError(t, err)
	require.Equal(t, "unsealed-legacy-value", opened)
}

func TestVault_TamperDetection(t *testing.T) {
	v := newTestVault(t)
	sealed, err := v.Seal("value")
	require.NoError(t, err)

	// Flip a character in the base64 payload.
	tampered := sealed[:len(sealed)-2] + "AA"
	_, err = v.Open(tampered)
	require.Error(t, err)
}

func TestVault_WrongKeyFails(t *testing.T) {
	v1 := newTestVault(t)
	v2 := newTestVault(t)

	sealed, err := v1.Seal("value")
	require.NoError(t, err)

	_, err = v2.Open(sealed)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestVault_KeyFilePersists(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "cache.key")

	v1, err := NewVault(keyPath)
	require.NoError(t, err)
	sealed, err := v1.Seal("value")
	require.NoError(t, err)

	// Reload from the same key file.
	v2, err := NewVault(keyPath)
	require.NoError(t, err)
	opened, err := v2.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "value", opened)

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
