// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// At-rest protection for the value cache. Cached field values are only ever
// non-sensitive, but they still describe how a user runs their tools, so
// rows are sealed with AES-256-GCM under a per-install key file.

// =============================================================================
// CONSTANTS
// =============================================================================

// encryptedPrefix marks a sealed value (format: ENC:base64(salt|nonce|ct)).
const encryptedPrefix = "ENC:"

const (
	keySize    = 32 // AES-256
	nonceSize  = 12 // GCM standard nonce
	saltSize   = 16
	kdfRounds  = 600000 // OWASP 2023 floor for PBKDF2-SHA-256
	keyFileLen = 32
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidCiphertext indicates the sealed value format is invalid.
	ErrInvalidCiphertext = errors.New("invalid sealed value format")
	// ErrDecryptionFailed indicates the key is wrong or the data tampered.
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// =============================================================================
// ZEROING
// =============================================================================

// ZeroBytes overwrites sensitive byte slices to limit memory disclosure.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ZeroString is a best-effort helper for callers that hold secrets in maps:
// Go strings are immutable, so the map slot is replaced with "" and the
// caller drops the last reference.
func ZeroString(m map[string]string, key string) {
	m[key] = ""
}

// =============================================================================
// VAULT
// =============================================================================

// Vault seals and opens value-cache rows. Construction loads (or creates)
// the random master secret at keyPath with 0600 permissions.
type Vault struct {
	secret []byte
}

// NewVault loads the master secret from keyPath, creating it on first use.
func NewVault(keyPath string) (*Vault, error) {
	secret, err := os.ReadFile(keyPath)
	if err == nil && len(secret) == keyFileLen {
		return &Vault{secret: secret}, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	secret = make([]byte, keyFileLen)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, fmt.Errorf("generate master secret: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(keyPath, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return &Vault{secret: secret}, nil
}

// Seal encrypts a plaintext value for storage. Empty input stays empty.
func (v *Vault) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := pbkdf2.Key(v.secret, salt, kdfRounds, keySize, sha256.New)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, saltSize+nonceSize+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	return encryptedPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

// Open decrypts a sealed value. Plain (legacy, unsealed) values pass
// through unchanged so existing caches keep working.
func (v *Vault) Open(stored string) (string, error) {
	if !strings.HasPrefix(stored, encryptedPrefix) {
		return stored, nil
	}

	blob, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, encryptedPrefix))
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(blob) < saltSize+nonceSize+1 {
		return "", ErrInvalidCiphertext
	}

	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+nonceSize]
	ciphertext := blob[saltSize+nonceSize:]

	key := pbkdf2.Key(v.secret, salt, kdfRounds, keySize, sha256.New)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
