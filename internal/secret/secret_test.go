// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package secret

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_SealOpen(t *testing.T) {
	s, err := LoadOrCreate(filepath.Join(t.TempDir(), "secret.key"))
	require.NoError(t, err)

	sealed, err := s.Seal("sk-test-123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, EncryptedPrefix))
	assert.NotContains(t, sealed, "sk-test-123")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", plain)
}

func TestSealer_EmptyAndLegacy(t *testing.T) {
	s := New([KeySize]byte{1})

	sealed, err := s.Seal("")
	require.NoError(t, err)
	assert.Equal(t, "", sealed)

	plain, err := s.Open("plain-legacy-key")
	require.NoError(t, err)
	assert.Equal(t, "plain-legacy-key", plain)
}

func TestSealer_WrongKey(t *testing.T) {
	a := New([KeySize]byte{1})
	b := New([KeySize]byte{2})

	sealed, err := a.Seal("value")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = a.Open(EncryptedPrefix + "!!not base64")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestLoadOrCreate_ReusesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")

	first, err := LoadOrCreate(path)
	require.NoError(t, err)
	sealed, err := first.Seal("persisted")
	require.NoError(t, err)

	second, err := LoadOrCreate(path)
	require.NoError(t, err)
	plain, err := second.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "persisted", plain)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestLoadOrCreate_BadKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0600))

	_, err := LoadOrCreate(path)
	assert.ErrorIs(t, err, ErrInvalidKey)
}
