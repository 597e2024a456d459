// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package secret seals small values (the saved API key) before they are
// written to the database.
//
// Values are sealed with NaCl secretbox (XSalsa20-Poly1305) under a random
// 32-byte key kept in a 0600 file next to the database. Sealed values carry
// the EncryptedPrefix; Open passes unprefixed values through unchanged so
// rows written before sealing was enabled still load.
package secret

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/jeranaias/llmpad/internal/util"
)

// EncryptedPrefix marks a sealed value (format: ENC:base64(nonce|box)).
const EncryptedPrefix = "ENC:"

// KeySize is the secretbox key size in bytes.
const KeySize = 32

const nonceSize = 24

var (
	// ErrInvalidCiphertext indicates the sealed value is malformed.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates a wrong key or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed: authentication mismatch")
	// ErrInvalidKey indicates the key file has the wrong size.
	ErrInvalidKey = errors.New("invalid key file")
)

// Sealer seals and opens values with a fixed key.
type Sealer struct {
	key [KeySize]byte
}

// New returns a Sealer for key.
func New(key [KeySize]byte) *Sealer {
	return &Sealer{key: key}
}

// LoadOrCreate reads the key at path, generating and persisting a new one
// with 0600 permissions when the file does not exist.
func LoadOrCreate(path string) (*Sealer, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(data) != KeySize {
			return nil, fmt.Errorf("%w: %s has %d bytes", ErrInvalidKey, path, len(data))
		}
		var key [KeySize]byte
		copy(key[:], data)
		return New(key), nil
	case errors.Is(err, os.ErrNotExist):
		var key [KeySize]byte
		if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
			return nil, fmt.Errorf("generate key: %w", err)
		}
		if err := util.AtomicWriteFile(path, key[:], 0600); err != nil {
			return nil, fmt.Errorf("write key: %w", err)
		}
		return New(key), nil
	default:
		return nil, fmt.Errorf("read key: %w", err)
	}
}

// Seal encrypts plain. The empty string stays empty.
func (s *Sealer) Seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal. Values without EncryptedPrefix are
// returned as-is.
func (s *Sealer) Open(sealed string) (string, error) {
	if !IsSealed(sealed) {
		return sealed, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, EncryptedPrefix))
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrInvalidCiphertext
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

// IsSealed reports whether v carries EncryptedPrefix.
func IsSealed(v string) bool {
	return strings.HasPrefix(v, EncryptedPrefix)
}
