// Package crypt seals small payloads (session cookies) with AES-256-GCM.
//
// Output is base64url(nonce || ciphertext || tag), safe for cookies:
//
//	box := crypt.New(config.SessionSecret())
//	sealed, _ := box.SealString(sessionID)
//	id, err := box.OpenString(sealed)
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecrypt is returned when decryption or authentication fails.
var ErrDecrypt = errors.New("crypt: decryption failed")

// Box holds an AEAD keyed from a secret string.
type Box struct {
	aead cipher.AEAD
}

// New derives a 32-byte key from secret via SHA-256.
func New(secret string) (*Box, error) {
	if secret == "" {
		return nil, errors.New("crypt: empty secret")
	}
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: new GCM: %w", err)
	}
	return &Box{aead: gcm}, nil
}

// Seal encrypts data.
func (b *Box) Seal(data []byte) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b.aead.Seal(nonce, nonce, data, nil)), nil
}

// Open decrypts a value produced by Seal.
func (b *Box) Open(encoded string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrDecrypt
	}
	n := b.aead.NonceSize()
	if len(data) < n {
		return nil, ErrDecrypt
	}
	plain, err := b.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

func (b *Box) SealString(s string) (string, error) { return b.Seal([]byte(s)) }

func (b *Box) OpenString(encoded string) (string, error) {
	p, err := b.Open(encoded)
	return string(p), err
}
