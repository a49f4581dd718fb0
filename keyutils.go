// keyutils.go: Salt/nonce generation, key import/export, and fingerprinting.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"runtime"

	goerrors "github.com/agilira/go-errors"
)

// SaltSize is the length in bytes of generated salts and nonces.
const SaltSize = 32

// NewSalt generates a cryptographically secure random 32-byte salt.
//
// The salt must be stored alongside the ciphertext (or wrapped into it via
// Config.WrapAll); losing it makes standard decryption impossible.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeRandomSource, "failed to generate salt")
		return nil, fmt.Errorf("salt generation failed: %w", richErr)
	}
	return salt, nil
}

// NewNonce generates a cryptographically secure random 32-byte nonce.
//
// A nonce must be used for exactly one encryption per password. The engine
// does not detect reuse.
func NewNonce() ([]byte, error) {
	nonce := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeRandomSource, "failed to generate nonce")
		return nil, fmt.Errorf("nonce generation failed: %w", richErr)
	}
	return nonce, nil
}

// NewTaggedNonce generates a random 32-byte nonce bound to a caller tag.
//
// The tag is mixed into the nonce through the extract hash, so nonces for
// different tags live in disjoint spaces even under a shared randomness
// source. Useful for separating nonce populations per tenant or per purpose.
func NewTaggedNonce(tag []byte) ([]byte, error) {
	if len(tag) == 0 {
		richErr := goerrors.New(ErrCodeWeakInput, "nonce tag cannot be empty")
		return nil, fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}
	seed := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeRandomSource, "failed to generate nonce")
		return nil, fmt.Errorf("nonce generation failed: %w", richErr)
	}
	defer Zeroize(seed)

	nonce := make([]byte, SaltSize)
	shakeExtract(nonce, labelNonce, seed, tag)
	return nonce, nil
}

// NewMachineNonce generates a 32-byte nonce bound to the local machine's
// identity (hostname, OS, architecture) plus fresh randomness.
//
// Like every nonce it must be stored alongside the ciphertext; the machine
// binding only adds identity material to the mix, it does not make the nonce
// reproducible.
func NewMachineNonce() ([]byte, error) {
	seed := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeRandomSource, "failed to generate nonce")
		return nil, fmt.Errorf("nonce generation failed: %w", richErr)
	}
	defer Zeroize(seed)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	nonce := make([]byte, SaltSize)
	shakeExtract(nonce, labelNonce, seed,
		[]byte(hostname), []byte(runtime.GOOS), []byte(runtime.GOARCH))
	return nonce, nil
}

// KeyToBase64 encodes a key as a base64 string.
//
// Useful for storing recovery keys in text-based formats.
func KeyToBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// KeyFromBase64 decodes a base64 string to a key.
func KeyFromBase64(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeInvalidLength, "failed to decode base64 key")
		return nil, fmt.Errorf("%w: %w", ErrInvalidLength, richErr)
	}
	return key, nil
}

// KeyToHex encodes a key as a hexadecimal string.
func KeyToHex(key []byte) string {
	return hex.EncodeToString(key)
}

// KeyFromHex decodes a hexadecimal string to a key.
func KeyFromHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		richErr := goerrors.Wrap(err, ErrCodeInvalidLength, "failed to decode hex key")
		return nil, fmt.Errorf("%w: %w", ErrInvalidLength, richErr)
	}
	return key, nil
}

// GetKeyFingerprint generates a short identifier for a key (non-cryptographic).
//
// The fingerprint is the first 8 bytes of the SHA-256 hash, rendered as hex.
// It is safe to log and never exposes key material.
func GetKeyFingerprint(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	hash := sha256.Sum256(key)
	return fmt.Sprintf("%016x", hash[:8])
}

// cacheFingerprint builds the cache lookup key for a derivation input set.
// Each field is length-prefixed so distinct (password, salt, nonce) triples
// can never collide by concatenation.
func cacheFingerprint(password, salt, nonce []byte, keyBits int) string {
	h := sha256.New()
	var n [4]byte
	for _, field := range [][]byte{password, salt, nonce} {
		binary.BigEndian.PutUint32(n[:], uint32(len(field)))
		h.Write(n[:])
		h.Write(field)
	}
	binary.BigEndian.PutUint32(n[:], uint32(keyBits))
	h.Write(n[:])
	return hex.EncodeToString(h.Sum(nil))
}
