// kdf.go: Master key derivation via Argon2id with a SHAKE256 extract step.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"encoding/binary"
	"fmt"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/sha3"
)

// Default Argon2id parameters for key derivation.
// These values provide a good balance between security and performance.
const (
	// DefaultTime is the default number of iterations for Argon2id.
	DefaultTime = 3

	// DefaultMemory is the default memory usage in MB for Argon2id.
	DefaultMemory = 64

	// DefaultThreads is the default number of threads for Argon2id.
	DefaultThreads = 4
)

// Domain separation labels. Every SHAKE256 invocation in the engine is
// prefixed with exactly one of these, so streams from different concerns can
// never collide.
const (
	labelMaster   = "atomcrypte/v1/master"
	labelSubkey   = "atomcrypte/v1/subkey"
	labelRecovery = "atomcrypte/v1/recovery"
	labelSlotMask = "atomcrypte/v1/recovery-slot"
	labelSbox     = "atomcrypte/v1/sbox"
	labelStream   = "atomcrypte/v1/keystream"
	labelNonce    = "atomcrypte/v1/nonce"
)

// KDFParams defines custom parameters for the Argon2id step.
//
// If a field is zero, the library's secure default is used.
type KDFParams struct {
	// Time is the number of iterations for Argon2id.
	Time uint32 `json:"time,omitempty"`

	// Memory is the memory usage in MB for Argon2id.
	Memory uint32 `json:"memory,omitempty"`

	// Threads is the number of threads for Argon2id.
	// Should not exceed the number of CPU cores.
	Threads uint8 `json:"threads,omitempty"`
}

// FastKDFParams returns Argon2id parameters optimized for speed.
//
// Suitable for development and testing, or when the threat model allows a
// reduced memory-hardness margin.
//
// Parameters: Time=1, Memory=16MB, Threads=2
func FastKDFParams() *KDFParams {
	return &KDFParams{Time: 1, Memory: 16, Threads: 2}
}

// HighSecurityKDFParams returns Argon2id parameters for maximum security.
//
// Recommended when protecting long-lived archives where derivation latency
// is irrelevant.
//
// Parameters: Time=5, Memory=128MB, Threads=4
func HighSecurityKDFParams() *KDFParams {
	return &KDFParams{Time: 5, Memory: 128, Threads: 4}
}

// DeriveKey derives a master key from password, salt, and nonce.
//
// Two stages: Argon2id folds password and salt into a 32-byte memory-hard
// intermediate, then SHAKE256 keyed by the nonce extracts the final key
// bytes sized to keyBits. The nonce participates only in the extract stage,
// so the expensive Argon2id output can be shared across nonces by a cache.
//
// keyBits must be 256 or 512. An empty password fails with ErrWeakInput.
// The same (password, salt, nonce, keyBits) always yields the same key.
func DeriveKey(password, salt, nonce []byte, keyBits int, params *KDFParams) ([]byte, error) {
	if len(password) == 0 {
		richErr := goerrors.New(ErrCodeWeakInput, "password cannot be empty")
		return nil, fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}
	if len(salt) == 0 {
		richErr := goerrors.New(ErrCodeWeakInput, "salt cannot be empty")
		return nil, fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}
	if keyBits != KeyLength256 && keyBits != KeyLength512 {
		richErr := goerrors.New(ErrCodeInvalidLength, fmt.Sprintf("key length must be 256 or 512 bits, got %d", keyBits))
		return nil, fmt.Errorf("%w: %w", ErrInvalidLength, richErr)
	}

	time := uint32(DefaultTime)
	memory := uint32(DefaultMemory * 1024)
	threads := uint8(DefaultThreads)
	if params != nil {
		if params.Time > 0 {
			time = params.Time
		}
		if params.Memory > 0 {
			memory = params.Memory * 1024
		}
		if params.Threads > 0 {
			threads = params.Threads
		}
	}

	intermediate := argon2.IDKey(password, salt, time, memory, threads, 32)
	defer Zeroize(intermediate)

	// The requested length enters the stream, so a 512-bit key is not a
	// 256-bit key with extra bytes appended.
	var kb [4]byte
	binary.BigEndian.PutUint32(kb[:], uint32(keyBits))

	key := make([]byte, keyBits/8)
	shakeExtract(key, labelMaster, nonce, intermediate, kb[:])
	return key, nil
}

// deriveSubkey derives a fixed-purpose subkey from the master key. The label
// binds the subkey to its purpose; size is in bytes.
func deriveSubkey(master []byte, label string, size int) []byte {
	out := make([]byte, size)
	shakeExtract(out, labelSubkey, []byte(label), master)
	return out
}

// shakeExtract fills dst from a SHAKE256 stream over the label and the
// length-prefixed inputs.
func shakeExtract(dst []byte, label string, inputs ...[]byte) {
	d := sha3.NewShake256()
	d.Write([]byte(label))
	var n [4]byte
	for _, in := range inputs {
		binary.BigEndian.PutUint32(n[:], uint32(len(in)))
		d.Write(n[:])
		d.Write(in)
	}
	d.Read(dst)
}
