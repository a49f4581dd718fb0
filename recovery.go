// recovery.go: Recovery key derivation and the recovery slot.
//
// A recovery key is a second password-derived key that can unlock a wrapped
// record without the original salt. The record stores a recovery slot: the
// master key masked with a SHAKE pad derived from the recovery key and the
// nonce. Unmasking the slot recovers the master key directly, skipping the
// salt-dependent derivation path.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"encoding/binary"
	"fmt"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/argon2"
)

// DeriveRecoveryKey derives the recovery key for a password and nonce.
//
// The nonce doubles as the Argon2id salt here, so the recovery key depends
// only on material that is stored inside the wrapped record. It is distinct
// from the master key for the same inputs because the extract stage uses a
// recovery-specific label.
func DeriveRecoveryKey(password, nonce []byte, keyBits int) ([]byte, error) {
	if len(password) == 0 {
		richErr := goerrors.New(ErrCodeWeakInput, "password cannot be empty")
		return nil, fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}
	if len(nonce) == 0 {
		richErr := goerrors.New(ErrCodeWeakInput, "nonce cannot be empty")
		return nil, fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}
	if keyBits != KeyLength256 && keyBits != KeyLength512 {
		richErr := goerrors.New(ErrCodeInvalidLength, fmt.Sprintf("key length must be 256 or 512 bits, got %d", keyBits))
		return nil, fmt.Errorf("%w: %w", ErrInvalidLength, richErr)
	}

	intermediate := argon2.IDKey(password, nonce, DefaultTime, DefaultMemory*1024, DefaultThreads, 32)
	defer Zeroize(intermediate)

	var kb [4]byte
	binary.BigEndian.PutUint32(kb[:], uint32(keyBits))

	key := make([]byte, keyBits/8)
	shakeExtract(key, labelRecovery, nonce, intermediate, kb[:])
	return key, nil
}

// maskRecoverySlot produces the recovery slot for a master key: the master
// XORed with a pad bound to the recovery key and nonce.
func maskRecoverySlot(master, recoveryKey, nonce []byte) []byte {
	pad := make([]byte, len(master))
	shakeExtract(pad, labelSlotMask, recoveryKey, nonce)
	defer Zeroize(pad)

	slot := make([]byte, len(master))
	for i := range master {
		slot[i] = master[i] ^ pad[i]
	}
	return slot
}

// unmaskRecoverySlot recovers the master key from a stored slot. XOR masking
// is its own inverse, so this is maskRecoverySlot applied to the slot.
func unmaskRecoverySlot(slot, recoveryKey, nonce []byte) []byte {
	return maskRecoverySlot(slot, recoveryKey, nonce)
}
