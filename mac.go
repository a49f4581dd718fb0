// mac.go: Authentication tag computation and verification.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"crypto/hmac"
	"crypto/subtle"
	"fmt"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/sha3"
)

// macTagLen is the length of the authentication tag in bytes.
const macTagLen = 64

// computeMac derives a dedicated MAC subkey from the master key and returns
// an HMAC-SHA3-512 tag over plaintext followed by ciphertext. Binding both
// sides means a tag match proves the decryption result, not just that the
// ciphertext arrived intact.
func computeMac(master, plaintext, ciphertext []byte) []byte {
	macKey := deriveSubkey(master, "mac", macTagLen)
	defer Zeroize(macKey)

	mac := hmac.New(sha3.New512, macKey)
	mac.Write(plaintext)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

// verifyMac recomputes the tag and compares it in constant time. A mismatch
// reports tampering without revealing which portion of the tag differed.
func verifyMac(master, plaintext, ciphertext, tag []byte) error {
	if len(tag) != macTagLen {
		richErr := goerrors.New(ErrCodeMacMismatch, fmt.Sprintf("tag must be %d bytes, got %d", macTagLen, len(tag)))
		return fmt.Errorf("%w: %w", ErrMacMismatch, richErr)
	}
	want := computeMac(master, plaintext, ciphertext)
	defer Zeroize(want)
	if subtle.ConstantTimeCompare(want, tag) != 1 {
		richErr := goerrors.New(ErrCodeMacMismatch, "authentication tag does not match")
		return fmt.Errorf("%w: %w", ErrMacMismatch, richErr)
	}
	return nil
}
