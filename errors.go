// errors.go: Error kinds and codes for encryption and decryption operations.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import "errors"

// Public standard errors for drop-in compatibility.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrWeakInput is returned when the password is empty or degenerate.
	ErrWeakInput = errors.New("atomcrypte: weak input")

	// ErrInvalidLength is returned when a key length is unsupported or a
	// buffer length does not match what the operation requires.
	ErrInvalidLength = errors.New("atomcrypte: invalid length")

	// ErrUnsupportedConfig is returned when the configuration combines
	// options that cannot be honored together.
	ErrUnsupportedConfig = errors.New("atomcrypte: unsupported configuration")

	// ErrMacMismatch is returned when authentication fails on decrypt.
	// No plaintext is ever returned alongside this error.
	ErrMacMismatch = errors.New("atomcrypte: MAC mismatch")

	// ErrMalformedRecord is returned when a wrapped record cannot be parsed.
	ErrMalformedRecord = errors.New("atomcrypte: malformed record")
)

// Error codes for rich error handling
const (
	ErrCodeWeakInput     = "ATOM_WEAK_INPUT"
	ErrCodeInvalidLength = "ATOM_INVALID_LENGTH"
	ErrCodeBadConfig     = "ATOM_UNSUPPORTED_CONFIG"
	ErrCodeMacMismatch   = "ATOM_MAC_MISMATCH"
	ErrCodeBadRecord     = "ATOM_MALFORMED_RECORD"
	ErrCodeRandomSource  = "ATOM_RANDOM_SOURCE"
)
