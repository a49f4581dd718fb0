// dummy.go: Filler plaintext for empty inputs and decoy record padding.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	goerrors "github.com/agilira/go-errors"
)

const (
	// fillerMinLen and fillerMaxLen bound the random plaintext substituted
	// for an empty input. The range keeps ciphertext lengths for empty
	// inputs unpredictable.
	fillerMinLen = 1
	fillerMaxLen = 8 * 1024

	// dummyPadMaxLen bounds the decoy padding appended to wrapped records.
	dummyPadMaxLen = 1 << 20
)

// newFiller returns random plaintext standing in for an empty input. The
// length itself is drawn from the system randomness source so identical
// empty inputs produce ciphertexts of different sizes.
func newFiller() ([]byte, error) {
	n, err := randomLen(fillerMinLen, fillerMaxLen)
	if err != nil {
		return nil, err
	}
	filler := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, filler); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeRandomSource, "filler generation failed")
		return nil, fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}
	return filler, nil
}

// newDummyPad returns decoy bytes appended to a wrapped record when the
// configuration asks for size obfuscation. The pad carries no structure and
// is skipped wholesale on decode.
func newDummyPad() ([]byte, error) {
	n, err := randomLen(1, dummyPadMaxLen)
	if err != nil {
		return nil, err
	}
	pad := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, pad); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeRandomSource, "dummy pad generation failed")
		return nil, fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}
	return pad, nil
}

// randomLen picks a length in [min, max]. Lengths only need to be
// unpredictable, so the slight modulo bias is acceptable.
func randomLen(min, max int) (int, error) {
	var draw [8]byte
	if _, err := io.ReadFull(rand.Reader, draw[:]); err != nil {
		richErr := goerrors.Wrap(err, ErrCodeRandomSource, "length draw failed")
		return 0, fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}
	span := uint64(max - min + 1)
	return min + int(binary.LittleEndian.Uint64(draw[:])%span), nil
}
