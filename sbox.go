// sbox.go: Deterministic substitution table generation.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"fmt"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/crypto/sha3"
)

// SBoxPair holds a byte substitution permutation and its inverse.
// Invariant: Inverse[Forward[x]] == x for every x in [0,256).
type SBoxPair struct {
	Forward [256]byte
	Inverse [256]byte
}

// GenerateSBox derives a substitution table pair from a seed.
//
// A SHAKE256 stream over the seed drives a Fisher-Yates shuffle of the 256
// byte values. Swap indices are drawn by rejection sampling, so every
// permutation is reachable with uniform probability and the output is
// bit-exact for identical seeds. The inverse table is computed by inverting
// the permutation.
func GenerateSBox(seed []byte) (*SBoxPair, error) {
	if len(seed) == 0 {
		richErr := goerrors.New(ErrCodeWeakInput, "sbox seed cannot be empty")
		return nil, fmt.Errorf("%w: %w", ErrWeakInput, richErr)
	}

	d := sha3.NewShake256()
	d.Write([]byte(labelSbox))
	d.Write(seed)

	var pair SBoxPair
	for i := range pair.Forward {
		pair.Forward[i] = byte(i)
	}

	var b [1]byte
	for i := 255; i > 0; i-- {
		// Rejection sampling keeps the swap index unbiased: a raw
		// modulo would favor low indices whenever 256 % (i+1) != 0.
		bound := i + 1
		limit := 256 - 256%bound
		for {
			d.Read(b[:])
			if int(b[0]) < limit {
				break
			}
		}
		j := int(b[0]) % bound
		pair.Forward[i], pair.Forward[j] = pair.Forward[j], pair.Forward[i]
	}

	for i, v := range pair.Forward {
		pair.Inverse[v] = byte(i)
	}
	return &pair, nil
}

// sboxSeed assembles the generation seed per the configured source.
// Password-derived uses the master key, nonce-derived the nonce, combined
// both. The source selector itself is folded in, so switching sources with
// identical inputs yields unrelated tables.
func sboxSeed(master, nonce []byte, source SboxSource) []byte {
	var inputs [][]byte
	switch source {
	case SboxPasswordDerived:
		inputs = [][]byte{master}
	case SboxNonceDerived:
		inputs = [][]byte{nonce}
	default:
		inputs = [][]byte{master, nonce}
	}

	seed := make([]byte, 32)
	all := append([][]byte{{byte(source)}}, inputs...)
	shakeExtract(seed, labelSbox, all...)
	return seed
}
