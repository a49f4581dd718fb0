// wipe.go: Secure two-pass memory wiping for sensitive buffers.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"crypto/rand"
)

// Zeroize securely wipes a byte slice from memory.
//
// The buffer is overwritten twice: first with fresh random data, then with
// zeros. The random pass makes cold-boot style recovery of the previous
// contents harder than a plain zero fill; the zero pass leaves the buffer in
// a clean state for pooling or reuse.
//
// If the random source fails the zero pass still runs, so the sensitive
// contents never survive a Zeroize call.
//
// Note: This function modifies the original slice in place.
func Zeroize(b []byte) {
	if len(b) == 0 {
		return
	}
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = 0
	}
}

// zeroizeAll wipes every slice in the list. Convenience for failure paths
// where several intermediates must be released at once.
func zeroizeAll(bufs ...[]byte) {
	for _, b := range bufs {
		Zeroize(b)
	}
}
