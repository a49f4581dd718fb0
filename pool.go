// pool.go: Buffer pooling for keystream blocks and chunk scratch space.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"sync"
)

var (
	// Pool for keystream blocks. Each block covers ksBlockBytes data bytes
	// with three keystream bytes per data byte.
	ksBlockPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, ksBlockLen)
			return &buf
		},
	}

	// Pool for per-chunk keystream lanes (xor/add/rot expanded per byte).
	lanePool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, 0, maxChunkSize)
			return &buf
		},
	}
)

// getKeystreamBlock retrieves a keystream block buffer.
func getKeystreamBlock() *[]byte {
	buf := ksBlockPool.Get().(*[]byte)
	*buf = (*buf)[:ksBlockLen]
	return buf
}

// putKeystreamBlock wipes and returns a keystream block to the pool.
// Keystream material is key-derived, so it is wiped like key material.
func putKeystreamBlock(buf *[]byte) {
	if buf == nil {
		return
	}
	Zeroize(*buf)
	ksBlockPool.Put(buf)
}

// getLane retrieves a lane buffer with at least n bytes of length.
func getLane(n int) *[]byte {
	buf := lanePool.Get().(*[]byte)
	if cap(*buf) < n {
		grown := make([]byte, n)
		*buf = grown
	} else {
		*buf = (*buf)[:n]
	}
	return buf
}

// putLane wipes and returns a lane buffer to the pool.
func putLane(buf *[]byte) {
	if buf == nil {
		return
	}
	Zeroize(*buf)
	// Oversized lanes are dropped rather than pooled to bound idle memory.
	if cap(*buf) <= maxChunkSize {
		lanePool.Put(buf)
	}
}
