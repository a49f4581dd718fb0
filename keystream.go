// keystream.go: Positional keystream generation for the round pipeline.
//
// The keystream is addressed by (key, round, block index), never by chunk:
// byte i of the data always sees the same keystream bytes regardless of how
// the pipeline splits the input. Chunk independence and scalar/vector
// equivalence both follow from this addressing.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

const (
	// ksBlockBytes is the number of data bytes covered by one keystream block.
	ksBlockBytes = 32

	// ksBlockLen is the raw length of one keystream block: three lanes
	// (XOR, ADD, ROT) of ksBlockBytes each, stored planar so the wide
	// backend can load aligned words from a single lane.
	ksBlockLen = 3 * ksBlockBytes
)

// fillKeystreamBlock writes the 96-byte block for (key, round, blockIdx)
// into out. Layout: out[0:32] XOR lane, out[32:64] ADD lane, out[64:96] ROT
// lane. Each block is an independent SHAKE256 instance, so blocks can be
// produced in any order by any worker.
func fillKeystreamBlock(out, key []byte, round uint32, blockIdx uint64) {
	var hdr [12]byte
	binary.BigEndian.PutUint32(hdr[0:4], round)
	binary.BigEndian.PutUint64(hdr[4:12], blockIdx)

	d := sha3.NewShake256()
	d.Write([]byte(labelStream))
	d.Write(key)
	d.Write(hdr[:])
	d.Read(out[:ksBlockLen])
}

// fillLanes expands the keystream covering data positions [off, off+n) into
// three per-byte lanes. The rot lane is reduced to shift amounts in [0,7].
func fillLanes(xorL, addL, rotL, key []byte, round uint32, off uint64, n int) {
	blockBuf := getKeystreamBlock()
	defer putKeystreamBlock(blockBuf)
	block := *blockBuf

	pos := off
	written := 0
	for written < n {
		blockIdx := pos / ksBlockBytes
		inBlock := int(pos % ksBlockBytes)
		fillKeystreamBlock(block, key, round, blockIdx)

		take := ksBlockBytes - inBlock
		if take > n-written {
			take = n - written
		}
		copy(xorL[written:written+take], block[inBlock:inBlock+take])
		copy(addL[written:written+take], block[ksBlockBytes+inBlock:ksBlockBytes+inBlock+take])
		for i := 0; i < take; i++ {
			rotL[written+i] = block[2*ksBlockBytes+inBlock+i] & 7
		}

		pos += uint64(take)
		written += take
	}
}
