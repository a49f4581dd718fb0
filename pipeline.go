// pipeline.go: Chunked parallel round transform.
//
// The transform applies N rounds of substitute / keystream-XOR / modular add
// / bit rotate per byte. Keystream addressing is positional (keystream.go),
// so every byte is processed independently of its neighbors: chunking is
// purely a scheduling decision and the scalar and wide backends are
// byte-identical by construction.
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	goerrors "github.com/agilira/go-errors"
	"golang.org/x/sync/errgroup"
)

// Direction selects the transform orientation.
type Direction int

const (
	// Encrypt applies the forward round sequence.
	Encrypt Direction = iota
	// Decrypt applies the exact inverse operations in reverse order.
	Decrypt
)

const (
	// singleChunkMax is the largest input processed as one chunk; splitting
	// below this size costs more in scheduling than it buys in parallelism.
	singleChunkMax = 4 * 1024

	// minChunkSize keeps per-chunk work above the scheduling overhead
	// threshold.
	minChunkSize = 1024

	// maxChunkSize bounds chunk memory and pooled lane buffers.
	maxChunkSize = 1 << 20

	// swarHigh masks the per-byte high bits for the wide add/sub passes.
	swarHigh = uint64(0x8080808080808080)
)

// chunkSizeFor picks the chunk size for an input length and worker count:
// small inputs stay whole, larger ones aim for about four chunks per worker
// so stragglers even out, aligned to the keystream block size.
func chunkSizeFor(totalLen, workers int) int {
	if totalLen <= singleChunkMax {
		return totalLen
	}
	size := totalLen / (workers * 4)
	if size < minChunkSize {
		size = minChunkSize
	}
	if size > maxChunkSize {
		size = maxChunkSize
	}
	// Round up to a whole keystream block so lane fills start aligned.
	if rem := size % ksBlockBytes; rem != 0 {
		size += ksBlockBytes - rem
	}
	return size
}

// Transform runs the round pipeline over data and returns the result as a
// fresh slice; data itself is never modified. The key must match a supported
// key length and the substitution pair must be present.
func Transform(data, key []byte, sb *SBoxPair, rounds int, plan Plan, dir Direction) ([]byte, error) {
	if len(key) != KeyLength256/8 && len(key) != KeyLength512/8 {
		richErr := goerrors.New(ErrCodeInvalidLength, fmt.Sprintf("transform key must be 32 or 64 bytes, got %d", len(key)))
		return nil, fmt.Errorf("%w: %w", ErrInvalidLength, richErr)
	}
	if sb == nil {
		richErr := goerrors.New(ErrCodeInvalidLength, "substitution pair is required")
		return nil, fmt.Errorf("%w: %w", ErrInvalidLength, richErr)
	}
	if rounds < 1 {
		richErr := goerrors.New(ErrCodeBadConfig, "round count must be at least 1")
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedConfig, richErr)
	}

	out := make([]byte, len(data))
	copy(out, data)
	if len(out) == 0 {
		return out, nil
	}

	workers := plan.Workers
	if workers < 1 {
		workers = 1
	}
	chunkSize := chunkSizeFor(len(out), workers)

	if chunkSize >= len(out) || workers == 1 {
		transformChunk(out, 0, key, sb, rounds, dir, plan.Vectorized)
		return out, nil
	}

	var group errgroup.Group
	group.SetLimit(workers)
	for start := 0; start < len(out); start += chunkSize {
		end := start + chunkSize
		if end > len(out) {
			end = len(out)
		}
		chunk := out[start:end]
		off := uint64(start)
		group.Go(func() error {
			transformChunk(chunk, off, key, sb, rounds, dir, plan.Vectorized)
			return nil
		})
	}
	// Workers cannot fail: they share no state and operate on disjoint
	// slices. Wait only synchronizes completion.
	_ = group.Wait()
	return out, nil
}

// transformChunk runs all rounds over one chunk. Zeroized lane buffers come
// from the pool; rounds run sequentially because each round consumes the
// previous round's output.
func transformChunk(chunk []byte, off uint64, key []byte, sb *SBoxPair, rounds int, dir Direction, wide bool) {
	n := len(chunk)
	xorBuf := getLane(n)
	addBuf := getLane(n)
	rotBuf := getLane(n)
	defer putLane(xorBuf)
	defer putLane(addBuf)
	defer putLane(rotBuf)
	xorL, addL, rotL := *xorBuf, *addBuf, *rotBuf

	if dir == Encrypt {
		for r := 0; r < rounds; r++ {
			fillLanes(xorL, addL, rotL, key, uint32(r), off, n)
			encryptRound(chunk, xorL, addL, rotL, sb, wide)
		}
		return
	}
	for r := rounds - 1; r >= 0; r-- {
		fillLanes(xorL, addL, rotL, key, uint32(r), off, n)
		decryptRound(chunk, xorL, addL, rotL, sb, wide)
	}
}

// encryptRound applies substitute, XOR, add, rotate-left.
func encryptRound(chunk, xorL, addL, rotL []byte, sb *SBoxPair, wide bool) {
	for i, b := range chunk {
		chunk[i] = sb.Forward[b]
	}
	if wide {
		xorAddWide(chunk, xorL, addL)
	} else {
		for i := range chunk {
			chunk[i] = (chunk[i] ^ xorL[i]) + addL[i]
		}
	}
	for i := range chunk {
		chunk[i] = bits.RotateLeft8(chunk[i], int(rotL[i]))
	}
}

// decryptRound applies rotate-right, subtract, XOR, inverse substitute.
func decryptRound(chunk, xorL, addL, rotL []byte, sb *SBoxPair, wide bool) {
	for i := range chunk {
		chunk[i] = bits.RotateLeft8(chunk[i], -int(rotL[i]))
	}
	if wide {
		subXorWide(chunk, addL, xorL)
	} else {
		for i := range chunk {
			chunk[i] = (chunk[i] - addL[i]) ^ xorL[i]
		}
	}
	for i, b := range chunk {
		chunk[i] = sb.Inverse[b]
	}
}

// xorAddWide performs the XOR and modular-add passes eight bytes at a time.
// The add uses carry-isolated SWAR arithmetic so byte lanes never interact,
// matching the scalar path bit for bit.
func xorAddWide(data, xorL, addL []byte) {
	n := len(data) &^ 7
	for i := 0; i < n; i += 8 {
		w := binary.LittleEndian.Uint64(data[i:])
		w ^= binary.LittleEndian.Uint64(xorL[i:])
		a := binary.LittleEndian.Uint64(addL[i:])
		w = ((w &^ swarHigh) + (a &^ swarHigh)) ^ ((w ^ a) & swarHigh)
		binary.LittleEndian.PutUint64(data[i:], w)
	}
	for i := n; i < len(data); i++ {
		data[i] = (data[i] ^ xorL[i]) + addL[i]
	}
}

// subXorWide is the inverse of xorAddWide: modular subtract, then XOR.
func subXorWide(data, addL, xorL []byte) {
	n := len(data) &^ 7
	for i := 0; i < n; i += 8 {
		w := binary.LittleEndian.Uint64(data[i:])
		a := binary.LittleEndian.Uint64(addL[i:])
		w = ((w | swarHigh) - (a &^ swarHigh)) ^ ((w ^ ^a) & swarHigh)
		w ^= binary.LittleEndian.Uint64(xorL[i:])
		binary.LittleEndian.PutUint64(data[i:], w)
	}
	for i := n; i < len(data); i++ {
		data[i] = (data[i] - addL[i]) ^ xorL[i]
	}
}
