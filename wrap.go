// wrap.go: Self-describing record encoding for wrapped ciphertexts.
//
// Layout (all integers big-endian):
//
//	[4] magic "ATCR"
//	[1] format version
//	[1] flags
//	[4] salt length    [salt]
//	[4] nonce length   [nonce]
//	[4] slot length    [slot]        only when flagRecoverySlot is set
//	[8] ct length      [ciphertext]
//	[64] mac
//	[4] pad length     [pad]         only when flagDummyPad is set
//
// Copyright (c) 2025 The AtomCrypte Authors
// SPDX-License-Identifier: MPL-2.0

package atomcrypte

import (
	"bytes"
	"encoding/binary"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// recordVersion is the current wrapped record format version.
const recordVersion = 1

// recordMagic identifies a wrapped record.
var recordMagic = []byte("ATCR")

// Record flags.
const (
	// flagEmptyFiller marks a record whose plaintext was empty and replaced
	// by random filler.
	flagEmptyFiller = 1 << 0

	// flagRecoverySlot marks a record carrying a recovery slot.
	flagRecoverySlot = 1 << 1

	// flagDummyPad marks a record carrying decoy trailing padding.
	flagDummyPad = 1 << 2

	// flagsKnown is the set of flag bits this decoder understands. Anything
	// outside it is either transit corruption or a future format revision,
	// and both must be rejected rather than silently ignored.
	flagsKnown = flagEmptyFiller | flagRecoverySlot | flagDummyPad
)

// maxFieldLen caps the variable-length header fields. Salts, nonces, and
// slots are all well under this; the cap stops a corrupt length prefix from
// driving a huge allocation.
const maxFieldLen = 1 << 16

// wrappedRecord is the decoded form of a wrapped ciphertext.
type wrappedRecord struct {
	flags      byte
	salt       []byte
	nonce      []byte
	slot       []byte
	ciphertext []byte
	mac        []byte
}

func (r *wrappedRecord) emptyFiller() bool { return r.flags&flagEmptyFiller != 0 }
func (r *wrappedRecord) hasSlot() bool     { return r.flags&flagRecoverySlot != 0 }

// encodeRecord serializes a record, appending a fresh dummy pad when the
// record is flagged for one.
func encodeRecord(r *wrappedRecord) ([]byte, error) {
	var pad []byte
	if r.flags&flagDummyPad != 0 {
		var err error
		pad, err = newDummyPad()
		if err != nil {
			return nil, err
		}
	}

	size := len(recordMagic) + 2 +
		4 + len(r.salt) +
		4 + len(r.nonce) +
		8 + len(r.ciphertext) +
		len(r.mac)
	if r.hasSlot() {
		size += 4 + len(r.slot)
	}
	if pad != nil {
		size += 4 + len(pad)
	}

	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.Write(recordMagic)
	buf.WriteByte(recordVersion)
	buf.WriteByte(r.flags)
	writeField32(buf, r.salt)
	writeField32(buf, r.nonce)
	if r.hasSlot() {
		writeField32(buf, r.slot)
	}
	var ctLen [8]byte
	binary.BigEndian.PutUint64(ctLen[:], uint64(len(r.ciphertext)))
	buf.Write(ctLen[:])
	buf.Write(r.ciphertext)
	buf.Write(r.mac)
	if pad != nil {
		writeField32(buf, pad)
	}
	return buf.Bytes(), nil
}

// decodeRecord parses a wrapped record. Every length prefix is checked
// against the remaining input before slicing, so arbitrary bytes fail with
// ErrMalformedRecord instead of panicking.
func decodeRecord(data []byte) (*wrappedRecord, error) {
	rd := recordReader{data: data}

	magic, err := rd.take(len(recordMagic))
	if err != nil || !bytes.Equal(magic, recordMagic) {
		return nil, malformed("missing record magic")
	}
	hdr, err := rd.take(2)
	if err != nil {
		return nil, malformed("truncated header")
	}
	if hdr[0] != recordVersion {
		return nil, malformed(fmt.Sprintf("unsupported record version %d", hdr[0]))
	}
	if hdr[1]&^byte(flagsKnown) != 0 {
		return nil, malformed(fmt.Sprintf("unknown flag bits 0x%02x", hdr[1]&^byte(flagsKnown)))
	}

	r := &wrappedRecord{flags: hdr[1]}
	if r.salt, err = rd.field32(); err != nil {
		return nil, malformed("bad salt field")
	}
	if r.nonce, err = rd.field32(); err != nil {
		return nil, malformed("bad nonce field")
	}
	if r.hasSlot() {
		if r.slot, err = rd.field32(); err != nil {
			return nil, malformed("bad recovery slot field")
		}
	}

	ctLen, err := rd.take(8)
	if err != nil {
		return nil, malformed("truncated ciphertext length")
	}
	n := binary.BigEndian.Uint64(ctLen)
	if n > uint64(rd.remaining()) {
		return nil, malformed("ciphertext length exceeds record")
	}
	if r.ciphertext, err = rd.take(int(n)); err != nil {
		return nil, malformed("truncated ciphertext")
	}
	if r.mac, err = rd.take(macTagLen); err != nil {
		return nil, malformed("truncated authentication tag")
	}
	if r.flags&flagDummyPad != 0 {
		padLen, err := rd.take(4)
		if err != nil {
			return nil, malformed("truncated dummy pad length")
		}
		p := binary.BigEndian.Uint32(padLen)
		if p > dummyPadMaxLen {
			return nil, malformed("dummy pad length out of range")
		}
		if _, err = rd.take(int(p)); err != nil {
			return nil, malformed("truncated dummy pad")
		}
	}
	if rd.remaining() != 0 {
		return nil, malformed("trailing bytes after record")
	}
	return r, nil
}

func malformed(msg string) error {
	richErr := goerrors.New(ErrCodeBadRecord, msg)
	return fmt.Errorf("%w: %w", ErrMalformedRecord, richErr)
}

func writeField32(buf *bytes.Buffer, field []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(field)))
	buf.Write(n[:])
	buf.Write(field)
}

// recordReader is a bounds-checked cursor over an encoded record.
type recordReader struct {
	data []byte
	off  int
}

func (rd *recordReader) remaining() int { return len(rd.data) - rd.off }

func (rd *recordReader) take(n int) ([]byte, error) {
	if n < 0 || n > rd.remaining() {
		return nil, malformed("record truncated")
	}
	out := rd.data[rd.off : rd.off+n]
	rd.off += n
	return out, nil
}

func (rd *recordReader) field32() ([]byte, error) {
	lenBytes, err := rd.take(4)
	if err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBytes)
	if n > maxFieldLen {
		return nil, malformed("field length out of range")
	}
	return rd.take(int(n))
}
