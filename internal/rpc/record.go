package rpc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxRecordSize is the default cap on the total size of a reassembled
// RPC record, applied across all of its fragments. RFC 5531 does not bound
// fragment length beyond the 31-bit field; this cap exists to keep a
// misbehaving or hostile client from exhausting memory.
const DefaultMaxRecordSize = 16 * 1024 * 1024 // 16 MiB

// lastFragmentBit marks the final fragment of a record in the 4-byte header.
const lastFragmentBit = 0x80000000

// ErrRecordTooLarge is returned when a record (across all its fragments)
// would exceed the configured maximum size.
var ErrRecordTooLarge = errors.New("rpc: record exceeds maximum size")

// ReadRecord reads one complete RPC record from r, reassembling fragments per
// RFC 5531 §11: each fragment is preceded by a 4-byte header whose high bit
// marks "last fragment" and whose low 31 bits give the fragment's length.
// Reassembly continues until a fragment with the last-fragment bit is read.
//
// A fragment (or the running total) that would exceed maxRecordSize causes
// ErrRecordTooLarge; the caller must close the connection -- a framing
// violation is not locally recoverable.
func ReadRecord(r io.Reader, maxRecordSize uint32) ([]byte, error) {
	var record []byte
	for {
		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, err
		}
		val := binary.BigEndian.Uint32(hdr[:])
		last := val&lastFragmentBit != 0
		length := val &^ lastFragmentBit

		if length > maxRecordSize || uint32(len(record))+length > maxRecordSize {
			return nil, ErrRecordTooLarge
		}

		frag := make([]byte, length)
		if _, err := io.ReadFull(r, frag); err != nil {
			return nil, fmt.Errorf("rpc: read fragment body: %w", err)
		}
		record = append(record, frag...)

		if last {
			return record, nil
		}
	}
}

// WriteRecord writes payload as a single-fragment RPC record: the 4-byte
// header (last-fragment bit set, length = len(payload)) immediately followed
// by payload, in one Write call. Some clients start parsing the header
// before the payload has arrived, so header and payload must never be split
// across separate writes.
func WriteRecord(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > 0x7FFFFFFF {
		return fmt.Errorf("rpc: reply too large to frame: %d bytes", len(payload))
	}
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], lastFragmentBit|uint32(len(payload)))
	copy(buf[4:], payload)
	_, err := w.Write(buf)
	return err
}
