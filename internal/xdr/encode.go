package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WriteUint32 encodes an unsigned 32-bit integer: 4 bytes, big-endian.
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteInt32 encodes a signed 32-bit integer: 4 bytes, big-endian, two's
// complement. Enumerations are encoded this way per RFC 4506 §4.3.
func WriteInt32(buf *bytes.Buffer, v int32) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteUint64 encodes an unsigned 64-bit integer ("hyper"): 8 bytes, big-endian.
func WriteUint64(buf *bytes.Buffer, v uint64) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteInt64 encodes a signed 64-bit integer: 8 bytes, big-endian.
func WriteInt64(buf *bytes.Buffer, v int64) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteBool encodes a boolean as a 32-bit integer, 0 or 1.
func WriteBool(buf *bytes.Buffer, v bool) error {
	if v {
		return WriteUint32(buf, 1)
	}
	return WriteUint32(buf, 0)
}

// WritePadding emits the 0-3 zero bytes needed to align dataLen to a 4-byte
// boundary. Called after every variable-length opaque/string/array write.
func WritePadding(buf *bytes.Buffer, dataLen int) error {
	pad := (4 - (dataLen % 4)) % 4
	if pad == 0 {
		return nil
	}
	var zero [3]byte
	_, err := buf.Write(zero[:pad])
	return err
}

// WriteOpaque encodes variable-length opaque data: length, data, padding.
func WriteOpaque(buf *bytes.Buffer, data []byte) error {
	if err := WriteUint32(buf, uint32(len(data))); err != nil {
		return fmt.Errorf("xdr: write opaque length: %w", err)
	}
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("xdr: write opaque data: %w", err)
	}
	return WritePadding(buf, len(data))
}

// WriteFixedOpaque encodes a fixed-size opaque field of exactly n bytes: the
// data itself followed by zero-padding if n is not a multiple of 4. Unlike
// WriteOpaque there is no length prefix -- the size is implied by the protocol.
// If len(data) < n, the remaining bytes are written as zero.
func WriteFixedOpaque(buf *bytes.Buffer, data []byte, n int) error {
	if len(data) > n {
		return fmt.Errorf("xdr: fixed opaque overflow: have %d want %d", len(data), n)
	}
	if _, err := buf.Write(data); err != nil {
		return err
	}
	if short := n - len(data); short > 0 {
		if _, err := buf.Write(make([]byte, short)); err != nil {
			return err
		}
	}
	return WritePadding(buf, n)
}

// WriteString encodes a string using the same length+data+padding rule as
// WriteOpaque.
func WriteString(buf *bytes.Buffer, s string) error {
	return WriteOpaque(buf, []byte(s))
}
