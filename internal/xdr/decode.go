package xdr

import "encoding/binary"

// Decoder reads XDR primitives from an in-memory byte slice -- the body of a
// single fully-reassembled RPC record (see internal/rpc for reassembly).
// Operating on a slice rather than an io.Reader lets every variable-length
// read check its length prefix against the bytes actually remaining in the
// record, which is what gives us ErrBudgetExceeded instead of silently trying
// to read past another message's data.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf for sequential decoding starting at offset 0.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of undecoded bytes left in the buffer.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// Rest returns the undecoded tail of the buffer without consuming it. Used by
// callers that decode a known envelope and then hand the remainder to a
// different decoder (e.g. RPC envelope vs. procedure arguments).
func (d *Decoder) Rest() []byte {
	return d.buf[d.pos:]
}

func (d *Decoder) readN(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.buf) {
		return nil, ErrShortBuffer
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// Uint32 decodes an unsigned 32-bit integer.
func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Int32 decodes a signed 32-bit integer.
func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

// Uint64 decodes an unsigned 64-bit integer ("hyper").
func (d *Decoder) Uint64() (uint64, error) {
	b, err := d.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// Int64 decodes a signed 64-bit integer.
func (d *Decoder) Int64() (int64, error) {
	v, err := d.Uint64()
	return int64(v), err
}

// Bool decodes an XDR boolean: 0 is false, anything else is true.
func (d *Decoder) Bool() (bool, error) {
	v, err := d.Uint32()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (d *Decoder) skipPadding(dataLen int) error {
	pad := (4 - (dataLen % 4)) % 4
	if pad == 0 {
		return nil
	}
	_, err := d.readN(pad)
	return err
}

// Opaque decodes variable-length opaque data: a 4-byte length, that many
// bytes, and 0-3 padding bytes. If the length prefix claims more data than
// remains in the buffer, ErrBudgetExceeded is returned rather than attempting
// the read -- it would otherwise read into whatever follows this record.
func (d *Decoder) Opaque() ([]byte, error) {
	length, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	if int(length) > d.Remaining() {
		return nil, ErrBudgetExceeded
	}
	data, err := d.readN(int(length))
	if err != nil {
		return nil, err
	}
	if err := d.skipPadding(int(length)); err != nil {
		return nil, err
	}
	// Copy out: the caller may retain this slice past the lifetime of the
	// record buffer (e.g. a WRITE payload handed off to the FSAL).
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// String decodes an XDR string using the same wire format as Opaque.
func (d *Decoder) String() (string, error) {
	data, err := d.Opaque()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FixedOpaque decodes a fixed-size opaque field of exactly n bytes (no length
// prefix), followed by zero-padding to the next 4-byte boundary.
func (d *Decoder) FixedOpaque(n int) ([]byte, error) {
	data, err := d.readN(n)
	if err != nil {
		return nil, err
	}
	if err := d.skipPadding(n); err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Enum decodes a 32-bit signed enum value and rejects anything not present in
// valid, per RFC 4506 §4.3 ("it is an error to encode a value not defined").
func (d *Decoder) Enum(valid map[int32]bool) (int32, error) {
	v, err := d.Int32()
	if err != nil {
		return 0, err
	}
	if !valid[v] {
		return 0, ErrBadEnum
	}
	return v, nil
}
