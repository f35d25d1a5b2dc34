package xdr

import "bytes"

// WriteDiscriminant writes the uint32 discriminant that precedes every XDR
// discriminated union arm (RFC 4506 §4.15). Named separately from WriteUint32
// so union encoders read as self-documenting call sites.
func WriteDiscriminant(buf *bytes.Buffer, disc uint32) error {
	return WriteUint32(buf, disc)
}

// Discriminant decodes the uint32 discriminant of a union.
func (d *Decoder) Discriminant() (uint32, error) {
	return d.Uint32()
}
