package nfs3

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/xdr"
)

// HandleSize is the fixed width of a file handle on the wire. RFC 1813
// allows up to 64 bytes (NFS3_FHSIZE); this server always emits exactly 32,
// per the handle directory's allocation scheme (internal/handledir).
const HandleSize = 32

// MaxHandleSize is the largest handle this server accepts from a client
// before treating the field as garbage.
const MaxHandleSize = 64

// FileHandle is an opaque, server-assigned file handle. Clients echo it back
// verbatim; its bytes carry no meaning outside internal/handledir.
type FileHandle [HandleSize]byte

// EncodeFileHandle writes a file handle as variable-length opaque data (RFC
// 1813 nfs_fh3: its length prefix equals HandleSize in this server, but
// clients must not assume a fixed size).
func EncodeFileHandle(buf *bytes.Buffer, h FileHandle) error {
	return xdr.WriteOpaque(buf, h[:])
}

// DecodeFileHandle reads a variable-length file handle and rejects anything
// longer than MaxHandleSize or empty.
func DecodeFileHandle(d *xdr.Decoder) (FileHandle, error) {
	var h FileHandle
	raw, err := d.Opaque()
	if err != nil {
		return h, err
	}
	if len(raw) == 0 || len(raw) > MaxHandleSize {
		return h, ErrBadHandleLength
	}
	copy(h[:], raw)
	return h, nil
}
