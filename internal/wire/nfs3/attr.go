package nfs3

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/xdr"
)

// Time3 is nfstime3 (RFC 1813 §2.5): seconds and nanoseconds, both encoded
// as unsigned 32-bit integers.
type Time3 struct {
	Seconds  uint32
	Nseconds uint32
}

func encodeTime3(buf *bytes.Buffer, t Time3) error {
	if err := xdr.WriteUint32(buf, t.Seconds); err != nil {
		return err
	}
	return xdr.WriteUint32(buf, t.Nseconds)
}

func decodeTime3(d *xdr.Decoder) (Time3, error) {
	sec, err := d.Uint32()
	if err != nil {
		return Time3{}, err
	}
	nsec, err := d.Uint32()
	if err != nil {
		return Time3{}, err
	}
	return Time3{Seconds: sec, Nseconds: nsec}, nil
}

// SpecData3 carries the major/minor device numbers for block and character
// special files (RFC 1813 §2.5).
type SpecData3 struct {
	Major uint32
	Minor uint32
}

// Fattr3 is the complete NFSv3 file attribute record (RFC 1813 §2.5). On the
// wire it is always exactly 84 bytes: 14 fixed-width fields, none variable
// length.
type Fattr3 struct {
	Type   FType
	Mode   uint32
	Nlink  uint32
	UID    uint32
	GID    uint32
	Size   uint64
	Used   uint64
	Rdev   SpecData3
	Fsid   uint64
	Fileid uint64
	Atime  Time3
	Mtime  Time3
	Ctime  Time3
}

// FattrWireSize is the fixed byte length of an encoded Fattr3.
const FattrWireSize = 84

// EncodeFattr3 writes the 84-byte fattr3 record. Callers needing
// post_op_attr semantics should use EncodePostOpAttr instead of calling this
// directly, so the boolean discriminator is never forgotten.
func EncodeFattr3(buf *bytes.Buffer, a Fattr3) error {
	if err := xdr.WriteUint32(buf, uint32(a.Type)); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.Mode); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.Nlink); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.UID); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.GID); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Size); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Used); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.Rdev.Major); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.Rdev.Minor); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Fsid); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Fileid); err != nil {
		return err
	}
	if err := encodeTime3(buf, a.Atime); err != nil {
		return err
	}
	if err := encodeTime3(buf, a.Mtime); err != nil {
		return err
	}
	return encodeTime3(buf, a.Ctime)
}

// DecodeFattr3 reads an 84-byte fattr3 record. The server never needs to
// decode fattr3 from a client (only SETATTR's sattr3, which is a different,
// partially-optional shape -- see sattr.go), but GETATTR unit tests and any
// future client-side tooling can round-trip through this.
func DecodeFattr3(d *xdr.Decoder) (Fattr3, error) {
	var a Fattr3
	typ, err := d.Uint32()
	if err != nil {
		return a, err
	}
	a.Type = FType(typ)
	if a.Mode, err = d.Uint32(); err != nil {
		return a, err
	}
	if a.Nlink, err = d.Uint32(); err != nil {
		return a, err
	}
	if a.UID, err = d.Uint32(); err != nil {
		return a, err
	}
	if a.GID, err = d.Uint32(); err != nil {
		return a, err
	}
	if a.Size, err = d.Uint64(); err != nil {
		return a, err
	}
	if a.Used, err = d.Uint64(); err != nil {
		return a, err
	}
	if a.Rdev.Major, err = d.Uint32(); err != nil {
		return a, err
	}
	if a.Rdev.Minor, err = d.Uint32(); err != nil {
		return a, err
	}
	if a.Fsid, err = d.Uint64(); err != nil {
		return a, err
	}
	if a.Fileid, err = d.Uint64(); err != nil {
		return a, err
	}
	if a.Atime, err = decodeTime3(d); err != nil {
		return a, err
	}
	if a.Mtime, err = decodeTime3(d); err != nil {
		return a, err
	}
	if a.Ctime, err = decodeTime3(d); err != nil {
		return a, err
	}
	return a, nil
}

// WccAttr is the wcc_attr record (RFC 1813 §3.3.2): the three fields of
// fattr3 cheap enough to snapshot before a mutating operation, used to build
// pre_op_attr.
type WccAttr struct {
	Size  uint64
	Mtime Time3
	Ctime Time3
}

// WccAttrFromFattr3 extracts the wcc_attr subset of a full fattr3, the usual
// way a pre-op snapshot is produced (handlers call GETATTR on the FSAL both
// before and after a mutation; the "before" attrs only need this subset).
func WccAttrFromFattr3(a Fattr3) WccAttr {
	return WccAttr{Size: a.Size, Mtime: a.Mtime, Ctime: a.Ctime}
}

func encodeWccAttr(buf *bytes.Buffer, a WccAttr) error {
	if err := xdr.WriteUint64(buf, a.Size); err != nil {
		return err
	}
	if err := encodeTime3(buf, a.Mtime); err != nil {
		return err
	}
	return encodeTime3(buf, a.Ctime)
}

// EncodePostOpAttr writes a post_op_attr: a boolean discriminator followed,
// only when true, by a full fattr3. Pass attr == nil for attributes_follow =
// FALSE. Every procedure handler that returns post-operation attributes MUST
// go through this helper rather than hand-rolling the boolean, so the
// discriminator byte sequence (0x00000000 or 0x00000001) is never produced
// any other way in this codebase.
func EncodePostOpAttr(buf *bytes.Buffer, attr *Fattr3) error {
	if attr == nil {
		return xdr.WriteBool(buf, false)
	}
	if err := xdr.WriteBool(buf, true); err != nil {
		return err
	}
	return EncodeFattr3(buf, *attr)
}

// EncodePreOpAttr writes a pre_op_attr: a boolean discriminator followed,
// only when true, by a wcc_attr. Pass attr == nil for attributes_follow =
// FALSE (the object didn't exist, or its prior attributes couldn't be
// fetched -- RFC 1813 §4.8 step 2 treats this as a degrade, not a failure).
func EncodePreOpAttr(buf *bytes.Buffer, attr *WccAttr) error {
	if attr == nil {
		return xdr.WriteBool(buf, false)
	}
	if err := xdr.WriteBool(buf, true); err != nil {
		return err
	}
	return encodeWccAttr(buf, *attr)
}

// EncodeWccData writes a wcc_data: the (pre_op_attr, post_op_attr) pair every
// mutating NFS procedure returns for each directory (and sometimes object)
// it touches.
func EncodeWccData(buf *bytes.Buffer, before *WccAttr, after *Fattr3) error {
	if err := EncodePreOpAttr(buf, before); err != nil {
		return err
	}
	return EncodePostOpAttr(buf, after)
}

// WccData bundles the (pre_op_attr, post_op_attr) pair so handler code can
// pass it around as one value instead of two pointers.
type WccData struct {
	Pre  *WccAttr
	Post *Fattr3
}

// Encode writes w using EncodeWccData.
func (w WccData) Encode(buf *bytes.Buffer) error {
	return EncodeWccData(buf, w.Pre, w.Post)
}
