package nfs3

import "github.com/kestrelfs/nfsd/internal/xdr"

// SetMode3/SetUID3/SetGID3/SetSize3 are each a set_mode3-shaped optional
// scalar (RFC 1813 §2.5): a boolean "set_it" followed, only when true, by
// the value.
type SetMode3 struct {
	Set   bool
	Value uint32
}

type SetUID3 struct {
	Set   bool
	Value uint32
}

type SetGID3 struct {
	Set   bool
	Value uint32
}

type SetSize3 struct {
	Set   bool
	Value uint64
}

// SetTime3 is set_atime/set_mtime (RFC 1813 §2.5): a three-way time_how
// discriminant (DONT_CHANGE, SET_TO_SERVER_TIME, SET_TO_CLIENT_TIME), the
// last of which carries an explicit nfstime3.
type SetTime3 struct {
	How   TimeHow
	Value Time3
}

// Sattr3 is the SETATTR argument's attribute set (RFC 1813 §3.3.2): every
// field is independently optional, letting a client change only mode
// without touching size, or vice versa.
type Sattr3 struct {
	Mode  SetMode3
	UID   SetUID3
	GID   SetGID3
	Size  SetSize3
	Atime SetTime3
	Mtime SetTime3
}

func decodeSetMode3(d *xdr.Decoder) (SetMode3, error) {
	set, err := d.Bool()
	if err != nil || !set {
		return SetMode3{}, err
	}
	v, err := d.Uint32()
	return SetMode3{Set: true, Value: v}, err
}

func decodeSetUID3(d *xdr.Decoder) (SetUID3, error) {
	set, err := d.Bool()
	if err != nil || !set {
		return SetUID3{}, err
	}
	v, err := d.Uint32()
	return SetUID3{Set: true, Value: v}, err
}

func decodeSetGID3(d *xdr.Decoder) (SetGID3, error) {
	set, err := d.Bool()
	if err != nil || !set {
		return SetGID3{}, err
	}
	v, err := d.Uint32()
	return SetGID3{Set: true, Value: v}, err
}

func decodeSetSize3(d *xdr.Decoder) (SetSize3, error) {
	set, err := d.Bool()
	if err != nil || !set {
		return SetSize3{}, err
	}
	v, err := d.Uint64()
	return SetSize3{Set: true, Value: v}, err
}

func decodeSetTime3(d *xdr.Decoder) (SetTime3, error) {
	how, err := d.Uint32()
	if err != nil {
		return SetTime3{}, err
	}
	if TimeHow(how) != SetToClientTime {
		return SetTime3{How: TimeHow(how)}, nil
	}
	t, err := decodeTime3(d)
	return SetTime3{How: SetToClientTime, Value: t}, err
}

// DecodeSattr3 reads a complete sattr3 structure in its RFC-mandated field
// order: mode, uid, gid, size, atime, mtime.
func DecodeSattr3(d *xdr.Decoder) (Sattr3, error) {
	var s Sattr3
	var err error
	if s.Mode, err = decodeSetMode3(d); err != nil {
		return s, err
	}
	if s.UID, err = decodeSetUID3(d); err != nil {
		return s, err
	}
	if s.GID, err = decodeSetGID3(d); err != nil {
		return s, err
	}
	if s.Size, err = decodeSetSize3(d); err != nil {
		return s, err
	}
	if s.Atime, err = decodeSetTime3(d); err != nil {
		return s, err
	}
	if s.Mtime, err = decodeSetTime3(d); err != nil {
		return s, err
	}
	return s, nil
}

// CreateHow3 is the CREATE argument's createhow3 union (RFC 1813 §3.3.8):
// UNCHECKED and GUARDED carry an sattr3, EXCLUSIVE carries an 8-byte
// verifier instead.
type CreateHow3 struct {
	Mode     CreateMode
	Attrs    Sattr3
	Verifier [8]byte
}

// DecodeCreateHow3 reads a createhow3 discriminated on its createmode3 tag.
func DecodeCreateHow3(d *xdr.Decoder) (CreateHow3, error) {
	mode, err := d.Uint32()
	if err != nil {
		return CreateHow3{}, err
	}
	how := CreateHow3{Mode: CreateMode(mode)}
	if how.Mode == Exclusive {
		v, err := d.FixedOpaque(8)
		if err != nil {
			return how, err
		}
		copy(how.Verifier[:], v)
		return how, nil
	}
	how.Attrs, err = DecodeSattr3(d)
	return how, err
}

// MkNodData3 is the MKNOD argument's mknoddata3 union (RFC 1813 §3.3.11):
// CHR/BLK carry an sattr3 plus a specdata3 device number, SOCK/FIFO carry
// only an sattr3, anything else carries nothing.
type MkNodData3 struct {
	Type  FType
	Attrs Sattr3
	Spec  SpecData3
}

// DecodeMkNodData3 reads a mknoddata3 discriminated on its leading ftype3.
func DecodeMkNodData3(d *xdr.Decoder) (MkNodData3, error) {
	typ, err := d.Uint32()
	if err != nil {
		return MkNodData3{}, err
	}
	m := MkNodData3{Type: FType(typ)}
	switch m.Type {
	case TypeChr, TypeBlk:
		if m.Attrs, err = DecodeSattr3(d); err != nil {
			return m, err
		}
		if m.Spec.Major, err = d.Uint32(); err != nil {
			return m, err
		}
		m.Spec.Minor, err = d.Uint32()
		return m, err
	case TypeSock, TypeFifo:
		m.Attrs, err = DecodeSattr3(d)
		return m, err
	default:
		return m, nil
	}
}

// SattrGuard3 is the optional ctime guard on SETATTR (RFC 1813 §3.3.2): if
// present, the request is rejected with NFS3ERR_NOT_SYNC unless it matches
// the object's current ctime.
type SattrGuard3 struct {
	Set   bool
	Ctime Time3
}

// DecodeSattrGuard3 reads the optional guard.
func DecodeSattrGuard3(d *xdr.Decoder) (SattrGuard3, error) {
	set, err := d.Bool()
	if err != nil || !set {
		return SattrGuard3{}, err
	}
	t, err := decodeTime3(d)
	return SattrGuard3{Set: true, Ctime: t}, err
}
