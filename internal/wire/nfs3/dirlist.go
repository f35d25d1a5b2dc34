package nfs3

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/xdr"
)

// CookieVerf3 is the 8-byte opaque cookieverf (RFC 1813 §3.3.16): a value
// tying a READDIR cookie to the listing order it was issued under. This
// server uses an all-zero verifier throughout, since its FSAL produces a
// stable directory ordering (see fsal.Backend.ReadDir) that never changes
// between listings of the same directory.
type CookieVerf3 [8]byte

// Entry3 is a single READDIR directory entry (RFC 1813 §3.3.16): file id,
// name, and the opaque cookie a client echoes back to resume iteration after
// this entry.
type Entry3 struct {
	FileID uint64
	Name   string
	Cookie uint64
}

// EncodeEntryList writes the READDIR entry chain as a "linked list in XDR":
// before each entry, boolean true; after the last, boolean false. The
// trailing EOF boolean is the caller's responsibility, since it is not part
// of the entry list itself (RFC 1813 leaves it as a sibling field in
// READDIR3resok).
func EncodeEntryList(buf *bytes.Buffer, entries []Entry3) error {
	for _, e := range entries {
		if err := xdr.WriteBool(buf, true); err != nil {
			return err
		}
		if err := xdr.WriteUint64(buf, e.FileID); err != nil {
			return err
		}
		if err := xdr.WriteString(buf, e.Name); err != nil {
			return err
		}
		if err := xdr.WriteUint64(buf, e.Cookie); err != nil {
			return err
		}
	}
	return xdr.WriteBool(buf, false)
}

// EntryPlus3 is a READDIRPLUS entry (RFC 1813 §3.3.17): an Entry3 plus a
// post_op_attr and post_op_fh3 for the named object. Per-entry attribute or
// handle failures must degrade to attributes_follow/handle_follows = FALSE
// rather than aborting the whole call -- see the readdirplus handler in
// internal/nfs3handlers.
type EntryPlus3 struct {
	FileID uint64
	Name   string
	Cookie uint64
	Attr   *Fattr3
	Handle *FileHandle
}

// EncodeEntryPlusList writes the READDIRPLUS entry chain, the same
// true/false linked-list shape as EncodeEntryList but with a post_op_attr
// and post_op_fh3 folded into each entry.
func EncodeEntryPlusList(buf *bytes.Buffer, entries []EntryPlus3) error {
	for _, e := range entries {
		if err := xdr.WriteBool(buf, true); err != nil {
			return err
		}
		if err := xdr.WriteUint64(buf, e.FileID); err != nil {
			return err
		}
		if err := xdr.WriteString(buf, e.Name); err != nil {
			return err
		}
		if err := xdr.WriteUint64(buf, e.Cookie); err != nil {
			return err
		}
		if err := EncodePostOpAttr(buf, e.Attr); err != nil {
			return err
		}
		if err := EncodePostOpFH3(buf, e.Handle); err != nil {
			return err
		}
	}
	return xdr.WriteBool(buf, false)
}

// EncodePostOpFH3 writes a post_op_fh3: a boolean discriminator followed,
// only when true, by a file handle. Used by LOOKUP-adjacent results
// (CREATE, MKDIR, SYMLINK, MKNOD, READDIRPLUS) whose handle may legitimately
// be absent even on success (e.g. the backend created the object but the
// handle directory allocation is deferred to a later reference).
func EncodePostOpFH3(buf *bytes.Buffer, h *FileHandle) error {
	if h == nil {
		return xdr.WriteBool(buf, false)
	}
	if err := xdr.WriteBool(buf, true); err != nil {
		return err
	}
	return EncodeFileHandle(buf, *h)
}
