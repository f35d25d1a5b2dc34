package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procReadDirPlus implements NFSPROC3_READDIRPLUS (RFC 1813 §3.3.17):
// READDIRPLUS3args { nfs_fh3 dir; cookie3 cookie; cookieverf3 cookieverf;
// count3 dircount; count3 maxcount } -> READDIRPLUS3res { status;
// post_op_attr dir_attributes; [cookieverf3 cookieverf; entryplus list; bool
// eof] }. Per-entry attribute or handle lookups that fail degrade that one
// entry to attributes_follow/handle_follows = FALSE rather than failing the
// whole call.
func procReadDirPlus(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	fh, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	cookie, err := d.Uint64()
	if err != nil {
		return nil, ErrGarbageArgs
	}
	verf, err := d.FixedOpaque(8)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	if _, err := d.Uint32(); err != nil { // dircount
		return nil, ErrGarbageArgs
	}
	if _, err := d.Uint32(); err != nil { // maxcount
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	dir, status, rerr := s.resolve(fh)
	if rerr != nil {
		xdr.WriteUint32(&buf, uint32(status))
		nfs3.EncodePostOpAttr(&buf, nil)
		return buf.Bytes(), nil
	}

	attr := s.postOpAttr(ctx.Context, dir)

	// Same cookieverf discipline as procReadDir: a non-zero cookie must be
	// accompanied by the verifier it was issued under (all-zero here).
	if cookie != 0 && !bytes.Equal(verf, zeroCookieVerf[:]) {
		xdr.WriteUint32(&buf, uint32(nfs3.ErrBadCookie))
		nfs3.EncodePostOpAttr(&buf, attr)
		return buf.Bytes(), nil
	}

	fsEntries, eof, err := s.Backend.ReadDir(ctx.Context, dir, cookie, readdirEntryBudget)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		nfs3.EncodePostOpAttr(&buf, attr)
		return buf.Bytes(), nil
	}

	entries := make([]nfs3.EntryPlus3, len(fsEntries))
	for i, e := range fsEntries {
		entry := nfs3.EntryPlus3{FileID: e.FileID, Name: e.Name, Cookie: e.Cookie}
		if obj, err := s.Backend.Lookup(ctx.Context, dir, e.Name); err == nil {
			entry.Attr = s.postOpAttr(ctx.Context, obj)
			h := s.Handles.Allocate(s.Backend.Path(obj))
			entry.Handle = &h
		}
		entries[i] = entry
	}

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	nfs3.EncodePostOpAttr(&buf, attr)
	buf.Write(zeroCookieVerf[:])
	if err := nfs3.EncodeEntryPlusList(&buf, entries); err != nil {
		return nil, err
	}
	xdr.WriteBool(&buf, eof)
	return buf.Bytes(), nil
}
