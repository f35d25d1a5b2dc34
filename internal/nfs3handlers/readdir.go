package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// readdirEntryBudget bounds how many entries a single READDIR response
// carries, independent of the client's requested count, keeping one reply
// well inside a TCP record.
const readdirEntryBudget = 512

// zeroCookieVerf is this server's cookieverf for every listing: the FSAL's
// directory ordering is stable, so the verifier never needs to change.
var zeroCookieVerf nfs3.CookieVerf3

// procReadDir implements NFSPROC3_READDIR (RFC 1813 §3.3.16): READDIR3args {
// nfs_fh3 dir; cookie3 cookie; cookieverf3 cookieverf; count3 count } ->
// READDIR3res { status; post_op_attr dir_attributes; [cookieverf3
// cookieverf; entry list; bool eof] }.
func procReadDir(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
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
	if _, err := d.Uint32(); err != nil { // count
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

	// A resumed listing must present the cookieverf its cookie was issued
	// under. This server's verifier is the all-zero value for every listing
	// (stable ordering), so anything else is a cookie from some other
	// server lifetime.
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

	entries := make([]nfs3.Entry3, len(fsEntries))
	for i, e := range fsEntries {
		entries[i] = nfs3.Entry3{FileID: e.FileID, Name: e.Name, Cookie: e.Cookie}
	}

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	nfs3.EncodePostOpAttr(&buf, attr)
	buf.Write(zeroCookieVerf[:])
	if err := nfs3.EncodeEntryList(&buf, entries); err != nil {
		return nil, err
	}
	xdr.WriteBool(&buf, eof)
	return buf.Bytes(), nil
}
