package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procCommit implements NFSPROC3_COMMIT (RFC 1813 §3.3.21): COMMIT3args {
// nfs_fh3 file; uint64 offset; uint32 count } -> COMMIT3res { status;
// wcc_data file_wcc; [writeverf3 verf] }.
//
// The reply's verifier must be the same bytes WRITE returned during this
// server lifetime; a client seeing a different value knows the server
// rebooted and replays its UNSTABLE writes.
func procCommit(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	fh, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	offset, err := d.Uint64()
	if err != nil {
		return nil, ErrGarbageArgs
	}
	count, err := d.Uint32()
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	h, status, rerr := s.resolve(fh)
	if rerr != nil {
		xdr.WriteUint32(&buf, uint32(status))
		nfs3.WccData{}.Encode(&buf)
		return buf.Bytes(), nil
	}

	pre := s.preOpAttr(ctx.Context, h)

	err = s.Backend.Commit(ctx.Context, h, offset, uint64(count))
	wcc := s.wccData(ctx.Context, h, pre)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		wcc.Encode(&buf)
		return buf.Bytes(), nil
	}

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	wcc.Encode(&buf)
	buf.Write(s.WriteVerf[:])
	return buf.Bytes(), nil
}
