package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/fsal"
	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procWrite implements NFSPROC3_WRITE (RFC 1813 §3.3.7): WRITE3args { nfs_fh3
// file; uint64 offset; uint32 count; stable_how stable; opaque data } ->
// WRITE3res { status; wcc_data file_wcc; [uint32 count; stable_how
// committed; writeverf3 verf] }.
func procWrite(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	fh, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	offset, err := d.Uint64()
	if err != nil {
		return nil, ErrGarbageArgs
	}
	if _, err := d.Uint32(); err != nil { // declared count; data length governs the actual write
		return nil, ErrGarbageArgs
	}
	stableHow, err := d.Uint32()
	if err != nil {
		return nil, ErrGarbageArgs
	}
	data, err := d.Opaque()
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

	n, committed, err := s.Backend.Write(ctx.Context, h, offset, data, fsal.StableHow(stableHow))
	wcc := s.wccData(ctx.Context, h, pre)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		wcc.Encode(&buf)
		return buf.Bytes(), nil
	}

	s.recordBytes("write", int(n))

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	wcc.Encode(&buf)
	xdr.WriteUint32(&buf, n)
	xdr.WriteUint32(&buf, uint32(committed))
	buf.Write(s.WriteVerf[:])
	return buf.Bytes(), nil
}
