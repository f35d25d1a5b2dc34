package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procGetAttr implements NFSPROC3_GETATTR (RFC 1813 §3.3.1): GETATTR3args {
// nfs_fh3 object } -> GETATTR3res { status; [fattr3] }.
func procGetAttr(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	fh, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	h, status, rerr := s.resolve(fh)
	if rerr != nil {
		xdr.WriteUint32(&buf, uint32(status))
		return buf.Bytes(), nil
	}

	attr, err := s.Backend.GetAttr(ctx.Context, h)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		return buf.Bytes(), nil
	}

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	f := toFattr3(attr)
	if err := nfs3.EncodeFattr3(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
