package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procAccess implements NFSPROC3_ACCESS (RFC 1813 §3.3.4): ACCESS3args {
// nfs_fh3 object; uint32 access } -> ACCESS3res { status; post_op_attr
// obj_attributes; [uint32 access] }.
func procAccess(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	fh, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	requested, err := d.Uint32()
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	h, status, rerr := s.resolve(fh)
	if rerr != nil {
		xdr.WriteUint32(&buf, uint32(status))
		nfs3.EncodePostOpAttr(&buf, nil)
		return buf.Bytes(), nil
	}

	granted, err := s.Backend.Access(ctx.Context, h, requested)
	attr := s.postOpAttr(ctx.Context, h)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		nfs3.EncodePostOpAttr(&buf, attr)
		return buf.Bytes(), nil
	}

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	nfs3.EncodePostOpAttr(&buf, attr)
	xdr.WriteUint32(&buf, granted)
	return buf.Bytes(), nil
}
