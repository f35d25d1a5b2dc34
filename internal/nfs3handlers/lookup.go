package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procLookup implements NFSPROC3_LOOKUP (RFC 1813 §3.3.3): LOOKUP3args {
// diropargs3 what } -> LOOKUP3res { status; [nfs_fh3 object; post_op_attr
// obj_attributes]; post_op_attr dir_attributes }.
func procLookup(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	dirFH, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	name, err := d.String()
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	dir, status, rerr := s.resolve(dirFH)
	if rerr != nil {
		xdr.WriteUint32(&buf, uint32(status))
		nfs3.EncodePostOpAttr(&buf, nil)
		return buf.Bytes(), nil
	}

	obj, err := s.Backend.Lookup(ctx.Context, dir, name)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		nfs3.EncodePostOpAttr(&buf, s.postOpAttr(ctx.Context, dir))
		return buf.Bytes(), nil
	}

	fh := s.Handles.Allocate(s.Backend.Path(obj))

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	if err := nfs3.EncodeFileHandle(&buf, fh); err != nil {
		return nil, err
	}
	nfs3.EncodePostOpAttr(&buf, s.postOpAttr(ctx.Context, obj))
	nfs3.EncodePostOpAttr(&buf, s.postOpAttr(ctx.Context, dir))
	return buf.Bytes(), nil
}
