package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procReadLink implements NFSPROC3_READLINK (RFC 1813 §3.3.5): READLINK3args
// { nfs_fh3 symlink } -> READLINK3res { status; post_op_attr
// symlink_attributes; [nfspath3 data] }. Fails NFS3ERR_INVAL if the object
// is not a symlink.
func procReadLink(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	fh, err := nfs3.DecodeFileHandle(d)
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

	attr := s.postOpAttr(ctx.Context, h)
	if attr != nil && attr.Type != nfs3.TypeLnk {
		xdr.WriteUint32(&buf, uint32(nfs3.ErrInval))
		nfs3.EncodePostOpAttr(&buf, attr)
		return buf.Bytes(), nil
	}

	target, err := s.Backend.ReadLink(ctx.Context, h)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		nfs3.EncodePostOpAttr(&buf, attr)
		return buf.Bytes(), nil
	}

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	nfs3.EncodePostOpAttr(&buf, attr)
	if err := xdr.WriteString(&buf, target); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
