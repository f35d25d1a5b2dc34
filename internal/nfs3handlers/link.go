package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procLink implements NFSPROC3_LINK (RFC 1813 §3.3.15): LINK3args { nfs_fh3
// file; diropargs3 link } -> LINK3res { status; post_op_attr file_attributes;
// wcc_data linkdir_wcc }.
func procLink(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	fh, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	dirFH, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	name, err := d.String()
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	h, status, rerr := s.resolve(fh)
	if rerr != nil {
		xdr.WriteUint32(&buf, uint32(status))
		nfs3.EncodePostOpAttr(&buf, nil)
		nfs3.WccData{}.Encode(&buf)
		return buf.Bytes(), nil
	}
	dir, status, rerr := s.resolve(dirFH)
	if rerr != nil {
		xdr.WriteUint32(&buf, uint32(status))
		nfs3.EncodePostOpAttr(&buf, s.postOpAttr(ctx.Context, h))
		nfs3.WccData{}.Encode(&buf)
		return buf.Bytes(), nil
	}

	pre := s.preOpAttr(ctx.Context, dir)

	err = s.Backend.Link(ctx.Context, h, dir, name)
	wcc := s.wccData(ctx.Context, dir, pre)
	attr := s.postOpAttr(ctx.Context, h)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		nfs3.EncodePostOpAttr(&buf, attr)
		wcc.Encode(&buf)
		return buf.Bytes(), nil
	}

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	nfs3.EncodePostOpAttr(&buf, attr)
	wcc.Encode(&buf)
	return buf.Bytes(), nil
}
