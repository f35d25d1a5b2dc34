package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procMkNod implements NFSPROC3_MKNOD (RFC 1813 §3.3.11): MKNOD3args {
// diropargs3 where; mknoddata3 what } -> MKNOD3res { status; [post_op_fh3
// obj; post_op_attr obj_attributes]; wcc_data dir_wcc }. Only NF3CHR, NF3BLK,
// NF3SOCK and NF3FIFO are valid; any other type is NFS3ERR_BADTYPE.
func procMkNod(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	dirFH, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	name, err := d.String()
	if err != nil {
		return nil, ErrGarbageArgs
	}
	what, err := nfs3.DecodeMkNodData3(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	dir, status, rerr := s.resolve(dirFH)
	if rerr != nil {
		xdr.WriteUint32(&buf, uint32(status))
		nfs3.WccData{}.Encode(&buf)
		return buf.Bytes(), nil
	}

	pre := s.preOpAttr(ctx.Context, dir)

	switch what.Type {
	case nfs3.TypeChr, nfs3.TypeBlk, nfs3.TypeSock, nfs3.TypeFifo:
	default:
		xdr.WriteUint32(&buf, uint32(nfs3.ErrBadType))
		s.wccData(ctx.Context, dir, pre).Encode(&buf)
		return buf.Bytes(), nil
	}

	mode := uint32(0644)
	if what.Attrs.Mode.Set {
		mode = what.Attrs.Mode.Value
	}

	obj, err := s.Backend.MkNod(ctx.Context, dir, name, what.Type, mode, what.Spec.Major, what.Spec.Minor)
	wcc := s.wccData(ctx.Context, dir, pre)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		wcc.Encode(&buf)
		return buf.Bytes(), nil
	}
	if _, err := s.Backend.SetAttr(ctx.Context, obj, toSetAttr(what.Attrs)); err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		wcc.Encode(&buf)
		return buf.Bytes(), nil
	}

	fh := s.Handles.Allocate(s.Backend.Path(obj))

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	if err := nfs3.EncodePostOpFH3(&buf, &fh); err != nil {
		return nil, err
	}
	nfs3.EncodePostOpAttr(&buf, s.postOpAttr(ctx.Context, obj))
	wcc.Encode(&buf)
	return buf.Bytes(), nil
}
