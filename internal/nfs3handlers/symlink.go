package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procSymlink implements NFSPROC3_SYMLINK (RFC 1813 §3.3.10): SYMLINK3args {
// diropargs3 where; symlinkdata3 symlink } -> SYMLINK3res { status;
// [post_op_fh3 obj; post_op_attr obj_attributes]; wcc_data dir_wcc }.
func procSymlink(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	dirFH, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	name, err := d.String()
	if err != nil {
		return nil, ErrGarbageArgs
	}
	attrs, err := nfs3.DecodeSattr3(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	target, err := d.String()
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

	mode := uint32(0777)
	if attrs.Mode.Set {
		mode = attrs.Mode.Value
	}

	obj, err := s.Backend.Symlink(ctx.Context, dir, name, target, mode)
	wcc := s.wccData(ctx.Context, dir, pre)
	if err != nil {
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
