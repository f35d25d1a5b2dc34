package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procRmDir implements NFSPROC3_RMDIR (RFC 1813 §3.3.13): RMDIR3args {
// diropargs3 object } -> RMDIR3res { status; wcc_data dir_wcc }.
func procRmDir(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
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
		nfs3.WccData{}.Encode(&buf)
		return buf.Bytes(), nil
	}

	pre := s.preOpAttr(ctx.Context, dir)
	obj, lookupErr := s.Backend.Lookup(ctx.Context, dir, name)

	err = s.Backend.RmDir(ctx.Context, dir, name)
	wcc := s.wccData(ctx.Context, dir, pre)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		wcc.Encode(&buf)
		return buf.Bytes(), nil
	}

	if lookupErr == nil {
		s.Handles.RemoveByPath(s.Backend.Path(obj))
	}

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	wcc.Encode(&buf)
	return buf.Bytes(), nil
}
