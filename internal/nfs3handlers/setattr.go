package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procSetAttr implements NFSPROC3_SETATTR (RFC 1813 §3.3.2): SETATTR3args {
// nfs_fh3 object; sattr3 new_attributes; sattrguard3 guard } -> SETATTR3res {
// status; wcc_data obj_wcc }.
//
// If guard is present and the object's current ctime does not match it,
// the request fails NFS3ERR_NOT_SYNC before any attribute is applied.
// Fields are applied size, mode, uid/gid, atime, mtime; the
// first failure short-circuits and wcc_data reflects whatever the object's
// state actually ended up in.
func procSetAttr(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	fh, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	newAttrs, err := nfs3.DecodeSattr3(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	guard, err := nfs3.DecodeSattrGuard3(d)
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

	if guard.Set {
		cur, err := s.Backend.GetAttr(ctx.Context, h)
		if err != nil {
			xdr.WriteUint32(&buf, uint32(statusFromError(err)))
			nfs3.WccData{Pre: pre, Post: nil}.Encode(&buf)
			return buf.Bytes(), nil
		}
		curCtime := toTime3(cur.Ctime)
		if curCtime != guard.Ctime {
			xdr.WriteUint32(&buf, uint32(nfs3.ErrNotSync))
			nfs3.WccData{Pre: pre, Post: s.postOpAttr(ctx.Context, h)}.Encode(&buf)
			return buf.Bytes(), nil
		}
	}

	_, err = s.Backend.SetAttr(ctx.Context, h, toSetAttr(newAttrs))
	wcc := s.wccData(ctx.Context, h, pre)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		wcc.Encode(&buf)
		return buf.Bytes(), nil
	}

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	wcc.Encode(&buf)
	return buf.Bytes(), nil
}
