package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procRename implements NFSPROC3_RENAME (RFC 1813 §3.3.14): RENAME3args {
// diropargs3 from; diropargs3 to } -> RENAME3res { status; wcc_data
// fromdir_wcc; wcc_data todir_wcc }. On success, the handle directory's
// mapping (if any) is moved from the old path to the new one rather than
// invalidated, so a client holding the file's handle keeps a live reference.
func procRename(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	fromFH, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	fromName, err := d.String()
	if err != nil {
		return nil, ErrGarbageArgs
	}
	toFH, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	toName, err := d.String()
	if err != nil {
		return nil, ErrGarbageArgs
	}

	var buf bytes.Buffer
	fromDir, status, rerr := s.resolve(fromFH)
	if rerr != nil {
		xdr.WriteUint32(&buf, uint32(status))
		nfs3.WccData{}.Encode(&buf)
		nfs3.WccData{}.Encode(&buf)
		return buf.Bytes(), nil
	}
	toDir, status, rerr := s.resolve(toFH)
	if rerr != nil {
		xdr.WriteUint32(&buf, uint32(status))
		s.wccData(ctx.Context, fromDir, s.preOpAttr(ctx.Context, fromDir)).Encode(&buf)
		nfs3.WccData{}.Encode(&buf)
		return buf.Bytes(), nil
	}

	fromPre := s.preOpAttr(ctx.Context, fromDir)
	toPre := s.preOpAttr(ctx.Context, toDir)
	oldPath, lookupErr := s.Backend.Lookup(ctx.Context, fromDir, fromName)

	err = s.Backend.Rename(ctx.Context, fromDir, fromName, toDir, toName)
	fromWcc := s.wccData(ctx.Context, fromDir, fromPre)
	toWcc := s.wccData(ctx.Context, toDir, toPre)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		fromWcc.Encode(&buf)
		toWcc.Encode(&buf)
		return buf.Bytes(), nil
	}

	if lookupErr == nil {
		newPath, err := s.Backend.Lookup(ctx.Context, toDir, toName)
		if err == nil {
			s.Handles.Rename(s.Backend.Path(oldPath), s.Backend.Path(newPath))
		}
	}

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	fromWcc.Encode(&buf)
	toWcc.Encode(&buf)
	return buf.Bytes(), nil
}
