package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/fsal"
	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procCreate implements NFSPROC3_CREATE (RFC 1813 §3.3.8): CREATE3args {
// diropargs3 where; createhow3 how } -> CREATE3res { status; [post_op_fh3
// obj; post_op_attr obj_attributes]; wcc_data dir_wcc }.
//
// how.mode UNCHECKED/GUARDED carry an sattr3; EXCLUSIVE carries an 8-byte
// verifier that the backend stashes so a retransmitted request is answered
// idempotently instead of failing NFS3ERR_EXIST.
func procCreate(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	dirFH, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	name, err := d.String()
	if err != nil {
		return nil, ErrGarbageArgs
	}
	how, err := nfs3.DecodeCreateHow3(d)
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

	var createMode fsal.CreateMode
	switch how.Mode {
	case nfs3.Guarded:
		createMode = fsal.CreateGuarded
	case nfs3.Exclusive:
		createMode = fsal.CreateExclusive
	default:
		createMode = fsal.CreateUnchecked
	}

	mode := uint32(0644)
	var verifier [8]byte
	if createMode == fsal.CreateExclusive {
		verifier = how.Verifier
	} else if how.Attrs.Mode.Set {
		mode = how.Attrs.Mode.Value
	}

	obj, err := s.Backend.Create(ctx.Context, dir, name, mode, createMode, verifier)
	wcc := s.wccData(ctx.Context, dir, pre)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		wcc.Encode(&buf)
		return buf.Bytes(), nil
	}

	if createMode != fsal.CreateExclusive {
		if _, err := s.Backend.SetAttr(ctx.Context, obj, toSetAttr(how.Attrs)); err != nil {
			xdr.WriteUint32(&buf, uint32(statusFromError(err)))
			wcc.Encode(&buf)
			return buf.Bytes(), nil
		}
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
