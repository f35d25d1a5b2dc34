package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procPathConf implements NFSPROC3_PATHCONF (RFC 1813 §3.3.20): PATHCONF3args
// { nfs_fh3 object } -> PATHCONF3res { status; post_op_attr obj_attributes;
// [uint32 linkmax; uint32 name_max; bool no_trunc; bool chown_restricted;
// bool case_insensitive; bool case_preserving] }.
//
// The answers are constants for the POSIX backend: the export lives on one
// local filesystem, so they hold for every object under it (FSINFO advertises
// FSF_HOMOGENEOUS accordingly).
func procPathConf(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
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

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	nfs3.EncodePostOpAttr(&buf, attr)
	xdr.WriteUint32(&buf, 32000) // linkmax (LINK_MAX on ext4/xfs)
	xdr.WriteUint32(&buf, 255)   // name_max
	xdr.WriteBool(&buf, true)    // no_trunc
	xdr.WriteBool(&buf, true)    // chown_restricted
	xdr.WriteBool(&buf, false)   // case_insensitive
	xdr.WriteBool(&buf, true)    // case_preserving
	return buf.Bytes(), nil
}
