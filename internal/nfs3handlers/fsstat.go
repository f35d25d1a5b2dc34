package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// procFsStat implements NFSPROC3_FSSTAT (RFC 1813 §3.3.18): FSSTAT3args {
// nfs_fh3 fsroot } -> FSSTAT3res { status; post_op_attr obj_attributes;
// [uint64 tbytes, fbytes, abytes, tfiles, ffiles, afiles; uint32 invarsec] }.
func procFsStat(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
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

	stat, err := s.Backend.FsStat(ctx.Context, h)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		nfs3.EncodePostOpAttr(&buf, attr)
		return buf.Bytes(), nil
	}

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	nfs3.EncodePostOpAttr(&buf, attr)
	xdr.WriteUint64(&buf, stat.TotalBytes)
	xdr.WriteUint64(&buf, stat.FreeBytes)
	xdr.WriteUint64(&buf, stat.AvailBytes)
	xdr.WriteUint64(&buf, stat.TotalFiles)
	xdr.WriteUint64(&buf, stat.FreeFiles)
	xdr.WriteUint64(&buf, stat.AvailFiles)
	xdr.WriteUint32(&buf, stat.InvarSec)
	return buf.Bytes(), nil
}
