package nfs3handlers

import (
	"bytes"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// maxReadCount bounds how much data a single READ may request, matching the
// rtmax this server advertises from FSINFO.
const maxReadCount = 1 << 20 // 1 MiB

// procRead implements NFSPROC3_READ (RFC 1813 §3.3.6): READ3args { nfs_fh3
// file; uint64 offset; uint32 count } -> READ3res { status; post_op_attr
// file_attributes; [uint32 count; bool eof; opaque data] }.
func procRead(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
	d := xdr.NewDecoder(args)
	fh, err := nfs3.DecodeFileHandle(d)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	offset, err := d.Uint64()
	if err != nil {
		return nil, ErrGarbageArgs
	}
	count, err := d.Uint32()
	if err != nil {
		return nil, ErrGarbageArgs
	}
	if count > maxReadCount {
		count = maxReadCount
	}

	var buf bytes.Buffer
	h, status, rerr := s.resolve(fh)
	if rerr != nil {
		xdr.WriteUint32(&buf, uint32(status))
		nfs3.EncodePostOpAttr(&buf, nil)
		return buf.Bytes(), nil
	}

	data, eof, err := s.Backend.Read(ctx.Context, h, offset, count)
	attr := s.postOpAttr(ctx.Context, h)
	if err != nil {
		xdr.WriteUint32(&buf, uint32(statusFromError(err)))
		nfs3.EncodePostOpAttr(&buf, attr)
		return buf.Bytes(), nil
	}

	s.recordBytes("read", len(data))

	xdr.WriteUint32(&buf, uint32(nfs3.OK))
	nfs3.EncodePostOpAttr(&buf, attr)
	xdr.WriteUint32(&buf, uint32(len(data)))
	xdr.WriteBool(&buf, eof)
	if err := xdr.WriteOpaque(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
