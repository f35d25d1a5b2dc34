package nfs3handlers

import (
	"bytes"
	"math"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// Static FSINFO values advertised to clients (RFC 1813 §3.3.19). Transfer
// sizes stay well under the 16 MiB record cap so a maximal READ or WRITE
// always fits in one record with headroom for the RPC envelope.
const (
	fsinfoRtMax  = 1 << 20 // 1 MiB
	fsinfoRtPref = 1 << 20
	fsinfoRtMult = 4096
	fsinfoWtMax  = 1 << 20
	fsinfoWtPref = 1 << 20
	fsinfoWtMult = 4096
	fsinfoDtPref = 1 << 16
)

// FSF properties bitmask (RFC 1813 §3.3.19): hard links and symlinks
// supported, pathconf answers are homogeneous across the export, and the
// server can set file times via SETATTR.
const fsinfoProperties = 0x0001 | 0x0002 | 0x0008 | 0x0010

// procFsInfo implements NFSPROC3_FSINFO (RFC 1813 §3.3.19): FSINFO3args {
// nfs_fh3 fsroot } -> FSINFO3res { status; post_op_attr obj_attributes;
// [rtmax, rtpref, rtmult, wtmax, wtpref, wtmult, dtpref; uint64 maxfilesize;
// nfstime3 time_delta; uint32 properties] }.
func procFsInfo(s *Server, ctx *RequestContext, args []byte) ([]byte, error) {
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
	xdr.WriteUint32(&buf, fsinfoRtMax)
	xdr.WriteUint32(&buf, fsinfoRtPref)
	xdr.WriteUint32(&buf, fsinfoRtMult)
	xdr.WriteUint32(&buf, fsinfoWtMax)
	xdr.WriteUint32(&buf, fsinfoWtPref)
	xdr.WriteUint32(&buf, fsinfoWtMult)
	xdr.WriteUint32(&buf, fsinfoDtPref)
	xdr.WriteUint64(&buf, math.MaxInt64) // maxfilesize
	xdr.WriteUint32(&buf, 0)             // time_delta seconds
	xdr.WriteUint32(&buf, 1)             // time_delta nseconds
	xdr.WriteUint32(&buf, fsinfoProperties)
	return buf.Bytes(), nil
}
