// Package nfs3handlers implements the twenty-two NFSv3 procedure handlers
// (RFC 1813 §3.3): argument decode, FSAL invocation, wcc_data/post_op_attr
// assembly, nfsstat3 mapping, and response encode. One file per procedure, a
// shared *Server receiver, and a request context carrying the caller's
// identity.
package nfs3handlers

import (
	"context"
	"time"

	"github.com/kestrelfs/nfsd/internal/fsal"
	"github.com/kestrelfs/nfsd/internal/handledir"
	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/pkg/metrics"
)

// Server bundles the shared, process-wide collaborators every NFS procedure
// handler borrows for the duration of one call: the handle directory and the
// FSAL backend. It is stateless itself -- no
// per-connection or per-request fields -- so a single instance is shared
// across every connection's goroutine.
type Server struct {
	Handles   *handledir.Directory
	Backend   fsal.Backend
	WriteVerf [8]byte

	// Metrics is optional; nil disables byte-transfer accounting.
	Metrics metrics.RPCMetrics
}

// recordBytes feeds READ/WRITE payload sizes into the metrics sink, if one
// is attached.
func (s *Server) recordBytes(direction string, n int) {
	if s.Metrics != nil && n > 0 {
		s.Metrics.RecordBytes(direction, uint64(n))
	}
}

// RequestContext carries per-call identity that handlers need for logging
// and (in a future RPCSEC_GSS-aware build) access control, trimmed to the
// fields this server's FSAL actually consults.
type RequestContext struct {
	Context    context.Context
	ClientAddr string
	XID        uint32
	AuthFlavor uint32
	UID, GID   uint32
}

// resolve turns a wire file handle into a backend handle, mapping an
// unknown handle to NFS3ERR_STALE.
func (s *Server) resolve(h nfs3.FileHandle) (fsal.Handle, nfs3.Status, error) {
	path, err := s.Handles.Resolve(h)
	if err != nil {
		return "", nfs3.ErrStale, err
	}
	return fsal.Handle(path), nfs3.OK, nil
}

// fattr3 converts a backend fsal.Attr into the wire fattr3 record.
func toFattr3(a fsal.Attr) nfs3.Fattr3 {
	return nfs3.Fattr3{
		Type:   a.Type,
		Mode:   a.Mode,
		Nlink:  a.Nlink,
		UID:    a.UID,
		GID:    a.GID,
		Size:   a.Size,
		Used:   a.Used,
		Rdev:   nfs3.SpecData3{Major: a.RdevMajor, Minor: a.RdevMinor},
		Fsid:   a.Fsid,
		Fileid: a.FileID,
		Atime:  toTime3(a.Atime),
		Mtime:  toTime3(a.Mtime),
		Ctime:  toTime3(a.Ctime),
	}
}

func toTime3(t time.Time) nfs3.Time3 {
	return nfs3.Time3{Seconds: uint32(t.Unix()), Nseconds: uint32(t.Nanosecond())}
}

func toWccAttr(a fsal.Attr) nfs3.WccAttr {
	return nfs3.WccAttr{Size: a.Size, Mtime: toTime3(a.Mtime), Ctime: toTime3(a.Ctime)}
}

// postOpAttr fetches the current attributes of h for use as a post_op_attr,
// degrading to attributes_follow=FALSE on failure rather than failing the
// whole call.
func (s *Server) postOpAttr(ctx context.Context, h fsal.Handle) *nfs3.Fattr3 {
	a, err := s.Backend.GetAttr(ctx, h)
	if err != nil {
		return nil
	}
	f := toFattr3(a)
	return &f
}

// preOpAttr snapshots h's wcc_attr subset before a mutation, degrading to
// attributes_follow=FALSE on failure.
func (s *Server) preOpAttr(ctx context.Context, h fsal.Handle) *nfs3.WccAttr {
	a, err := s.Backend.GetAttr(ctx, h)
	if err != nil {
		return nil
	}
	w := toWccAttr(a)
	return &w
}

// toSetAttr converts a wire sattr3 into the FSAL's SetAttr, translating the
// SET_TO_SERVER_TIME/SET_TO_CLIENT_TIME split the same way procSetAttr does.
func toSetAttr(a nfs3.Sattr3) fsal.SetAttr {
	var sa fsal.SetAttr
	if a.Size.Set {
		v := a.Size.Value
		sa.Size = &v
	}
	if a.Mode.Set {
		v := a.Mode.Value
		sa.Mode = &v
	}
	if a.UID.Set {
		v := a.UID.Value
		sa.UID = &v
	}
	if a.GID.Set {
		v := a.GID.Value
		sa.GID = &v
	}
	if a.Atime.How != nfs3.DontChange {
		sa.AtimeSet = true
		if a.Atime.How == nfs3.SetToServerTime {
			sa.AtimeToNow = true
		} else {
			sa.Atime = time.Unix(int64(a.Atime.Value.Seconds), int64(a.Atime.Value.Nseconds))
		}
	}
	if a.Mtime.How != nfs3.DontChange {
		sa.MtimeSet = true
		if a.Mtime.How == nfs3.SetToServerTime {
			sa.MtimeToNow = true
		} else {
			sa.Mtime = time.Unix(int64(a.Mtime.Value.Seconds), int64(a.Mtime.Value.Nseconds))
		}
	}
	return sa
}

// wccData assembles a wcc_data from a pre-fetched snapshot and a fresh
// post_op_attr lookup of dir -- the common tail of every mutating procedure.
func (s *Server) wccData(ctx context.Context, dir fsal.Handle, pre *nfs3.WccAttr) nfs3.WccData {
	return nfs3.WccData{Pre: pre, Post: s.postOpAttr(ctx, dir)}
}
