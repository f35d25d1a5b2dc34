// Package mountd implements the MOUNT version 3 protocol (RFC 1813
// Appendix I): the companion service NFS clients use to exchange a directory
// path for an initial file handle before speaking NFS proper.
package mountd

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/kestrelfs/nfsd/internal/exports"
	"github.com/kestrelfs/nfsd/internal/fsal"
	"github.com/kestrelfs/nfsd/internal/handledir"
	"github.com/kestrelfs/nfsd/internal/rpc"
)

// Program and version numbers for MOUNT (RFC 1813 Appendix I).
const (
	Program uint32 = 100005
	Version uint32 = 3
)

// MOUNT procedure numbers.
const (
	ProcNull    uint32 = 0
	ProcMnt     uint32 = 1
	ProcDump    uint32 = 2
	ProcUmnt    uint32 = 3
	ProcUmntAll uint32 = 4
	ProcExport  uint32 = 5
)

// Status is the mountstat3 enumeration (RFC 1813 Appendix I).
type Status uint32

const (
	OK             Status = 0
	ErrPerm        Status = 1
	ErrNoEnt       Status = 2
	ErrIO          Status = 5
	ErrAcces       Status = 13
	ErrNotDir      Status = 20
	ErrInval       Status = 22
	ErrNameTooLong Status = 63
	ErrNotSupp     Status = 10004
	ErrServerFault Status = 10006
)

// MaxPathLen is MNTPATHLEN (RFC 1813 Appendix I): the longest dirpath a
// client may send.
const MaxPathLen = 1024

// ErrGarbageArgs signals that a procedure's arguments could not be decoded.
var ErrGarbageArgs = errors.New("mountd: garbage arguments")

// Context carries the per-call state MOUNT handlers need: cancellation and
// the caller's address for export access checks and mount tracking.
type Context struct {
	Context    context.Context
	ClientAddr string
	AuthFlavor uint32
}

// ClientIP returns the caller's bare IP, stripped of the port, or nil if the
// address does not parse. Access checks treat nil as "deny".
func (c *Context) ClientIP() net.IP {
	host, _, err := net.SplitHostPort(c.ClientAddr)
	if err != nil {
		host = c.ClientAddr
	}
	return net.ParseIP(host)
}

// mountEntry is one active mount record, reported by DUMP.
type mountEntry struct {
	Hostname string
	Path     string
}

// Server bundles the collaborators MOUNT handlers borrow per call: the
// exports table gating MNT, the handle directory and FSAL for root-handle
// retrieval, and the active-mount list behind DUMP/UMNT.
type Server struct {
	Handles *handledir.Directory
	Backend fsal.Backend
	Exports *exports.Table

	mu     sync.Mutex
	mounts []mountEntry
}

// AuthFlavors are the flavors advertised in a successful MNT reply.
var AuthFlavors = []uint32{rpc.AuthNone, rpc.AuthSys}

// Handler is the signature every MOUNT procedure implements.
type Handler func(s *Server, ctx *Context, args []byte) ([]byte, error)

// Table is the static MOUNT procedure table.
var Table = map[uint32]Handler{
	ProcNull:    procNull,
	ProcMnt:     procMnt,
	ProcDump:    procDump,
	ProcUmnt:    procUmnt,
	ProcUmntAll: procUmntAll,
	ProcExport:  procExport,
}

// procNull implements MOUNTPROC3_NULL: void in, void out.
func procNull(s *Server, ctx *Context, args []byte) ([]byte, error) {
	return nil, nil
}

// recordMount notes an active mount for DUMP. Duplicate (host, path) pairs
// collapse to one record, keeping retransmitted MNTs idempotent.
func (s *Server) recordMount(hostname, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.mounts {
		if m.Hostname == hostname && m.Path == path {
			return
		}
	}
	s.mounts = append(s.mounts, mountEntry{Hostname: hostname, Path: path})
}

// forgetMount drops the (host, path) record, if present.
func (s *Server) forgetMount(hostname, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.mounts {
		if m.Hostname == hostname && m.Path == path {
			s.mounts = append(s.mounts[:i], s.mounts[i+1:]...)
			return
		}
	}
}

// forgetAllMounts drops every record for hostname.
func (s *Server) forgetAllMounts(hostname string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.mounts[:0]
	for _, m := range s.mounts {
		if m.Hostname != hostname {
			kept = append(kept, m)
		}
	}
	s.mounts = kept
}

// snapshotMounts returns a copy of the active-mount list.
func (s *Server) snapshotMounts() []mountEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mountEntry, len(s.mounts))
	copy(out, s.mounts)
	return out
}

// procNames maps procedure numbers to their RFC 1813 Appendix I names for
// logging and metrics labels.
var procNames = map[uint32]string{
	ProcNull:    "NULL",
	ProcMnt:     "MNT",
	ProcDump:    "DUMP",
	ProcUmnt:    "UMNT",
	ProcUmntAll: "UMNTALL",
	ProcExport:  "EXPORT",
}

// ProcName returns the printable name of a MOUNT procedure number.
func ProcName(proc uint32) string {
	if name, ok := procNames[proc]; ok {
		return name
	}
	return "UNKNOWN"
}
