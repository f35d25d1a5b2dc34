package nfs3handlers

import "errors"

// ErrGarbageArgs signals that a procedure's arguments could not be decoded.
// The dispatcher (internal/server) maps this to RPC accept_stat
// GARBAGE_ARGS without ever invoking the FSAL.
var ErrGarbageArgs = errors.New("nfs3handlers: garbage arguments")

// Handler is the signature every NFSv3 procedure implements: decode its own
// arguments from args, invoke the FSAL, and return the fully-encoded
// procedure result (status plus payload). Returning ErrGarbageArgs means
// decoding failed before any FSAL call was made.
type Handler func(s *Server, ctx *RequestContext, args []byte) ([]byte, error)

// Program and version numbers for NFS (RFC 1813).
const (
	Program uint32 = 100003
	Version uint32 = 3
)

// Table is the static NFS program procedure table, keyed by procedure
// number. The server's per-connection loop routes every NFS CALL through
// it; unknown procedure numbers become PROC_UNAVAIL.
var Table = map[uint32]Handler{
	0:  procNull,
	1:  procGetAttr,
	2:  procSetAttr,
	3:  procLookup,
	4:  procAccess,
	5:  procReadLink,
	6:  procRead,
	7:  procWrite,
	8:  procCreate,
	9:  procMkDir,
	10: procSymlink,
	11: procMkNod,
	12: procRemove,
	13: procRmDir,
	14: procRename,
	15: procLink,
	16: procReadDir,
	17: procReadDirPlus,
	18: procFsStat,
	19: procFsInfo,
	20: procPathConf,
	21: procCommit,
}

// procNames maps procedure numbers to their RFC 1813 names for logging and
// metrics labels.
var procNames = map[uint32]string{
	0:  "NULL",
	1:  "GETATTR",
	2:  "SETATTR",
	3:  "LOOKUP",
	4:  "ACCESS",
	5:  "READLINK",
	6:  "READ",
	7:  "WRITE",
	8:  "CREATE",
	9:  "MKDIR",
	10: "SYMLINK",
	11: "MKNOD",
	12: "REMOVE",
	13: "RMDIR",
	14: "RENAME",
	15: "LINK",
	16: "READDIR",
	17: "READDIRPLUS",
	18: "FSSTAT",
	19: "FSINFO",
	20: "PATHCONF",
	21: "COMMIT",
}

// ProcName returns the printable name of an NFS procedure number.
func ProcName(proc uint32) string {
	if name, ok := procNames[proc]; ok {
		return name
	}
	return "UNKNOWN"
}
