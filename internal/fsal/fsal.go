// Package fsal defines the file system abstraction layer contract (core
// component C7): the set of operations an NFSv3 backend must implement. The
// posix subpackage is the reference implementation against a real on-disk
// directory tree; handlers in internal/nfs3handlers talk only to this
// interface, never to a concrete backend.
package fsal

import (
	"context"
	"time"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
)

// ErrorCode is the tagged error taxonomy every FSAL operation's failure is
// expressed in. Handlers switch on Code, never on an error string.
type ErrorCode int

const (
	ErrNotFound ErrorCode = iota
	ErrAccessDenied
	ErrAlreadyExists
	ErrNotEmpty
	ErrIsDirectory
	ErrNotDirectory
	ErrInvalidArgument
	ErrIOError
	ErrNoSpace
	ErrReadOnly
	ErrNotSupported
	ErrInvalidHandle
	ErrStaleHandle
	ErrCrossDevice
	ErrNameTooLong
	ErrExist // distinct code; the NFS layer maps it to NFS3ERR_EXIST just like ErrAlreadyExists
)

// Error is the error type every FSAL method returns on failure. Path is
// populated when known but is never put on the wire -- §7 forbids leaking
// backend paths to clients; only Code crosses into an nfsstat3.
type Error struct {
	Code    ErrorCode
	Message string
	Path    string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

func newErr(code ErrorCode, msg, path string) *Error {
	return &Error{Code: code, Message: msg, Path: path}
}

func NewNotFoundError(path string) *Error       { return newErr(ErrNotFound, "not found", path) }
func NewAccessDeniedError(path string) *Error   { return newErr(ErrAccessDenied, "access denied", path) }
func NewAlreadyExistsError(path string) *Error  { return newErr(ErrAlreadyExists, "already exists", path) }
func NewNotEmptyError(path string) *Error       { return newErr(ErrNotEmpty, "directory not empty", path) }
func NewIsDirectoryError(path string) *Error    { return newErr(ErrIsDirectory, "is a directory", path) }
func NewNotDirectoryError(path string) *Error   { return newErr(ErrNotDirectory, "not a directory", path) }
func NewInvalidArgumentError(path string) *Error {
	return newErr(ErrInvalidArgument, "invalid argument", path)
}
func NewIOError(path string) *Error          { return newErr(ErrIOError, "i/o error", path) }
func NewNoSpaceError(path string) *Error     { return newErr(ErrNoSpace, "no space left on device", path) }
func NewReadOnlyError(path string) *Error    { return newErr(ErrReadOnly, "read-only file system", path) }
func NewNotSupportedError(path string) *Error { return newErr(ErrNotSupported, "not supported", path) }
func NewStaleHandleError() *Error            { return newErr(ErrStaleHandle, "stale file handle", "") }
func NewCrossDeviceError(path string) *Error { return newErr(ErrCrossDevice, "cross-device link", path) }
func NewNameTooLongError(path string) *Error { return newErr(ErrNameTooLong, "name too long", path) }

// Attr is the backend-native file attribute record. The NFS handler layer
// translates it to fattr3; the FSAL never constructs wire types directly.
type Attr struct {
	Type   nfs3.FType
	Mode   uint32
	Nlink  uint32
	UID    uint32
	GID    uint32
	Size   uint64
	Used   uint64
	RdevMajor uint32
	RdevMinor uint32
	Fsid   uint64
	FileID uint64
	Atime  time.Time
	Mtime  time.Time
	Ctime  time.Time
}

// SetAttr carries the subset of attributes SETATTR may change; each field is
// independently optional, mirroring nfs3.Sattr3 one level up from the wire.
type SetAttr struct {
	Mode        *uint32
	UID         *uint32
	GID         *uint32
	Size        *uint64
	AtimeSet    bool
	AtimeToNow  bool // SET_TO_SERVER_TIME
	Atime       time.Time
	MtimeSet    bool
	MtimeToNow  bool
	Mtime       time.Time
}

// DirEntry is one entry returned by ReadDir: a name, its file id, and the
// cookie a subsequent ReadDir call can pass to resume after it.
type DirEntry struct {
	Name   string
	FileID uint64
	Cookie uint64
}

// FSStat is the backend's answer to FSSTAT (RFC 1813 §3.3.18).
type FSStat struct {
	TotalBytes, FreeBytes, AvailBytes    uint64
	TotalFiles, FreeFiles, AvailFiles    uint64
	InvarSec                             uint32
}

// StableHow mirrors nfs3.StableHow without importing the wire package's
// encode/decode dependency into every backend implementation.
type StableHow int

const (
	Unstable StableHow = iota
	DataSync
	FileSync
)

// CreateMode mirrors nfs3.CreateMode the same way. The three modes differ in
// how an existing object is treated: UNCHECKED overwrites it, GUARDED fails
// with ErrAlreadyExists, EXCLUSIVE fails unless the stored verifier matches
// the request's (a retransmitted create).
type CreateMode int

const (
	CreateUnchecked CreateMode = iota
	CreateGuarded
	CreateExclusive
)

// Handle is an opaque backend-native object identity. The POSIX backend
// represents it as a path; a future backend (e.g. an object-store FSAL)
// could use something else entirely, which is why handlers never look inside
// it -- they only ever pass it back to the same Backend.
type Handle = string

// Backend is the contract a pluggable file system must satisfy. Every
// method takes a context so implementations whose I/O can block may observe
// cancellation -- this server currently lets in-flight calls run to
// completion, but the parameter keeps the contract ready for backends that
// can do better.
type Backend interface {
	// RootHandle returns the backend handle (e.g. path) of the export root.
	RootHandle(ctx context.Context) (Handle, error)

	GetAttr(ctx context.Context, h Handle) (Attr, error)
	SetAttr(ctx context.Context, h Handle, attr SetAttr) (Attr, error)

	Lookup(ctx context.Context, dir Handle, name string) (Handle, error)

	Access(ctx context.Context, h Handle, requested uint32) (granted uint32, err error)

	ReadLink(ctx context.Context, h Handle) (target string, err error)

	Read(ctx context.Context, h Handle, offset uint64, count uint32) (data []byte, eof bool, err error)
	Write(ctx context.Context, h Handle, offset uint64, data []byte, stable StableHow) (n uint32, committed StableHow, err error)

	Create(ctx context.Context, dir Handle, name string, mode uint32, how CreateMode, verifier [8]byte) (h Handle, err error)
	MkDir(ctx context.Context, dir Handle, name string, mode uint32) (Handle, error)
	Symlink(ctx context.Context, dir Handle, name, target string, mode uint32) (Handle, error)
	MkNod(ctx context.Context, dir Handle, name string, ftype nfs3.FType, mode uint32, major, minor uint32) (Handle, error)
	Link(ctx context.Context, target Handle, dir Handle, name string) error

	Remove(ctx context.Context, dir Handle, name string) error
	RmDir(ctx context.Context, dir Handle, name string) error
	Rename(ctx context.Context, fromDir Handle, fromName string, toDir Handle, toName string) error

	ReadDir(ctx context.Context, dir Handle, cookie uint64, count int) (entries []DirEntry, eof bool, err error)

	FsStat(ctx context.Context, h Handle) (FSStat, error)
	Commit(ctx context.Context, h Handle, offset uint64, count uint64) error

	// Path exposes the backend-native path a Handle corresponds to, for
	// callers (the handle directory) that need a stable string key. Backends
	// whose Handle type is already a path-like string may implement this as
	// an identity function.
	Path(h Handle) string
}
