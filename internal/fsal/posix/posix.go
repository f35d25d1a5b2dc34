// Package posix is the reference FSAL backend: a Backend
// implementation operating on a real directory tree via os and
// golang.org/x/sys/unix, rooted at a configured export directory. Handle
// values are backend-native absolute paths; the handle directory
// (internal/handledir) is the layer that turns these into opaque NFS file
// handles.
package posix

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kestrelfs/nfsd/internal/fsal"
	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
)

// Backend is the POSIX local-directory FSAL. Root is the absolute export
// directory; every operation's resulting path is checked to still be within
// Root.
type Backend struct {
	Root string
}

// New validates root and returns a Backend rooted there. It refuses to
// start if root is not an accessible directory.
func New(root string) (*Backend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("posix: resolve export root: %w", err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("posix: export root %s: %w", abs, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("posix: export root %s is not a directory", abs)
	}
	return &Backend{Root: abs}, nil
}

// RootHandle returns the export root's own path as its handle.
func (b *Backend) RootHandle(ctx context.Context) (fsal.Handle, error) {
	return b.Root, nil
}

// Path returns h unchanged: in this backend a Handle already is the path.
func (b *Backend) Path(h fsal.Handle) string { return h }

// validateName rejects any name that is unsafe to join onto a directory
// path: empty, dot names, embedded '/' or NUL.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fsal.NewInvalidArgumentError(name)
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, 0) {
		return fsal.NewInvalidArgumentError(name)
	}
	if len(name) > 255 {
		return fsal.NewNameTooLongError(name)
	}
	return nil
}

// childPath joins name onto dir and checks the path-safety invariant: the
// result must stay within Root.
func (b *Backend) childPath(dir fsal.Handle, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	joined := filepath.Join(dir, name)
	if !b.within(joined) {
		return "", fsal.NewAccessDeniedError(joined)
	}
	return joined, nil
}

func (b *Backend) within(path string) bool {
	rel, err := filepath.Rel(b.Root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

// translate maps a raw OS error into the FSAL's tagged taxonomy.
func translate(err error, path string) error {
	if err == nil {
		return nil
	}
	switch {
	case os.IsNotExist(err):
		return fsal.NewNotFoundError(path)
	case os.IsExist(err):
		return fsal.NewAlreadyExistsError(path)
	case os.IsPermission(err):
		return fsal.NewAccessDeniedError(path)
	}
	if errno, ok := underlyingErrno(err); ok {
		switch errno {
		case unix.ENOTDIR:
			return fsal.NewNotDirectoryError(path)
		case unix.EISDIR:
			return fsal.NewIsDirectoryError(path)
		case unix.ENOTEMPTY:
			return fsal.NewNotEmptyError(path)
		case unix.ENOSPC:
			return fsal.NewNoSpaceError(path)
		case unix.EROFS:
			return fsal.NewReadOnlyError(path)
		case unix.EXDEV:
			return fsal.NewCrossDeviceError(path)
		case unix.ENAMETOOLONG:
			return fsal.NewNameTooLongError(path)
		case unix.EOPNOTSUPP:
			return fsal.NewNotSupportedError(path)
		case unix.EINVAL:
			return fsal.NewInvalidArgumentError(path)
		}
	}
	return fsal.NewIOError(path)
}

func underlyingErrno(err error) (unix.Errno, bool) {
	for {
		if errno, ok := err.(unix.Errno); ok {
			return errno, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = unwrapper.Unwrap()
		if err == nil {
			return 0, false
		}
	}
}

// GetAttr implements fsal.Backend.
func (b *Backend) GetAttr(ctx context.Context, h fsal.Handle) (fsal.Attr, error) {
	return statAttr(h)
}

func statAttr(path string) (fsal.Attr, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return fsal.Attr{}, translate(err, path)
	}
	return attrFromStat(&st), nil
}

func attrFromStat(st *unix.Stat_t) fsal.Attr {
	a := fsal.Attr{
		Mode:   uint32(st.Mode) & 0o7777,
		Nlink:  uint32(st.Nlink),
		UID:    st.Uid,
		GID:    st.Gid,
		Size:   uint64(st.Size),
		Used:   uint64(st.Blocks) * 512,
		Fsid:   uint64(st.Dev),
		FileID: st.Ino,
		Atime:  time.Unix(st.Atim.Sec, st.Atim.Nsec),
		Mtime:  time.Unix(st.Mtim.Sec, st.Mtim.Nsec),
		Ctime:  time.Unix(st.Ctim.Sec, st.Ctim.Nsec),
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		a.Type = nfs3.TypeReg
	case unix.S_IFDIR:
		a.Type = nfs3.TypeDir
	case unix.S_IFBLK:
		a.Type = nfs3.TypeBlk
		a.RdevMajor, a.RdevMinor = devNumbers(st.Rdev)
	case unix.S_IFCHR:
		a.Type = nfs3.TypeChr
		a.RdevMajor, a.RdevMinor = devNumbers(st.Rdev)
	case unix.S_IFLNK:
		a.Type = nfs3.TypeLnk
	case unix.S_IFSOCK:
		a.Type = nfs3.TypeSock
	case unix.S_IFIFO:
		a.Type = nfs3.TypeFifo
	}
	return a
}

func devNumbers(rdev uint64) (major, minor uint32) {
	return uint32(unix.Major(rdev)), uint32(unix.Minor(rdev))
}

// SetAttr implements fsal.Backend. Fields are applied in the order RFC 1813
// SETATTR implies: size, mode, uid/gid, atime, mtime. The first
// failure short-circuits; the caller is responsible for reporting wcc_data
// that reflects whatever state this left the object in.
func (b *Backend) SetAttr(ctx context.Context, h fsal.Handle, attr fsal.SetAttr) (fsal.Attr, error) {
	path := h
	if attr.Size != nil {
		if err := os.Truncate(path, int64(*attr.Size)); err != nil {
			return fsal.Attr{}, translate(err, path)
		}
	}
	if attr.Mode != nil {
		if err := os.Chmod(path, os.FileMode(*attr.Mode&0o7777)); err != nil {
			return fsal.Attr{}, translate(err, path)
		}
	}
	if attr.UID != nil || attr.GID != nil {
		uid, gid := -1, -1
		if attr.UID != nil {
			uid = int(*attr.UID)
		}
		if attr.GID != nil {
			gid = int(*attr.GID)
		}
		if err := os.Lchown(path, uid, gid); err != nil {
			return fsal.Attr{}, translate(err, path)
		}
	}
	if attr.AtimeSet || attr.MtimeSet {
		cur, err := statAttr(path)
		if err != nil {
			return fsal.Attr{}, err
		}
		at, mt := cur.Atime, cur.Mtime
		if attr.AtimeSet {
			if attr.AtimeToNow {
				at = time.Now()
			} else {
				at = attr.Atime
			}
		}
		if attr.MtimeSet {
			if attr.MtimeToNow {
				mt = time.Now()
			} else {
				mt = attr.Mtime
			}
		}
		if err := os.Chtimes(path, at, mt); err != nil {
			return fsal.Attr{}, translate(err, path)
		}
	}
	return statAttr(path)
}

// Lookup implements fsal.Backend.
func (b *Backend) Lookup(ctx context.Context, dir fsal.Handle, name string) (fsal.Handle, error) {
	path, err := b.childPath(dir, name)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(path); err != nil {
		return "", translate(err, path)
	}
	return path, nil
}

// Access implements fsal.Backend. It maps each requested NFS access bit to
// the POSIX permission bits, using unix.Access against the real credentials
// the server process runs as (no per-client uid/gid impersonation -- this
// server does not run setuid per request).
func (b *Backend) Access(ctx context.Context, h fsal.Handle, requested uint32) (uint32, error) {
	st, err := statAttr(h)
	if err != nil {
		return 0, err
	}
	granted := requested
	if st.Type != nfs3.TypeDir {
		granted &^= accessLookup
	}
	if err := unix.Access(h, unix.R_OK); err != nil {
		granted &^= accessRead | accessLookup | accessReadData
	}
	if err := unix.Access(h, unix.W_OK); err != nil {
		granted &^= accessModify | accessExtend | accessDelete
	}
	if err := unix.Access(h, unix.X_OK); err != nil {
		granted &^= accessExecute | accessLookup
	}
	return granted, nil
}

// Access bit values, RFC 1813 §3.3.4.
const (
	accessRead     = 0x0001
	accessLookup   = 0x0002
	accessModify   = 0x0004
	accessExtend   = 0x0008
	accessDelete   = 0x0010
	accessExecute  = 0x0020
	accessReadData = accessRead
)

// ReadLink implements fsal.Backend.
func (b *Backend) ReadLink(ctx context.Context, h fsal.Handle) (string, error) {
	target, err := os.Readlink(h)
	if err != nil {
		return "", translate(err, h)
	}
	return target, nil
}
