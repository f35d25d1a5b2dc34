package posix

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/kestrelfs/nfsd/internal/fsal"
	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
)

// Create implements fsal.Backend. UNCHECKED truncates an existing file,
// GUARDED fails ErrAlreadyExists on one (O_EXCL), and EXCLUSIVE additionally
// stashes the verifier as the file's mtime so a retried CREATE with the same
// verifier against an already-created file can be recognized as the same
// logical request rather than EXIST (RFC 1813 §3.3.8).
func (b *Backend) Create(ctx context.Context, dir fsal.Handle, name string, mode uint32, how fsal.CreateMode, verifier [8]byte) (fsal.Handle, error) {
	path, err := b.childPath(dir, name)
	if err != nil {
		return "", err
	}

	flags := os.O_WRONLY | os.O_CREATE
	if how == fsal.CreateUnchecked {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, os.FileMode(mode&0o7777))
	if err != nil {
		if how == fsal.CreateExclusive && os.IsExist(err) {
			// Per RFC 1813, a retried EXCLUSIVE create with a verifier that
			// matches what is already on disk is not an error.
			if verifierMatches(path, verifier) {
				return path, nil
			}
		}
		return "", translate(err, path)
	}
	defer f.Close()

	if how == fsal.CreateExclusive {
		stampVerifier(path, verifier)
	}
	return path, nil
}

func verifierMatches(path string, verifier [8]byte) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	sec := fi.ModTime().Unix()
	nsec := fi.ModTime().Nanosecond()
	return uint32(sec) == be32(verifier[0:4]) && uint32(nsec) == be32(verifier[4:8])
}

func stampVerifier(path string, verifier [8]byte) {
	sec := int64(be32(verifier[0:4]))
	nsec := int64(be32(verifier[4:8]))
	t := unixTime(sec, nsec)
	_ = os.Chtimes(path, t, t)
}

// MkDir implements fsal.Backend.
func (b *Backend) MkDir(ctx context.Context, dir fsal.Handle, name string, mode uint32) (fsal.Handle, error) {
	path, err := b.childPath(dir, name)
	if err != nil {
		return "", err
	}
	if err := os.Mkdir(path, os.FileMode(mode&0o7777)); err != nil {
		return "", translate(err, path)
	}
	return path, nil
}

// Symlink implements fsal.Backend. mode is accepted for interface symmetry
// with the other create-like operations but ignored: POSIX symlinks have no
// independent permission bits (the kernel always reports 0777 for them).
func (b *Backend) Symlink(ctx context.Context, dir fsal.Handle, name, target string, mode uint32) (fsal.Handle, error) {
	path, err := b.childPath(dir, name)
	if err != nil {
		return "", err
	}
	if err := os.Symlink(target, path); err != nil {
		return "", translate(err, path)
	}
	return path, nil
}

// MkNod implements fsal.Backend. Device numbers are only meaningful for
// BLK/CHR; FIFO and SOCK ignore major/minor per RFC 1813 §3.3.11.
func (b *Backend) MkNod(ctx context.Context, dir fsal.Handle, name string, ftype nfs3.FType, mode uint32, major, minor uint32) (fsal.Handle, error) {
	path, err := b.childPath(dir, name)
	if err != nil {
		return "", err
	}
	var sysMode uint32
	switch ftype {
	case nfs3.TypeBlk:
		sysMode = unix.S_IFBLK
	case nfs3.TypeChr:
		sysMode = unix.S_IFCHR
	case nfs3.TypeFifo:
		sysMode = unix.S_IFIFO
	case nfs3.TypeSock:
		sysMode = unix.S_IFSOCK
	default:
		return "", fsal.NewInvalidArgumentError(path)
	}
	dev := 0
	if ftype == nfs3.TypeBlk || ftype == nfs3.TypeChr {
		dev = int(unix.Mkdev(major, minor))
	}
	if err := unix.Mknod(path, sysMode|(mode&0o7777), dev); err != nil {
		return "", translate(err, path)
	}
	return path, nil
}

// Link implements fsal.Backend. Hard-linking a directory must fail
// ErrIsDirectory; linux link(2) reports EPERM for that case, which would
// otherwise translate to an access error, so the target is checked first.
func (b *Backend) Link(ctx context.Context, target fsal.Handle, dir fsal.Handle, name string) error {
	path, err := b.childPath(dir, name)
	if err != nil {
		return err
	}
	fi, err := os.Lstat(target)
	if err != nil {
		return translate(err, target)
	}
	if fi.IsDir() {
		return fsal.NewIsDirectoryError(target)
	}
	if err := os.Link(target, path); err != nil {
		return translate(err, path)
	}
	return nil
}

// Remove implements fsal.Backend. Fails with ErrIsDirectory if name names a
// directory; REMOVE on a directory must fail NFS3ERR_ISDIR.
func (b *Backend) Remove(ctx context.Context, dir fsal.Handle, name string) error {
	path, err := b.childPath(dir, name)
	if err != nil {
		return err
	}
	fi, err := os.Lstat(path)
	if err != nil {
		return translate(err, path)
	}
	if fi.IsDir() {
		return fsal.NewIsDirectoryError(path)
	}
	if err := os.Remove(path); err != nil {
		return translate(err, path)
	}
	return nil
}

// RmDir implements fsal.Backend.
func (b *Backend) RmDir(ctx context.Context, dir fsal.Handle, name string) error {
	path, err := b.childPath(dir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return translate(err, path)
	}
	return nil
}

// Rename implements fsal.Backend.
func (b *Backend) Rename(ctx context.Context, fromDir fsal.Handle, fromName string, toDir fsal.Handle, toName string) error {
	src, err := b.childPath(fromDir, fromName)
	if err != nil {
		return err
	}
	dst, err := b.childPath(toDir, toName)
	if err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		return translate(err, src)
	}
	return nil
}

// ReadDir implements fsal.Backend. Cookies are assigned as the 1-based
// position of each entry in a stable, sorted-by-name listing -- sorting
// guarantees that two ReadDir calls against an unchanged directory produce
// identical orderings, satisfying the FSAL contract's "same cookieverf
// implies same order" requirement using an all-zero verifier.
func (b *Backend) ReadDir(ctx context.Context, dir fsal.Handle, cookie uint64, count int) ([]fsal.DirEntry, bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, false, translate(err, dir)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, false, translate(err, dir)
	}
	sort.Strings(names)

	all := make([]fsal.DirEntry, 0, len(names)+2)
	all = append(all, fsal.DirEntry{Name: ".", FileID: inodeOf(dir), Cookie: 1})
	all = append(all, fsal.DirEntry{Name: "..", FileID: inodeOf(filepath.Dir(dir)), Cookie: 2})
	for i, n := range names {
		all = append(all, fsal.DirEntry{Name: n, FileID: inodeOf(dir + "/" + n), Cookie: uint64(i + 3)})
	}

	start := 0
	if cookie != 0 {
		for i, e := range all {
			if e.Cookie == cookie {
				start = i + 1
				break
			}
		}
	}
	if start > len(all) {
		start = len(all)
	}

	end := len(all)
	eof := true
	if count > 0 && start+count < len(all) {
		end = start + count
		eof = false
	}
	return all[start:end], eof, nil
}

func inodeOf(path string) uint64 {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return 0
	}
	return st.Ino
}

// FsStat implements fsal.Backend.
func (b *Backend) FsStat(ctx context.Context, h fsal.Handle) (fsal.FSStat, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(h, &st); err != nil {
		return fsal.FSStat{}, translate(err, h)
	}
	bs := uint64(st.Bsize)
	return fsal.FSStat{
		TotalBytes:  st.Blocks * bs,
		FreeBytes:   st.Bfree * bs,
		AvailBytes:  st.Bavail * bs,
		TotalFiles:  st.Files,
		FreeFiles:   st.Ffree,
		AvailFiles:  st.Ffree,
		InvarSec:    0,
	}, nil
}
