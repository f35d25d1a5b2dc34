package posix

import (
	"context"
	"io"
	"os"

	"github.com/kestrelfs/nfsd/internal/fsal"
)

// Read implements fsal.Backend. A short read at EOF is reported via eof=true
// rather than an error.
func (b *Backend) Read(ctx context.Context, h fsal.Handle, offset uint64, count uint32) ([]byte, bool, error) {
	f, err := os.Open(h)
	if err != nil {
		return nil, false, translate(err, h)
	}
	defer f.Close()

	buf := make([]byte, count)
	n, err := f.ReadAt(buf, int64(offset))
	if err != nil && err != io.EOF {
		return nil, false, translate(err, h)
	}
	eof := false
	if err == io.EOF {
		eof = true
	} else {
		// Determine EOF precisely: offset+n reached or passed the file size.
		if fi, statErr := f.Stat(); statErr == nil {
			eof = offset+uint64(n) >= uint64(fi.Size())
		}
	}
	return buf[:n], eof, nil
}

// Write implements fsal.Backend. This reference backend does not track
// per-file dirty ranges (see DESIGN.md): every write that requests
// DATA_SYNC or FILE_SYNC is synced immediately via File.Sync, and UNSTABLE
// writes are left to the OS page cache until a COMMIT (or process exit)
// flushes them -- Commit always syncs the whole file, which is RFC-legal
// though costlier than tracking dirty ranges.
func (b *Backend) Write(ctx context.Context, h fsal.Handle, offset uint64, data []byte, stable fsal.StableHow) (uint32, fsal.StableHow, error) {
	f, err := os.OpenFile(h, os.O_WRONLY, 0)
	if err != nil {
		return 0, fsal.Unstable, translate(err, h)
	}
	defer f.Close()

	n, err := f.WriteAt(data, int64(offset))
	if err != nil {
		return uint32(n), fsal.Unstable, translate(err, h)
	}

	committed := fsal.Unstable
	if stable != fsal.Unstable {
		if err := f.Sync(); err != nil {
			return uint32(n), fsal.Unstable, translate(err, h)
		}
		committed = stable
	}
	return uint32(n), committed, nil
}

// Commit implements fsal.Backend. offset/count are accepted for interface
// conformance with RFC 1813 §3.3.21 but ignored -- see the Write doc comment
// above; this reference backend syncs the whole file.
func (b *Backend) Commit(ctx context.Context, h fsal.Handle, offset uint64, count uint64) error {
	f, err := os.OpenFile(h, os.O_WRONLY, 0)
	if err != nil {
		return translate(err, h)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		return translate(err, h)
	}
	return nil
}
