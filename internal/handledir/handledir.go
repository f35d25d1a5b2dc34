// Package handledir implements the bidirectional mapping between opaque
// 32-byte NFS file handles and backend paths. It is the
// only place in the server that invents handle bytes; every other package
// either allocates through it or resolves through it.
package handledir

import (
	"encoding/binary"
	"hash/fnv"
	"sync"

	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
)

// ErrStale is returned by Resolve when a handle does not correspond to a live
// path -- either it was never allocated or it was revoked by Remove.
type errStale struct{}

func (errStale) Error() string { return "handledir: stale file handle" }

// ErrStale is the sentinel error for a handle with no live path mapping.
var ErrStale error = errStale{}

// Directory is the process-wide bidirectional handle<->path map shared by
// every connection. The zero value is not usable; use
// New. All methods are safe for concurrent use.
type Directory struct {
	mu        sync.RWMutex
	byPath    map[string]nfs3.FileHandle
	byHandle  map[nfs3.FileHandle]string
	nextID    uint64
}

// New returns an empty Directory with its id counter initialized to 1.
func New() *Directory {
	return &Directory{
		byPath:   make(map[string]nfs3.FileHandle),
		byHandle: make(map[nfs3.FileHandle]string),
		nextID:   1,
	}
}

// Allocate returns the handle for path, creating one if this is the first
// reference. Re-requesting a handle for the same path always returns the
// same bytes.
func (d *Directory) Allocate(path string) nfs3.FileHandle {
	d.mu.RLock()
	if h, ok := d.byPath[path]; ok {
		d.mu.RUnlock()
		return h
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	// Re-check under the write lock: a concurrent allocator may have won the
	// race for this path while we waited.
	if h, ok := d.byPath[path]; ok {
		return h
	}

	h := newHandle(d.nextID, path)
	d.nextID++
	d.byPath[path] = h
	d.byHandle[h] = path
	return h
}

// Resolve returns the backend path a handle currently refers to, or ErrStale
// if the handle is unknown or was revoked.
func (d *Directory) Resolve(h nfs3.FileHandle) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	path, ok := d.byHandle[h]
	if !ok {
		return "", ErrStale
	}
	return path, nil
}

// Remove revokes h, deleting both directions. The NFS handlers revoke by
// path instead (RemoveByPath), and RENAME moves the mapping (Rename).
func (d *Directory) Remove(h nfs3.FileHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	path, ok := d.byHandle[h]
	if !ok {
		return
	}
	delete(d.byHandle, h)
	delete(d.byPath, path)
}

// RemoveByPath revokes whatever handle is currently mapped to path, if any.
// REMOVE and RMDIR call this for the removed path once the backend removal
// succeeds.
func (d *Directory) RemoveByPath(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.byPath[path]
	if !ok {
		return
	}
	delete(d.byHandle, h)
	delete(d.byPath, path)
}

// Rename moves the handle mapping (if any) from oldPath to newPath, so a
// client that continues to reference the object by its previously-issued
// handle observes the renamed path. If oldPath had no handle, this is a
// no-op; if newPath already had an (orphaned) handle, it is displaced.
func (d *Directory) Rename(oldPath, newPath string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.byPath[oldPath]
	if !ok {
		return
	}
	delete(d.byPath, oldPath)
	if displaced, ok := d.byPath[newPath]; ok {
		// The rename overwrote an existing object; its handle is now stale.
		delete(d.byHandle, displaced)
	}
	d.byPath[newPath] = h
	d.byHandle[h] = newPath
}

// newHandle builds the 32-byte handle layout: an 8-byte
// monotonic id, an 8-byte deterministic hash of the path, and 16 zero bytes.
// The id guarantees uniqueness across paths even if two paths collide in the
// hash; the hash is not load-bearing for correctness, only for giving stale
// handles from a prior path a visibly different value at a glance.
func newHandle(id uint64, path string) nfs3.FileHandle {
	var h nfs3.FileHandle
	binary.BigEndian.PutUint64(h[0:8], id)
	sum := fnv.New64a()
	_, _ = sum.Write([]byte(path))
	binary.BigEndian.PutUint64(h[8:16], sum.Sum64())
	return h
}
