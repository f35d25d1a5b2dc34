package nfs3handlers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelfs/nfsd/internal/fsal/posix"
	"github.com/kestrelfs/nfsd/internal/handledir"
	"github.com/kestrelfs/nfsd/internal/wire/nfs3"
	"github.com/kestrelfs/nfsd/internal/xdr"
)

// newTestServer builds a Server over a POSIX backend rooted at a fresh
// temporary directory, with the root handle pre-allocated the way startup
// does it.
func newTestServer(t *testing.T) (*Server, nfs3.FileHandle, string) {
	t.Helper()
	root := t.TempDir()

	backend, err := posix.New(root)
	require.NoError(t, err)

	handles := handledir.New()
	rootFH := handles.Allocate(backend.Root)

	s := &Server{
		Handles:   handles,
		Backend:   backend,
		WriteVerf: [8]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04},
	}
	return s, rootFH, root
}

func testCtx() *RequestContext {
	return &RequestContext{Context: context.Background(), ClientAddr: "127.0.0.1:1021"}
}

// encodeFH encodes a file handle argument.
func encodeFH(t *testing.T, fh nfs3.FileHandle) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, nfs3.EncodeFileHandle(&buf, fh))
	return &buf
}

// diropArgs encodes diropargs3: a directory handle plus a name.
func diropArgs(t *testing.T, dir nfs3.FileHandle, name string) []byte {
	t.Helper()
	buf := encodeFH(t, dir)
	require.NoError(t, xdr.WriteString(buf, name))
	return buf.Bytes()
}

func decodeStatus(t *testing.T, result []byte) (nfs3.Status, *xdr.Decoder) {
	t.Helper()
	d := xdr.NewDecoder(result)
	code, err := d.Uint32()
	require.NoError(t, err)
	return nfs3.Status(code), d
}

func TestNull(t *testing.T) {
	s, _, _ := newTestServer(t)
	result, err := procNull(s, testCtx(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestGetAttrRoot(t *testing.T) {
	s, rootFH, _ := newTestServer(t)

	result, err := procGetAttr(s, testCtx(), encodeFH(t, rootFH).Bytes())
	require.NoError(t, err)

	status, d := decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)
	attr, err := nfs3.DecodeFattr3(d)
	require.NoError(t, err)
	assert.Equal(t, nfs3.TypeDir, attr.Type)
	assert.Zero(t, d.Remaining())
}

func TestGetAttrStale(t *testing.T) {
	s, _, _ := newTestServer(t)

	var bogus nfs3.FileHandle
	bogus[0] = 0xFF
	result, err := procGetAttr(s, testCtx(), encodeFH(t, bogus).Bytes())
	require.NoError(t, err)

	status, d := decodeStatus(t, result)
	assert.Equal(t, nfs3.ErrStale, status)
	assert.Zero(t, d.Remaining())
}

func TestGetAttrGarbage(t *testing.T) {
	s, _, _ := newTestServer(t)
	_, err := procGetAttr(s, testCtx(), []byte{0x00})
	assert.ErrorIs(t, err, ErrGarbageArgs)
}

func TestLookupExisting(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("Hi\n"), 0o644))

	result, err := procLookup(s, testCtx(), diropArgs(t, rootFH, "hello.txt"))
	require.NoError(t, err)

	status, d := decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)

	raw, err := d.Opaque()
	require.NoError(t, err)
	require.Len(t, raw, nfs3.HandleSize)

	// Object post_op_attr: follows=TRUE, regular file of 3 bytes.
	follows, err := d.Bool()
	require.NoError(t, err)
	require.True(t, follows)
	attr, err := nfs3.DecodeFattr3(d)
	require.NoError(t, err)
	assert.Equal(t, nfs3.TypeReg, attr.Type)
	assert.Equal(t, uint64(3), attr.Size)

	// Directory post_op_attr: follows=TRUE.
	follows, err = d.Bool()
	require.NoError(t, err)
	assert.True(t, follows)
}

func TestLookupIdempotentHandle(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "f"), nil, 0o644))

	first, err := procLookup(s, testCtx(), diropArgs(t, rootFH, "f"))
	require.NoError(t, err)
	second, err := procLookup(s, testCtx(), diropArgs(t, rootFH, "f"))
	require.NoError(t, err)

	_, d1 := decodeStatus(t, first)
	_, d2 := decodeStatus(t, second)
	h1, err := d1.Opaque()
	require.NoError(t, err)
	h2, err := d2.Opaque()
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "two LOOKUPs of one path must return identical handles")
}

func TestLookupMissing(t *testing.T) {
	s, rootFH, _ := newTestServer(t)

	result, err := procLookup(s, testCtx(), diropArgs(t, rootFH, "nope"))
	require.NoError(t, err)

	status, d := decodeStatus(t, result)
	assert.Equal(t, nfs3.ErrNoEnt, status)
	follows, err := d.Bool()
	require.NoError(t, err)
	assert.True(t, follows, "failure reply still carries the directory's attributes")
}

// readArgs encodes READ3args.
func readArgs(t *testing.T, fh nfs3.FileHandle, offset uint64, count uint32) []byte {
	t.Helper()
	buf := encodeFH(t, fh)
	require.NoError(t, xdr.WriteUint64(buf, offset))
	require.NoError(t, xdr.WriteUint32(buf, count))
	return buf.Bytes()
}

func lookupFH(t *testing.T, s *Server, dir nfs3.FileHandle, name string) nfs3.FileHandle {
	t.Helper()
	result, err := procLookup(s, testCtx(), diropArgs(t, dir, name))
	require.NoError(t, err)
	status, d := decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)
	raw, err := d.Opaque()
	require.NoError(t, err)
	var fh nfs3.FileHandle
	copy(fh[:], raw)
	return fh
}

func TestReadWholeFile(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("Hi\n"), 0o644))
	fh := lookupFH(t, s, rootFH, "hello.txt")

	result, err := procRead(s, testCtx(), readArgs(t, fh, 0, 4096))
	require.NoError(t, err)

	status, d := decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)

	follows, err := d.Bool()
	require.NoError(t, err)
	require.True(t, follows)
	_, err = nfs3.DecodeFattr3(d)
	require.NoError(t, err)

	count, err := d.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), count)

	eof, err := d.Bool()
	require.NoError(t, err)
	assert.True(t, eof)

	data, err := d.Opaque()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x48, 0x69, 0x0A}, data)
	assert.Zero(t, d.Remaining(), "3 data bytes plus 1 padding byte consumed exactly")
}

func TestReadAtEOF(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "f"), []byte("abc"), 0o644))
	fh := lookupFH(t, s, rootFH, "f")

	result, err := procRead(s, testCtx(), readArgs(t, fh, 3, 4096))
	require.NoError(t, err)

	status, d := decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)
	follows, err := d.Bool()
	require.NoError(t, err)
	require.True(t, follows)
	_, err = nfs3.DecodeFattr3(d)
	require.NoError(t, err)

	count, err := d.Uint32()
	require.NoError(t, err)
	assert.Zero(t, count)
	eof, err := d.Bool()
	require.NoError(t, err)
	assert.True(t, eof)
}

// createModeArgs encodes CREATE3args for UNCHECKED or GUARDED with a mode
// attribute.
func createModeArgs(t *testing.T, dir nfs3.FileHandle, name string, createMode nfs3.CreateMode, mode uint32) []byte {
	t.Helper()
	buf := encodeFH(t, dir)
	require.NoError(t, xdr.WriteString(buf, name))
	require.NoError(t, xdr.WriteUint32(buf, uint32(createMode)))
	// sattr3: mode set, everything else "don't change".
	require.NoError(t, xdr.WriteBool(buf, true))
	require.NoError(t, xdr.WriteUint32(buf, mode))
	require.NoError(t, xdr.WriteBool(buf, false)) // uid
	require.NoError(t, xdr.WriteBool(buf, false)) // gid
	require.NoError(t, xdr.WriteBool(buf, false)) // size
	require.NoError(t, xdr.WriteUint32(buf, uint32(nfs3.DontChange))) // atime
	require.NoError(t, xdr.WriteUint32(buf, uint32(nfs3.DontChange))) // mtime
	return buf.Bytes()
}

// createArgs encodes CREATE3args with UNCHECKED mode and a mode attribute.
func createArgs(t *testing.T, dir nfs3.FileHandle, name string, mode uint32) []byte {
	t.Helper()
	return createModeArgs(t, dir, name, nfs3.Unchecked, mode)
}

// createExclusiveArgs encodes CREATE3args in EXCLUSIVE mode: the createhow3
// union carries an 8-byte verifier instead of an sattr3.
func createExclusiveArgs(t *testing.T, dir nfs3.FileHandle, name string, verifier [8]byte) []byte {
	t.Helper()
	buf := encodeFH(t, dir)
	require.NoError(t, xdr.WriteString(buf, name))
	require.NoError(t, xdr.WriteUint32(buf, uint32(nfs3.Exclusive)))
	require.NoError(t, xdr.WriteFixedOpaque(buf, verifier[:], 8))
	return buf.Bytes()
}

// writeArgs encodes WRITE3args.
func writeArgs(t *testing.T, fh nfs3.FileHandle, offset uint64, stable nfs3.StableHow, data []byte) []byte {
	t.Helper()
	buf := encodeFH(t, fh)
	require.NoError(t, xdr.WriteUint64(buf, offset))
	require.NoError(t, xdr.WriteUint32(buf, uint32(len(data))))
	require.NoError(t, xdr.WriteUint32(buf, uint32(stable)))
	require.NoError(t, xdr.WriteOpaque(buf, data))
	return buf.Bytes()
}

func skipWccData(t *testing.T, d *xdr.Decoder) {
	t.Helper()
	follows, err := d.Bool()
	require.NoError(t, err)
	if follows {
		_, err = d.Uint64() // size
		require.NoError(t, err)
		for i := 0; i < 4; i++ { // mtime + ctime
			_, err = d.Uint32()
			require.NoError(t, err)
		}
	}
	follows, err = d.Bool()
	require.NoError(t, err)
	if follows {
		_, err = nfs3.DecodeFattr3(d)
		require.NoError(t, err)
	}
}

func TestCreateWriteCommitRead(t *testing.T) {
	s, rootFH, _ := newTestServer(t)

	// CREATE(root, "x", UNCHECKED, mode=0600)
	result, err := procCreate(s, testCtx(), createArgs(t, rootFH, "x", 0o600))
	require.NoError(t, err)
	status, d := decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)

	follows, err := d.Bool() // post_op_fh3
	require.NoError(t, err)
	require.True(t, follows)
	raw, err := d.Opaque()
	require.NoError(t, err)
	var fh nfs3.FileHandle
	copy(fh[:], raw)

	// WRITE(H, 0, 5, UNSTABLE, "world")
	result, err = procWrite(s, testCtx(), writeArgs(t, fh, 0, nfs3.Unstable, []byte("world")))
	require.NoError(t, err)
	status, d = decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)
	skipWccData(t, d)

	count, err := d.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(5), count)
	committed, err := d.Uint32()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, committed, uint32(nfs3.Unstable))
	verf, err := d.FixedOpaque(8)
	require.NoError(t, err)
	assert.Equal(t, s.WriteVerf[:], verf)

	// COMMIT(H, 0, 0)
	commitBuf := encodeFH(t, fh)
	require.NoError(t, xdr.WriteUint64(commitBuf, 0))
	require.NoError(t, xdr.WriteUint32(commitBuf, 0))
	result, err = procCommit(s, testCtx(), commitBuf.Bytes())
	require.NoError(t, err)
	status, d = decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)
	skipWccData(t, d)
	verf, err = d.FixedOpaque(8)
	require.NoError(t, err)
	assert.Equal(t, s.WriteVerf[:], verf, "COMMIT must echo the WRITE verifier")

	// READ(H, 0, 5)
	result, err = procRead(s, testCtx(), readArgs(t, fh, 0, 5))
	require.NoError(t, err)
	status, d = decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)
	follows, err = d.Bool()
	require.NoError(t, err)
	require.True(t, follows)
	_, err = nfs3.DecodeFattr3(d)
	require.NoError(t, err)
	count, err = d.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(5), count)
	_, err = d.Bool() // eof
	require.NoError(t, err)
	data, err := d.Opaque()
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), data)
}

func TestRemoveIdempotentEffect(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "victim"), nil, 0o644))
	fh := lookupFH(t, s, rootFH, "victim")

	result, err := procRemove(s, testCtx(), diropArgs(t, rootFH, "victim"))
	require.NoError(t, err)
	status, _ := decodeStatus(t, result)
	assert.Equal(t, nfs3.OK, status)

	// The removed object's handle is now stale.
	result, err = procGetAttr(s, testCtx(), encodeFH(t, fh).Bytes())
	require.NoError(t, err)
	status, _ = decodeStatus(t, result)
	assert.Equal(t, nfs3.ErrStale, status)

	// A second REMOVE reports NOENT; the directory state is unchanged.
	result, err = procRemove(s, testCtx(), diropArgs(t, rootFH, "victim"))
	require.NoError(t, err)
	status, _ = decodeStatus(t, result)
	assert.Equal(t, nfs3.ErrNoEnt, status)
}

func TestRemoveDirectoryIsDir(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	result, err := procRemove(s, testCtx(), diropArgs(t, rootFH, "sub"))
	require.NoError(t, err)
	status, _ := decodeStatus(t, result)
	assert.Equal(t, nfs3.ErrIsDir, status)
}

func TestSetAttrNoChanges(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	path := filepath.Join(root, "f")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o640))
	fh := lookupFH(t, s, rootFH, "f")

	before, err := os.Stat(path)
	require.NoError(t, err)

	// sattr3 with every field "don't change", no guard.
	buf := encodeFH(t, fh)
	require.NoError(t, xdr.WriteBool(buf, false)) // mode
	require.NoError(t, xdr.WriteBool(buf, false)) // uid
	require.NoError(t, xdr.WriteBool(buf, false)) // gid
	require.NoError(t, xdr.WriteBool(buf, false)) // size
	require.NoError(t, xdr.WriteUint32(buf, uint32(nfs3.DontChange)))
	require.NoError(t, xdr.WriteUint32(buf, uint32(nfs3.DontChange)))
	require.NoError(t, xdr.WriteBool(buf, false)) // guard

	result, err := procSetAttr(s, testCtx(), buf.Bytes())
	require.NoError(t, err)
	status, _ := decodeStatus(t, result)
	assert.Equal(t, nfs3.OK, status)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.Mode(), after.Mode())
	assert.Equal(t, before.Size(), after.Size())
}

func TestReadDirFromStart(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b"), nil, 0o644))

	buf := encodeFH(t, rootFH)
	require.NoError(t, xdr.WriteUint64(buf, 0))                      // cookie
	require.NoError(t, xdr.WriteFixedOpaque(buf, make([]byte, 8), 8)) // cookieverf
	require.NoError(t, xdr.WriteUint32(buf, 4096))                   // count

	result, err := procReadDir(s, testCtx(), buf.Bytes())
	require.NoError(t, err)
	status, d := decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)

	follows, err := d.Bool()
	require.NoError(t, err)
	require.True(t, follows)
	_, err = nfs3.DecodeFattr3(d)
	require.NoError(t, err)

	verf, err := d.FixedOpaque(8)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), verf, "cookieverf is all-zero")

	var names []string
	var lastCookie uint64
	for {
		more, err := d.Bool()
		require.NoError(t, err)
		if !more {
			break
		}
		_, err = d.Uint64() // fileid
		require.NoError(t, err)
		name, err := d.String()
		require.NoError(t, err)
		cookie, err := d.Uint64()
		require.NoError(t, err)
		assert.Greater(t, cookie, lastCookie, "cookies increase monotonically")
		lastCookie = cookie
		names = append(names, name)
	}
	eof, err := d.Bool()
	require.NoError(t, err)
	assert.True(t, eof)
	assert.Contains(t, names, "a")
	assert.Contains(t, names, "b")
}

func TestAccessStalePinsFalseAttr(t *testing.T) {
	s, _, _ := newTestServer(t)

	var bogus nfs3.FileHandle
	bogus[0] = 0x01
	buf := encodeFH(t, bogus)
	require.NoError(t, xdr.WriteUint32(buf, 0x3F))

	result, err := procAccess(s, testCtx(), buf.Bytes())
	require.NoError(t, err)

	status, _ := decodeStatus(t, result)
	assert.Equal(t, nfs3.ErrStale, status)
	// attributes_follow = FALSE is exactly four zero bytes, nothing after.
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, result[4:])
}

func TestCreateGuardedExisting(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	path := filepath.Join(root, "present")
	require.NoError(t, os.WriteFile(path, []byte("precious"), 0o644))

	result, err := procCreate(s, testCtx(), createModeArgs(t, rootFH, "present", nfs3.Guarded, 0o600))
	require.NoError(t, err)
	status, _ := decodeStatus(t, result)
	assert.Equal(t, nfs3.ErrExist, status)

	// The existing file must not have been truncated or rewritten.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("precious"), data)
}

func TestCreateUncheckedExistingTruncates(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	path := filepath.Join(root, "present")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o644))

	result, err := procCreate(s, testCtx(), createArgs(t, rootFH, "present", 0o600))
	require.NoError(t, err)
	status, _ := decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, fi.Size())
}

func TestCreateExclusiveRetry(t *testing.T) {
	s, rootFH, _ := newTestServer(t)
	verifier := [8]byte{0x10, 0x20, 0x30, 0x40, 0x00, 0x00, 0x10, 0x00}

	result, err := procCreate(s, testCtx(), createExclusiveArgs(t, rootFH, "x", verifier))
	require.NoError(t, err)
	status, _ := decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)

	// The same request retransmitted is answered OK, not EXIST.
	result, err = procCreate(s, testCtx(), createExclusiveArgs(t, rootFH, "x", verifier))
	require.NoError(t, err)
	status, _ = decodeStatus(t, result)
	assert.Equal(t, nfs3.OK, status)

	// A different verifier against the same name is a genuine collision.
	other := [8]byte{0x99, 0x88, 0x77, 0x66, 0x00, 0x00, 0x20, 0x00}
	result, err = procCreate(s, testCtx(), createExclusiveArgs(t, rootFH, "x", other))
	require.NoError(t, err)
	status, _ = decodeStatus(t, result)
	assert.Equal(t, nfs3.ErrExist, status)
}

// linkArgs encodes LINK3args: the file to link plus diropargs3 for the new
// name.
func linkArgs(t *testing.T, file nfs3.FileHandle, dir nfs3.FileHandle, name string) []byte {
	t.Helper()
	buf := encodeFH(t, file)
	require.NoError(t, nfs3.EncodeFileHandle(buf, dir))
	require.NoError(t, xdr.WriteString(buf, name))
	return buf.Bytes()
}

func TestLinkFile(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "orig"), []byte("shared"), 0o644))
	fh := lookupFH(t, s, rootFH, "orig")

	result, err := procLink(s, testCtx(), linkArgs(t, fh, rootFH, "alias"))
	require.NoError(t, err)
	status, _ := decodeStatus(t, result)
	require.Equal(t, nfs3.OK, status)

	data, err := os.ReadFile(filepath.Join(root, "alias"))
	require.NoError(t, err)
	assert.Equal(t, []byte("shared"), data)

	fi, err := os.Stat(filepath.Join(root, "orig"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), uint64(fi.Sys().(*syscall.Stat_t).Nlink))
}

func TestLinkDirectoryIsDir(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	fh := lookupFH(t, s, rootFH, "sub")

	result, err := procLink(s, testCtx(), linkArgs(t, fh, rootFH, "subalias"))
	require.NoError(t, err)
	status, _ := decodeStatus(t, result)
	assert.Equal(t, nfs3.ErrIsDir, status)
}

// readdirArgs encodes READDIR3args with an explicit cookie and cookieverf.
func readdirArgs(t *testing.T, dir nfs3.FileHandle, cookie uint64, verf [8]byte) []byte {
	t.Helper()
	buf := encodeFH(t, dir)
	require.NoError(t, xdr.WriteUint64(buf, cookie))
	require.NoError(t, xdr.WriteFixedOpaque(buf, verf[:], 8))
	require.NoError(t, xdr.WriteUint32(buf, 4096))
	return buf.Bytes()
}

func TestReadDirBadCookieVerf(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), nil, 0o644))

	// A resumed listing (cookie != 0) under a verifier this server never
	// issued is rejected.
	stale := [8]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x11}
	result, err := procReadDir(s, testCtx(), readdirArgs(t, rootFH, 1, stale))
	require.NoError(t, err)
	status, _ := decodeStatus(t, result)
	assert.Equal(t, nfs3.ErrBadCookie, status)

	// The same verifier with cookie == 0 restarts from the beginning: the
	// verifier is only meaningful for resumption.
	result, err = procReadDir(s, testCtx(), readdirArgs(t, rootFH, 0, stale))
	require.NoError(t, err)
	status, _ = decodeStatus(t, result)
	assert.Equal(t, nfs3.OK, status)

	// Resuming with the issued (all-zero) verifier is accepted.
	result, err = procReadDir(s, testCtx(), readdirArgs(t, rootFH, 1, [8]byte{}))
	require.NoError(t, err)
	status, _ = decodeStatus(t, result)
	assert.Equal(t, nfs3.OK, status)
}

func TestReadDirPlusBadCookieVerf(t *testing.T) {
	s, rootFH, root := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), nil, 0o644))

	buf := encodeFH(t, rootFH)
	require.NoError(t, xdr.WriteUint64(buf, 1)) // cookie
	stale := [8]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	require.NoError(t, xdr.WriteFixedOpaque(buf, stale[:], 8))
	require.NoError(t, xdr.WriteUint32(buf, 1024)) // dircount
	require.NoError(t, xdr.WriteUint32(buf, 4096)) // maxcount

	result, err := procReadDirPlus(s, testCtx(), buf.Bytes())
	require.NoError(t, err)
	status, _ := decodeStatus(t, result)
	assert.Equal(t, nfs3.ErrBadCookie, status)
}
