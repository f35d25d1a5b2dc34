package nfs3

import (
	"bytes"
	"testing"

	"github.com/kestrelfs/nfsd/internal/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostOpAttrDiscipline pins the exact byte shapes scenario invariant:
// attributes_follow = FALSE is exactly 0x00000000, TRUE is 0x00000001
// followed by 84 bytes of fattr3.
func TestPostOpAttrDiscipline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodePostOpAttr(&buf, nil))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, buf.Bytes())

	buf.Reset()
	require.NoError(t, EncodePostOpAttr(&buf, &Fattr3{Type: TypeReg, Size: 3}))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, buf.Bytes()[:4])
	assert.Len(t, buf.Bytes()[4:], FattrWireSize)
	assert.Len(t, buf.Bytes(), 4+FattrWireSize)
}

func TestPreOpAttrDiscipline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodePreOpAttr(&buf, nil))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, buf.Bytes())

	buf.Reset()
	require.NoError(t, EncodePreOpAttr(&buf, &WccAttr{Size: 10}))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, buf.Bytes()[:4])
	assert.Len(t, buf.Bytes(), 4+24) // size(8) + mtime(8) + ctime(8)
}

func TestFattr3Roundtrip(t *testing.T) {
	a := Fattr3{
		Type:   TypeDir,
		Mode:   0o755,
		Nlink:  2,
		UID:    1000,
		GID:    1000,
		Size:   4096,
		Used:   4096,
		Rdev:   SpecData3{Major: 0, Minor: 0},
		Fsid:   1,
		Fileid: 2,
		Atime:  Time3{Seconds: 100, Nseconds: 1},
		Mtime:  Time3{Seconds: 101, Nseconds: 2},
		Ctime:  Time3{Seconds: 102, Nseconds: 3},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeFattr3(&buf, a))
	require.Len(t, buf.Bytes(), FattrWireSize)

	got, err := DecodeFattr3(newTestDecoder(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestWccDataEncodesBothHalves(t *testing.T) {
	var buf bytes.Buffer
	before := WccAttr{Size: 1}
	after := Fattr3{Type: TypeReg}
	require.NoError(t, EncodeWccData(&buf, &before, &after))
	// pre_op_attr(true)+wcc_attr(24) + post_op_attr(true)+fattr3(84)
	assert.Len(t, buf.Bytes(), 4+24+4+FattrWireSize)
}

func TestEncodeEntryListLinkedListShape(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry3{
		{FileID: 1, Name: "a", Cookie: 1},
		{FileID: 2, Name: "bb", Cookie: 2},
	}
	require.NoError(t, EncodeEntryList(&buf, entries))
	b := buf.Bytes()
	// true
	assert.Equal(t, []byte{0, 0, 0, 1}, b[0:4])
	// final false terminator is the last 4 bytes
	assert.Equal(t, []byte{0, 0, 0, 0}, b[len(b)-4:])
}

func TestFileHandleRoundtrip(t *testing.T) {
	var h FileHandle
	for i := range h {
		h[i] = byte(i)
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeFileHandle(&buf, h))

	got, err := DecodeFileHandle(newTestDecoder(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestDecodeFileHandleRejectsOversize(t *testing.T) {
	var buf bytes.Buffer
	oversized := make([]byte, 100)
	require.NoError(t, writeOpaqueForTest(&buf, oversized))
	_, err := DecodeFileHandle(newTestDecoder(buf.Bytes()))
	assert.ErrorIs(t, err, ErrBadHandleLength)
}

func TestSattr3PartialSet(t *testing.T) {
	var buf bytes.Buffer
	// mode set, everything else unset
	require.NoError(t, writeBoolForTest(&buf, true))
	require.NoError(t, writeU32ForTest(&buf, 0o600))
	require.NoError(t, writeBoolForTest(&buf, false)) // uid
	require.NoError(t, writeBoolForTest(&buf, false)) // gid
	require.NoError(t, writeBoolForTest(&buf, false)) // size
	require.NoError(t, writeU32ForTest(&buf, uint32(DontChange)))
	require.NoError(t, writeU32ForTest(&buf, uint32(DontChange)))

	s, err := DecodeSattr3(newTestDecoder(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, s.Mode.Set)
	assert.Equal(t, uint32(0o600), s.Mode.Value)
	assert.False(t, s.UID.Set)
	assert.False(t, s.Size.Set)
	assert.Equal(t, DontChange, s.Atime.How)
}

// Test helpers: thin aliases over the xdr package so the wire assertions
// above read in terms of the structure being exercised.
func newTestDecoder(b []byte) *xdr.Decoder { return xdr.NewDecoder(b) }

func writeOpaqueForTest(buf *bytes.Buffer, data []byte) error { return xdr.WriteOpaque(buf, data) }

func writeBoolForTest(buf *bytes.Buffer, v bool) error { return xdr.WriteBool(buf, v) }

func writeU32ForTest(buf *bytes.Buffer, v uint32) error { return xdr.WriteUint32(buf, v) }
