package handledir

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateIdempotent(t *testing.T) {
	d := New()
	h1 := d.Allocate("/export/a")
	h2 := d.Allocate("/export/a")
	assert.Equal(t, h1, h2, "same path must yield byte-identical handles")

	h3 := d.Allocate("/export/b")
	assert.NotEqual(t, h1, h3)
}

func TestHandleLayout(t *testing.T) {
	d := New()
	h := d.Allocate("/export/a")

	// First 8 bytes: the monotonic id, starting at 1.
	assert.Equal(t, uint64(1), binary.BigEndian.Uint64(h[0:8]))
	// Bytes 8..16: path hash, non-zero for any real path.
	assert.NotZero(t, binary.BigEndian.Uint64(h[8:16]))
	// Remaining 16 bytes: zero.
	assert.Equal(t, make([]byte, 16), h[16:32])

	h2 := d.Allocate("/export/b")
	assert.Equal(t, uint64(2), binary.BigEndian.Uint64(h2[0:8]))
}

func TestResolveAndRemove(t *testing.T) {
	d := New()
	h := d.Allocate("/export/a")

	path, err := d.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, "/export/a", path)

	d.Remove(h)
	_, err = d.Resolve(h)
	assert.ErrorIs(t, err, ErrStale)

	// Removal is idempotent.
	d.Remove(h)

	// A fresh Allocate after removal gets a new id, not the old bytes.
	h2 := d.Allocate("/export/a")
	assert.NotEqual(t, h, h2)
}

func TestRemoveByPath(t *testing.T) {
	d := New()
	h := d.Allocate("/export/a")

	d.RemoveByPath("/export/a")
	_, err := d.Resolve(h)
	assert.ErrorIs(t, err, ErrStale)

	// Unknown paths are a no-op.
	d.RemoveByPath("/export/missing")
}

func TestRename(t *testing.T) {
	d := New()
	h := d.Allocate("/export/old")

	d.Rename("/export/old", "/export/new")

	path, err := d.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, "/export/new", path)

	// The new path resolves to the same handle on re-allocation.
	assert.Equal(t, h, d.Allocate("/export/new"))

	// The old path is free for a new object.
	h2 := d.Allocate("/export/old")
	assert.NotEqual(t, h, h2)
}

func TestConcurrentAllocateSamePath(t *testing.T) {
	d := New()
	const workers = 32

	handles := make([][32]byte, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = d.Allocate("/export/contended")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Equal(t, handles[0], handles[i],
			"racing allocators for one path must converge on one handle")
	}
}
