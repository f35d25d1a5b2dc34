package portmap

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeMapping(m Mapping) []byte {
	var buf bytes.Buffer
	be := func(v uint32) { _ = binary.Write(&buf, binary.BigEndian, v) }
	be(m.Prog)
	be(m.Vers)
	be(m.Prot)
	be(m.Port)
	return buf.Bytes()
}

func TestRegistrySetGetport(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Set(Mapping{Prog: ProgramNFS, Vers: 3, Prot: ProtoTCP, Port: 2049}))
	assert.Equal(t, uint32(2049), r.Getport(ProgramNFS, 3, ProtoTCP))

	// Unregistered tuples report 0.
	assert.Zero(t, r.Getport(ProgramNFS, 3, ProtoUDP))
	assert.Zero(t, r.Getport(ProgramMount, 3, ProtoTCP))

	// SET overwrites.
	assert.True(t, r.Set(Mapping{Prog: ProgramNFS, Vers: 3, Prot: ProtoTCP, Port: 12049}))
	assert.Equal(t, uint32(12049), r.Getport(ProgramNFS, 3, ProtoTCP))

	// Port 0 is invalid.
	assert.False(t, r.Set(Mapping{Prog: ProgramNFS, Vers: 3, Prot: ProtoTCP}))
}

func TestRegistryUnset(t *testing.T) {
	r := NewRegistry()
	r.Set(Mapping{Prog: ProgramMount, Vers: 3, Prot: ProtoTCP, Port: 2049})

	assert.True(t, r.Unset(ProgramMount, 3, ProtoTCP))
	assert.False(t, r.Unset(ProgramMount, 3, ProtoTCP), "second UNSET finds nothing")
	assert.Zero(t, r.Getport(ProgramMount, 3, ProtoTCP))
}

func TestRegistryDumpSorted(t *testing.T) {
	r := NewRegistry()
	r.Set(Mapping{Prog: ProgramMount, Vers: 3, Prot: ProtoTCP, Port: 2049})
	r.Set(Mapping{Prog: Program, Vers: 2, Prot: ProtoTCP, Port: 2049})
	r.Set(Mapping{Prog: ProgramNFS, Vers: 3, Prot: ProtoTCP, Port: 2049})

	dump := r.Dump()
	require.Len(t, dump, 3)
	assert.Equal(t, Program, dump[0].Prog)
	assert.Equal(t, ProgramNFS, dump[1].Prog)
	assert.Equal(t, ProgramMount, dump[2].Prog)
}

func TestProcGetportWire(t *testing.T) {
	r := NewRegistry()
	r.Set(Mapping{Prog: ProgramNFS, Vers: 3, Prot: ProtoTCP, Port: 2049})

	// GETPORT args carry port 0; only the key fields matter.
	args := encodeMapping(Mapping{Prog: ProgramNFS, Vers: 3, Prot: ProtoTCP})
	result, err := procGetport(r, args)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x08, 0x01}, result)
}

func TestProcSetUnsetWire(t *testing.T) {
	r := NewRegistry()

	result, err := procSet(r, encodeMapping(Mapping{Prog: 300019, Vers: 1, Prot: ProtoTCP, Port: 799}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, result)

	result, err = procUnset(r, encodeMapping(Mapping{Prog: 300019, Vers: 1, Prot: ProtoTCP}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, result)

	result, err = procUnset(r, encodeMapping(Mapping{Prog: 300019, Vers: 1, Prot: ProtoTCP}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, result)
}

func TestProcDumpWire(t *testing.T) {
	r := NewRegistry()

	// Empty registry: just the terminating false.
	result, err := procDump(r, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, result)

	r.Set(Mapping{Prog: ProgramNFS, Vers: 3, Prot: ProtoTCP, Port: 2049})
	result, err = procDump(r, nil)
	require.NoError(t, err)
	// true + 4 words + false
	require.Len(t, result, 4+16+4)
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(result[0:4]))
	assert.Equal(t, ProgramNFS, binary.BigEndian.Uint32(result[4:8]))
	assert.Equal(t, uint32(2049), binary.BigEndian.Uint32(result[16:20]))
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(result[20:24]))
}

func TestProcGarbageArgs(t *testing.T) {
	r := NewRegistry()
	for _, proc := range []Handler{procSet, procUnset, procGetport} {
		_, err := proc(r, []byte{0x01, 0x02})
		assert.ErrorIs(t, err, ErrGarbageArgs)
	}
}
