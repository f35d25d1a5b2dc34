package portmap

import (
	"bytes"
	"errors"

	"github.com/kestrelfs/nfsd/internal/xdr"
)

// ErrGarbageArgs signals that a procedure's arguments could not be decoded;
// the dispatcher answers GARBAGE_ARGS without touching the registry.
var ErrGarbageArgs = errors.New("portmap: garbage arguments")

// Handler is the signature every portmap procedure implements: decode its
// arguments from args, consult or mutate the registry, and return the
// encoded procedure result.
type Handler func(r *Registry, args []byte) ([]byte, error)

// Table is the static portmap procedure table. CALLIT (5) is deliberately
// missing, so the dispatcher answers it PROC_UNAVAIL.
var Table = map[uint32]Handler{
	ProcNull:    procNull,
	ProcSet:     procSet,
	ProcUnset:   procUnset,
	ProcGetport: procGetport,
	ProcDump:    procDump,
}

// decodeMapping reads the XDR mapping struct carried by SET/UNSET/GETPORT
// arguments (RFC 1833 §3.3): four unsigned integers.
func decodeMapping(args []byte) (Mapping, error) {
	d := xdr.NewDecoder(args)
	var m Mapping
	var err error
	if m.Prog, err = d.Uint32(); err != nil {
		return m, err
	}
	if m.Vers, err = d.Uint32(); err != nil {
		return m, err
	}
	if m.Prot, err = d.Uint32(); err != nil {
		return m, err
	}
	if m.Port, err = d.Uint32(); err != nil {
		return m, err
	}
	return m, nil
}

func encodeBool(v bool) []byte {
	var buf bytes.Buffer
	_ = xdr.WriteBool(&buf, v)
	return buf.Bytes()
}

// procNull implements PMAPPROC_NULL: void in, void out.
func procNull(r *Registry, args []byte) ([]byte, error) {
	return nil, nil
}

// procSet implements PMAPPROC_SET: mapping -> bool.
func procSet(r *Registry, args []byte) ([]byte, error) {
	m, err := decodeMapping(args)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	return encodeBool(r.Set(m)), nil
}

// procUnset implements PMAPPROC_UNSET: mapping -> bool. Only the key fields
// of the argument are consulted.
func procUnset(r *Registry, args []byte) ([]byte, error) {
	m, err := decodeMapping(args)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	return encodeBool(r.Unset(m.Prog, m.Vers, m.Prot)), nil
}

// procGetport implements PMAPPROC_GETPORT: mapping -> port, 0 when nothing
// is registered for the key.
func procGetport(r *Registry, args []byte) ([]byte, error) {
	m, err := decodeMapping(args)
	if err != nil {
		return nil, ErrGarbageArgs
	}
	var buf bytes.Buffer
	_ = xdr.WriteUint32(&buf, r.Getport(m.Prog, m.Vers, m.Prot))
	return buf.Bytes(), nil
}

// procDump implements PMAPPROC_DUMP: void -> pmaplist. The result is the
// XDR optional-data chain: boolean true before each mapping, boolean false
// after the last.
func procDump(r *Registry, args []byte) ([]byte, error) {
	var buf bytes.Buffer
	for _, m := range r.Dump() {
		_ = xdr.WriteBool(&buf, true)
		_ = xdr.WriteUint32(&buf, m.Prog)
		_ = xdr.WriteUint32(&buf, m.Vers)
		_ = xdr.WriteUint32(&buf, m.Prot)
		_ = xdr.WriteUint32(&buf, m.Port)
	}
	_ = xdr.WriteBool(&buf, false)
	return buf.Bytes(), nil
}

// procNames maps procedure numbers to their RFC 1833 names for logging and
// metrics labels.
var procNames = map[uint32]string{
	ProcNull:    "NULL",
	ProcSet:     "SET",
	ProcUnset:   "UNSET",
	ProcGetport: "GETPORT",
	ProcDump:    "DUMP",
	ProcCallit:  "CALLIT",
}

// ProcName returns the printable name of a portmap procedure number.
func ProcName(proc uint32) string {
	if name, ok := procNames[proc]; ok {
		return name
	}
	return "UNKNOWN"
}
