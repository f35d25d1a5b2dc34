package mountd

import (
	"bytes"

	internalxdr "github.com/kestrelfs/nfsd/internal/xdr"
)

// procDump implements MOUNTPROC3_DUMP: void -> mountlist. The result is the
// XDR optional-data chain of (hostname, directory) pairs, one per active
// mount record.
func procDump(s *Server, ctx *Context, args []byte) ([]byte, error) {
	var buf bytes.Buffer
	for _, m := range s.snapshotMounts() {
		_ = internalxdr.WriteBool(&buf, true)
		if err := internalxdr.WriteString(&buf, m.Hostname); err != nil {
			return nil, err
		}
		if err := internalxdr.WriteString(&buf, m.Path); err != nil {
			return nil, err
		}
	}
	_ = internalxdr.WriteBool(&buf, false)
	return buf.Bytes(), nil
}

// procExport implements MOUNTPROC3_EXPORT: void -> exportlist. Each export
// node carries the exported path and a nested optional-data chain of group
// names -- here, the export's client patterns.
func procExport(s *Server, ctx *Context, args []byte) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range s.Exports.Entries() {
		_ = internalxdr.WriteBool(&buf, true)
		if err := internalxdr.WriteString(&buf, e.Path); err != nil {
			return nil, err
		}
		for _, group := range e.Clients {
			_ = internalxdr.WriteBool(&buf, true)
			if err := internalxdr.WriteString(&buf, group); err != nil {
				return nil, err
			}
		}
		_ = internalxdr.WriteBool(&buf, false) // end of groups
	}
	_ = internalxdr.WriteBool(&buf, false) // end of exports
	return buf.Bytes(), nil
}
