package logger

// Standard field keys for structured logging. Use these consistently across
// log statements so aggregation and querying see one schema.
const (
	// RPC envelope
	KeyXID       = "xid"       // RPC transaction id
	KeyProgram   = "program"   // RPC program number
	KeyProcedure = "procedure" // procedure name: READ, WRITE, MNT, GETPORT, ...
	KeyStatus    = "status"    // procedure status code

	// File system operations
	KeyPath     = "path"     // export-relative or wire path
	KeyFilename = "filename" // file or directory name
	KeyHandle   = "handle"   // opaque file handle, hex

	// I/O
	KeyOffset       = "offset"
	KeyCount        = "count"
	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"

	// Client identification
	KeyClientIP = "client_ip"
	KeyConnID   = "conn_id"
	KeyUID      = "uid"
	KeyGID      = "gid"
	KeyAuth     = "auth"

	// Timing
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)
