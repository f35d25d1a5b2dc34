// Package metrics defines the observability interfaces the server core
// reports into. Implementations live in subpackages; every interface is
// optional -- pass nil to disable collection with zero overhead.
package metrics

import "time"

// RPCMetrics provides observability for the RPC service loop.
//
// All methods must be safe for concurrent use and nil-receiver safe, so call
// sites never need an enabled check.
type RPCMetrics interface {
	// RecordRequest records a completed RPC with its program name, procedure
	// name, handling duration, and outcome status ("OK", "ERR" when the
	// handler failed outright, or a non-zero nfsstat3/mountstat3 code in
	// decimal).
	RecordRequest(program, procedure string, duration time.Duration, status string)

	// ConnectionOpened increments the active-connection gauge.
	ConnectionOpened()

	// ConnectionClosed decrements the active-connection gauge.
	ConnectionClosed()

	// RecordBytes records payload bytes moved through READ ("read") or
	// WRITE ("write") procedures.
	RecordBytes(direction string, n uint64)
}
