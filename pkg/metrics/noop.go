package metrics

import "time"

// Noop is the disabled implementation of RPCMetrics: every method is a
// no-op. Used wherever a caller was handed a nil metrics dependency, so call
// sites never branch on enablement.
type Noop struct{}

func (Noop) RecordRequest(program, procedure string, duration time.Duration, status string) {}
func (Noop) ConnectionOpened()                                                              {}
func (Noop) ConnectionClosed()                                                              {}
func (Noop) RecordBytes(direction string, n uint64)                                         {}
