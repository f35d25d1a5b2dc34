package posix

import "time"

// be32 reads a big-endian uint32 out of a 4-byte slice, used to interpret
// the EXCLUSIVE-create verifier stashed in a file's mtime (see Create).
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func unixTime(sec, nsec int64) time.Time {
	return time.Unix(sec, nsec)
}
