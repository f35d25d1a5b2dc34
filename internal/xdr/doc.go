// Package xdr provides generic XDR (External Data Representation) encoding and
// decoding utilities per RFC 4506.
//
// XDR is the wire format used by every ONC-RPC protocol this server speaks:
// Portmapper, MOUNT, and NFSv3. Key characteristics:
//   - Big-endian byte order for all multi-byte integers.
//   - 4-byte alignment for every encoded value.
//   - Variable-length data (opaque, string, array) is preceded by a 4-byte
//     length and padded with zero bytes to the next 4-byte boundary.
//
// This package has no dependencies on any other package in this module: it
// knows nothing about RPC envelopes, NFS procedures, or file handles.
package xdr
