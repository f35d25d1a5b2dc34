package nfs3

import "errors"

// ErrBadHandleLength is returned while decoding a file handle whose length
// prefix is zero or exceeds MaxHandleSize. The caller maps this to
// GARBAGE_ARGS rather than a procedure-level status, since the argument
// never decoded far enough to know which handle was meant.
var ErrBadHandleLength = errors.New("nfs3: invalid file handle length")

// ErrBadVerifierLength reports a verifier whose opaque field is not exactly 8
// bytes. The decoders in this package read verifiers as fixed 8-byte fields
// and report a truncated one as xdr.ErrShortBuffer, so none of them returns
// this error.
var ErrBadVerifierLength = errors.New("nfs3: invalid verifier length")
