package xdr

import "errors"

// ErrShortBuffer is returned when the decoder runs out of bytes mid-value.
var ErrShortBuffer = errors.New("xdr: short buffer")

// ErrBudgetExceeded is returned when a length prefix (opaque, string, array)
// would require reading past the budget passed to NewDecoder -- typically the
// remaining bytes of the enclosing RPC record. This is distinct from
// ErrShortBuffer: the stream might still have bytes, but honoring the length
// would read into a different message or past the record boundary.
var ErrBudgetExceeded = errors.New("xdr: length exceeds budget")

// ErrBadEnum is returned when a decoded enum value is not one of the values
// the caller declared as valid.
var ErrBadEnum = errors.New("xdr: bad enum value")
