package rpc

import "bytes"

// replyPrefix writes xid, msg_type=REPLY, reply_stat=MsgAccepted, and a null
// AUTH_NONE verifier -- the common prefix of every accepted reply regardless
// of accept_stat.
func replyPrefix(buf *bytes.Buffer, xid uint32) {
	_ = writeU32(buf, xid)
	_ = writeU32(buf, MsgReply)
	_ = writeU32(buf, MsgAccepted)
	_ = writeU32(buf, AuthNone) // verf flavor
	_ = writeU32(buf, 0)        // verf length
}

func writeU32(buf *bytes.Buffer, v uint32) error {
	b := [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	_, err := buf.Write(b[:])
	return err
}

// EncodeSuccessReply builds a full MSG_ACCEPTED/SUCCESS reply, with result
// appended verbatim as the procedure-specific response bytes.
func EncodeSuccessReply(xid uint32, result []byte) []byte {
	var buf bytes.Buffer
	replyPrefix(&buf, xid)
	_ = writeU32(&buf, Success)
	buf.Write(result)
	return buf.Bytes()
}

// EncodeProgUnavailReply builds a MSG_ACCEPTED/PROG_UNAVAIL reply: the
// requested program number is not one this server registers.
func EncodeProgUnavailReply(xid uint32) []byte {
	var buf bytes.Buffer
	replyPrefix(&buf, xid)
	_ = writeU32(&buf, ProgUnavail)
	return buf.Bytes()
}

// EncodeProgMismatchReply builds a MSG_ACCEPTED/PROG_MISMATCH reply carrying
// the [low, high] range of versions this server supports for the program.
func EncodeProgMismatchReply(xid, low, high uint32) []byte {
	var buf bytes.Buffer
	replyPrefix(&buf, xid)
	_ = writeU32(&buf, ProgMismatch)
	_ = writeU32(&buf, low)
	_ = writeU32(&buf, high)
	return buf.Bytes()
}

// EncodeProcUnavailReply builds a MSG_ACCEPTED/PROC_UNAVAIL reply: the
// program/version pair is known but the procedure number is not.
func EncodeProcUnavailReply(xid uint32) []byte {
	var buf bytes.Buffer
	replyPrefix(&buf, xid)
	_ = writeU32(&buf, ProcUnavail)
	return buf.Bytes()
}

// EncodeGarbageArgsReply builds a MSG_ACCEPTED/GARBAGE_ARGS reply: the
// procedure's arguments could not be decoded.
func EncodeGarbageArgsReply(xid uint32) []byte {
	var buf bytes.Buffer
	replyPrefix(&buf, xid)
	_ = writeU32(&buf, GarbageArgs)
	return buf.Bytes()
}

// EncodeSystemErrReply builds a MSG_ACCEPTED/SYSTEM_ERR reply: a handler
// failed for a reason unrelated to the client's request (e.g. an FSAL I/O
// failure not representable as an nfsstat3). Handler panics are not
// recovered.
func EncodeSystemErrReply(xid uint32) []byte {
	var buf bytes.Buffer
	replyPrefix(&buf, xid)
	_ = writeU32(&buf, SystemErr)
	return buf.Bytes()
}

// EncodeRPCMismatchReply builds a MSG_DENIED/RPC_MISMATCH reply for a CALL
// whose rpcvers was not 2, carrying the [low, high] range this server speaks
// (2, 2).
func EncodeRPCMismatchReply(xid uint32) []byte {
	var buf bytes.Buffer
	_ = writeU32(&buf, xid)
	_ = writeU32(&buf, MsgReply)
	_ = writeU32(&buf, MsgDenied)
	_ = writeU32(&buf, RejectRPCMismatch)
	_ = writeU32(&buf, RPCVersion)
	_ = writeU32(&buf, RPCVersion)
	return buf.Bytes()
}
