package rpc

import (
	"errors"
	"fmt"

	"github.com/kestrelfs/nfsd/internal/xdr"
)

// ErrNotACall is returned when a decoded message's msg_type is not MsgCall.
var ErrNotACall = errors.New("rpc: message is not a CALL")

// ErrRPCVersionMismatch is returned when a CALL's rpcvers field is not 2.
// Per RFC 5531 this must be answered with MSG_DENIED/RPC_MISMATCH, not simply
// dropped, so it is a distinct sentinel from a decode failure.
var ErrRPCVersionMismatch = errors.New("rpc: unsupported rpc version")

// opaqueAuth is the flavor+body pair carried by cred and verf (RFC 5531 §8.2).
type opaqueAuth struct {
	Flavor uint32
	Body   []byte
}

// CallMessage is a parsed ONC-RPC CALL envelope. Args holds the bytes that
// follow the envelope -- the XDR-encoded procedure-specific arguments --
// ready for a procedure handler to decode.
type CallMessage struct {
	XID       uint32
	Program   uint32
	Version   uint32
	Procedure uint32
	Cred      opaqueAuth
	Verf      opaqueAuth
	Args      []byte
}

// AuthFlavor returns the credential flavor presented with this call (AuthNone,
// AuthSys, or an unrecognized value the server treats as unauthenticated).
func (c *CallMessage) AuthFlavor() uint32 {
	return c.Cred.Flavor
}

// AuthBody returns the raw credential body, e.g. for AUTH_SYS parsing by
// ParseUnixAuth.
func (c *CallMessage) AuthBody() []byte {
	return c.Cred.Body
}

func decodeOpaqueAuth(d *xdr.Decoder) (opaqueAuth, error) {
	flavor, err := d.Uint32()
	if err != nil {
		return opaqueAuth{}, err
	}
	body, err := d.Opaque()
	if err != nil {
		return opaqueAuth{}, err
	}
	return opaqueAuth{Flavor: flavor, Body: body}, nil
}

// ParseCall decodes an ONC-RPC CALL envelope from a fully-reassembled record.
// Cred and verf are consumed dynamically via their own length fields -- never
// assume a fixed offset, since AUTH_SYS credentials are longer than AUTH_NONE.
//
// Returns ErrNotACall if msg_type is not MsgCall, or ErrRPCVersionMismatch if
// rpcvers is not 2 (both distinguished from a plain decode error because they
// dictate a specific REPLY rather than connection closure).
func ParseCall(record []byte) (*CallMessage, error) {
	d := xdr.NewDecoder(record)

	xid, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("rpc: decode xid: %w", err)
	}
	msgType, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("rpc: decode msg_type: %w", err)
	}
	if msgType != MsgCall {
		return nil, ErrNotACall
	}
	rpcvers, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("rpc: decode rpcvers: %w", err)
	}
	if rpcvers != RPCVersion {
		return &CallMessage{XID: xid}, ErrRPCVersionMismatch
	}
	program, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("rpc: decode program: %w", err)
	}
	version, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("rpc: decode version: %w", err)
	}
	procedure, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("rpc: decode procedure: %w", err)
	}
	cred, err := decodeOpaqueAuth(d)
	if err != nil {
		return nil, fmt.Errorf("rpc: decode cred: %w", err)
	}
	verf, err := decodeOpaqueAuth(d)
	if err != nil {
		return nil, fmt.Errorf("rpc: decode verf: %w", err)
	}

	return &CallMessage{
		XID:       xid,
		Program:   program,
		Version:   version,
		Procedure: procedure,
		Cred:      cred,
		Verf:      verf,
		Args:      d.Rest(),
	}, nil
}
