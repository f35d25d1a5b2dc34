package server

import (
	"context"
	"encoding/binary"
	"errors"
	"strconv"
	"time"

	"github.com/kestrelfs/nfsd/internal/logger"
	"github.com/kestrelfs/nfsd/internal/mountd"
	"github.com/kestrelfs/nfsd/internal/nfs3handlers"
	"github.com/kestrelfs/nfsd/internal/portmap"
	"github.com/kestrelfs/nfsd/internal/rpc"
)

// dispatch routes a parsed CALL to the right program's procedure table and
// wraps the procedure result in a full REPLY. Unknown programs get
// PROG_UNAVAIL, wrong versions PROG_MISMATCH (low = high = the supported
// version), unknown procedures PROC_UNAVAIL, and decode failures
// GARBAGE_ARGS. Handlers never panic the connection: any unexpected handler
// error becomes SYSTEM_ERR.
func (s *Server) dispatch(ctx context.Context, call *rpc.CallMessage, clientAddr string) []byte {
	switch call.Program {
	case portmap.Program:
		return s.dispatchPortmap(call, clientAddr)
	case mountd.Program:
		return s.dispatchMount(ctx, call, clientAddr)
	case nfs3handlers.Program:
		return s.dispatchNFS(ctx, call, clientAddr)
	default:
		logger.Debug("program unavailable",
			logger.KeyProgram, call.Program, logger.KeyClientIP, clientAddr)
		return rpc.EncodeProgUnavailReply(call.XID)
	}
}

func (s *Server) dispatchPortmap(call *rpc.CallMessage, clientAddr string) []byte {
	if call.Version != portmap.Version {
		return rpc.EncodeProgMismatchReply(call.XID, portmap.Version, portmap.Version)
	}
	handler, ok := portmap.Table[call.Procedure]
	if !ok {
		return rpc.EncodeProcUnavailReply(call.XID)
	}

	start := time.Now()
	result, err := handler(s.registry, call.Args)
	// Portmap results are not status-led (a GETPORT result is a port, not a
	// status word), so only success/failure is recorded.
	s.record("portmap", portmap.ProcName(call.Procedure), start, nil, err)

	if err != nil {
		if errors.Is(err, portmap.ErrGarbageArgs) {
			return rpc.EncodeGarbageArgsReply(call.XID)
		}
		logger.Error("portmap handler failed",
			logger.KeyProcedure, portmap.ProcName(call.Procedure), logger.KeyError, err)
		return rpc.EncodeSystemErrReply(call.XID)
	}
	return rpc.EncodeSuccessReply(call.XID, result)
}

func (s *Server) dispatchMount(ctx context.Context, call *rpc.CallMessage, clientAddr string) []byte {
	if call.Version != mountd.Version {
		return rpc.EncodeProgMismatchReply(call.XID, mountd.Version, mountd.Version)
	}
	handler, ok := mountd.Table[call.Procedure]
	if !ok {
		return rpc.EncodeProcUnavailReply(call.XID)
	}

	mctx := &mountd.Context{
		Context:    ctx,
		ClientAddr: clientAddr,
		AuthFlavor: call.AuthFlavor(),
	}

	start := time.Now()
	result, err := handler(s.mount, mctx, call.Args)
	// Only MNT's result is status-led; DUMP/EXPORT open with a list
	// discriminator and the rest are void.
	statusLed := result
	if call.Procedure != mountd.ProcMnt {
		statusLed = nil
	}
	s.record("mount", mountd.ProcName(call.Procedure), start, statusLed, err)

	if err != nil {
		if errors.Is(err, mountd.ErrGarbageArgs) {
			return rpc.EncodeGarbageArgsReply(call.XID)
		}
		logger.Error("mount handler failed",
			logger.KeyProcedure, mountd.ProcName(call.Procedure), logger.KeyError, err)
		return rpc.EncodeSystemErrReply(call.XID)
	}
	return rpc.EncodeSuccessReply(call.XID, result)
}

func (s *Server) dispatchNFS(ctx context.Context, call *rpc.CallMessage, clientAddr string) []byte {
	if call.Version != nfs3handlers.Version {
		return rpc.EncodeProgMismatchReply(call.XID, nfs3handlers.Version, nfs3handlers.Version)
	}
	handler, ok := nfs3handlers.Table[call.Procedure]
	if !ok {
		return rpc.EncodeProcUnavailReply(call.XID)
	}

	lc := logger.NewLogContext(clientAddr)
	lc.XID = call.XID
	lc.Procedure = nfs3handlers.ProcName(call.Procedure)
	lc.AuthFlavor = call.AuthFlavor()

	rctx := &nfs3handlers.RequestContext{
		ClientAddr: clientAddr,
		XID:        call.XID,
		AuthFlavor: call.AuthFlavor(),
	}
	if call.AuthFlavor() == rpc.AuthSys {
		if cred, err := rpc.ParseUnixAuth(call.AuthBody()); err == nil {
			rctx.UID = cred.UID
			rctx.GID = cred.GID
			lc.UID = cred.UID
			lc.GID = cred.GID
		}
	}
	rctx.Context = logger.WithContext(ctx, lc)

	result, err := handler(s.nfs, rctx, call.Args)
	s.record("nfs", lc.Procedure, lc.StartTime, result, err)

	if err != nil {
		if errors.Is(err, nfs3handlers.ErrGarbageArgs) {
			return rpc.EncodeGarbageArgsReply(call.XID)
		}
		logger.Error("nfs handler failed", append(lc.Fields(), logger.KeyError, err)...)
		return rpc.EncodeSystemErrReply(call.XID)
	}
	return rpc.EncodeSuccessReply(call.XID, result)
}

// record feeds one completed procedure call into the metrics sink. The
// status label is the leading status word of the procedure result ("OK" for
// 0 or for void results), or "ERR" when the handler failed outright.
func (s *Server) record(program, procedure string, start time.Time, result []byte, err error) {
	status := "OK"
	switch {
	case err != nil:
		status = "ERR"
	case len(result) >= 4:
		if code := binary.BigEndian.Uint32(result[:4]); code != 0 {
			status = strconv.FormatUint(uint64(code), 10)
		}
	}
	s.metrics.RecordRequest(program, procedure, time.Since(start), status)
}
