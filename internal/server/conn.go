package server

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/google/uuid"

	"github.com/kestrelfs/nfsd/internal/logger"
	"github.com/kestrelfs/nfsd/internal/rpc"
)

// handleConn serves one client connection: read a record, handle the call,
// write the reply, repeat. Requests on one connection are strictly serial;
// clients wanting parallelism open more connections.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	// Closing the connection on shutdown unblocks a pending ReadRecord, so a
	// connection goroutine exits after its in-flight request instead of
	// waiting for the client to disconnect.
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		select {
		case <-s.shutdown:
			_ = conn.Close()
		case <-connDone:
		}
	}()

	s.metrics.ConnectionOpened()
	defer s.metrics.ConnectionClosed()

	clientAddr := conn.RemoteAddr().String()
	connID := uuid.NewString()
	logger.Debug("connection opened", logger.KeyConnID, connID, logger.KeyClientIP, clientAddr)
	defer logger.Debug("connection closed", logger.KeyConnID, connID, logger.KeyClientIP, clientAddr)

	for {
		record, err := rpc.ReadRecord(conn, s.config.MaxRecordSize)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
			case errors.Is(err, rpc.ErrRecordTooLarge):
				logger.Warn("record too large, closing connection",
					logger.KeyConnID, connID, logger.KeyClientIP, clientAddr)
			default:
				logger.Debug("read record failed",
					logger.KeyConnID, connID, logger.KeyClientIP, clientAddr, logger.KeyError, err)
			}
			return
		}

		reply, ok := s.handleRecord(ctx, record, clientAddr)
		if !ok {
			return
		}
		if reply == nil {
			continue
		}

		if err := rpc.WriteRecord(conn, reply); err != nil {
			logger.Debug("write reply failed",
				logger.KeyConnID, connID, logger.KeyClientIP, clientAddr, logger.KeyError, err)
			return
		}
	}
}

// handleRecord parses one record's CALL envelope and dispatches it. The
// second return is false when the connection must be closed (unparsable
// envelope); a nil reply with ok=true means "ignore this record" (a stray
// REPLY message, which a client should never send).
func (s *Server) handleRecord(ctx context.Context, record []byte, clientAddr string) ([]byte, bool) {
	call, err := rpc.ParseCall(record)
	if err != nil {
		switch {
		case errors.Is(err, rpc.ErrRPCVersionMismatch):
			return rpc.EncodeRPCMismatchReply(call.XID), true
		case errors.Is(err, rpc.ErrNotACall):
			logger.Debug("dropping non-CALL message", logger.KeyClientIP, clientAddr)
			return nil, true
		default:
			logger.Warn("unparsable RPC message, closing connection",
				logger.KeyClientIP, clientAddr, logger.KeyError, err)
			return nil, false
		}
	}

	return s.dispatch(ctx, call, clientAddr), true
}
