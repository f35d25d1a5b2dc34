// Package server runs the multiplexed RPC service: one TCP listener on which
// the portmapper, MOUNT, and NFS programs all answer, one long-lived
// goroutine per accepted connection, and in-order request handling within
// each connection.
package server

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/kestrelfs/nfsd/internal/logger"
	"github.com/kestrelfs/nfsd/internal/mountd"
	"github.com/kestrelfs/nfsd/internal/nfs3handlers"
	"github.com/kestrelfs/nfsd/internal/portmap"
	"github.com/kestrelfs/nfsd/internal/rpc"
	"github.com/kestrelfs/nfsd/pkg/metrics"
)

// Config holds the server's transport settings.
type Config struct {
	// BindAddress is the host:port the listener binds.
	BindAddress string

	// MaxRecordSize caps a reassembled RPC record's total size.
	MaxRecordSize uint32
}

// Server is the multiplexed RPC service. All fields are set before Serve and
// never mutated afterwards; per-connection state lives on each connection's
// goroutine stack.
type Server struct {
	config   Config
	registry *portmap.Registry
	mount    *mountd.Server
	nfs      *nfs3handlers.Server
	metrics  metrics.RPCMetrics

	listener     net.Listener
	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// New assembles a Server from its collaborators. metrics may be nil to
// disable collection.
func New(cfg Config, registry *portmap.Registry, mount *mountd.Server, nfs *nfs3handlers.Server, m metrics.RPCMetrics) *Server {
	if cfg.MaxRecordSize == 0 {
		cfg.MaxRecordSize = rpc.DefaultMaxRecordSize
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &Server{
		config:   cfg,
		registry: registry,
		mount:    mount,
		nfs:      nfs,
		metrics:  m,
		shutdown: make(chan struct{}),
	}
}

// Serve binds the listener, installs the three program registrations in the
// portmap registry, and accepts connections until ctx is cancelled or Stop
// is called.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.BindAddress)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.config.BindAddress, err)
	}
	s.listener = listener

	port, err := listenerPort(listener)
	if err != nil {
		_ = listener.Close()
		return err
	}
	s.registerPrograms(port)

	logger.Info("server listening", "address", listener.Addr().String())

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.shutdown:
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				s.wg.Wait()
				return nil
			default:
				return fmt.Errorf("server: accept: %w", err)
			}
		}

		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			s.handleConn(ctx, c)
		}(conn)
	}
}

// Stop closes the listener; Serve returns once every connection goroutine
// has finished its in-flight request.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

// registerPrograms installs the three registrations, all pointing at the one
// multiplexed port.
func (s *Server) registerPrograms(port uint32) {
	for _, m := range []portmap.Mapping{
		{Prog: portmap.Program, Vers: portmap.Version, Prot: portmap.ProtoTCP, Port: port},
		{Prog: mountd.Program, Vers: mountd.Version, Prot: portmap.ProtoTCP, Port: port},
		{Prog: nfs3handlers.Program, Vers: nfs3handlers.Version, Prot: portmap.ProtoTCP, Port: port},
	} {
		s.registry.Set(m)
	}
}

func listenerPort(l net.Listener) (uint32, error) {
	_, portStr, err := net.SplitHostPort(l.Addr().String())
	if err != nil {
		return 0, fmt.Errorf("server: parse listener address: %w", err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("server: parse listener port: %w", err)
	}
	return uint32(port), nil
}
