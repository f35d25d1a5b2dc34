package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kestrelfs/nfsd/internal/exports"
	"github.com/kestrelfs/nfsd/internal/fsal/posix"
	"github.com/kestrelfs/nfsd/internal/handledir"
	"github.com/kestrelfs/nfsd/internal/logger"
	"github.com/kestrelfs/nfsd/internal/mountd"
	"github.com/kestrelfs/nfsd/internal/nfs3handlers"
	"github.com/kestrelfs/nfsd/internal/portmap"
	"github.com/kestrelfs/nfsd/internal/server"
	"github.com/kestrelfs/nfsd/pkg/config"
	"github.com/kestrelfs/nfsd/pkg/metrics"
	promimpl "github.com/kestrelfs/nfsd/pkg/metrics/prometheus"
)

var (
	bindAddress string
	exportRoot  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the NFS server",
	Long: `Start the NFS server: bind the multiplexed TCP listener, register the
portmap, MOUNT, and NFS programs, and serve until interrupted.

Examples:
  # Serve /srv/export on the default port 2049
  nfsd serve --export /srv/export

  # Custom bind address and config file
  nfsd serve --config /etc/nfsd/config.yaml --bind 0.0.0.0:12049

  # Environment variable overrides
  NFSD_LOGGING_LEVEL=DEBUG nfsd serve --export /srv/export`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&bindAddress, "bind", "", "listen address (host:port)")
	serveCmd.Flags().StringVar(&exportRoot, "export", "", "directory to export")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	backend, err := posix.New(cfg.Export.Root)
	if err != nil {
		logger.Error("export root unusable", logger.KeyError, err)
		return err
	}

	table := exports.Default()
	if cfg.Export.ExportsFile != "" {
		table, err = exports.Load(cfg.Export.ExportsFile)
		if err != nil {
			logger.Error("exports file unusable", logger.KeyError, err)
			os.Exit(2)
		}
	}

	handles := handledir.New()
	root, err := backend.RootHandle(ctx)
	if err != nil {
		return err
	}
	handles.Allocate(backend.Path(root))

	var writeVerf [8]byte
	if _, err := rand.Read(writeVerf[:]); err != nil {
		return fmt.Errorf("generate write verifier: %w", err)
	}

	var rpcMetrics metrics.RPCMetrics
	if cfg.Metrics.Enabled {
		reg := promclient.NewRegistry()
		rpcMetrics = promimpl.NewRPCMetrics(reg)
		promimpl.Serve(ctx, cfg.Metrics.BindAddress, reg)
	}

	registry := portmap.NewRegistry()
	mountServer := &mountd.Server{Handles: handles, Backend: backend, Exports: table}
	nfsServer := &nfs3handlers.Server{Handles: handles, Backend: backend, WriteVerf: writeVerf, Metrics: rpcMetrics}

	srv := server.New(server.Config{
		BindAddress:   cfg.Server.BindAddress,
		MaxRecordSize: cfg.Server.MaxRecordSize,
	}, registry, mountServer, nfsServer, rpcMetrics)

	logger.Info("starting nfsd",
		"version", Version,
		"export", cfg.Export.Root,
		"bind", cfg.Server.BindAddress)

	if err := srv.Serve(ctx); err != nil {
		logger.Error("server failed", logger.KeyError, err)
		return err
	}
	logger.Info("server stopped")
	return nil
}

// loadServeConfig loads the file/env configuration, layers the serve
// command's flags on top (flags winning), then validates the result.
func loadServeConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if bindAddress != "" {
		cfg.Server.BindAddress = bindAddress
	}
	if exportRoot != "" {
		cfg.Export.Root = exportRoot
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
