package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, DefaultBindAddress, cfg.Server.BindAddress)
	assert.Equal(t, uint32(DefaultMaxRecordSize), cfg.Server.MaxRecordSize)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DefaultMetricsAddress, cfg.Metrics.BindAddress)
	assert.Empty(t, cfg.Export.Root, "the export root has no default")
}

func TestValidateRequiresExportRoot(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	assert.Error(t, Validate(&cfg))

	cfg.Export.Root = "/srv/export"
	assert.NoError(t, Validate(&cfg))
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		var cfg Config
		ApplyDefaults(&cfg)
		cfg.Export.Root = "/srv/export"
		return &cfg
	}

	cfg := base()
	cfg.Logging.Level = "LOUD"
	assert.Error(t, Validate(cfg))

	cfg = base()
	cfg.Logging.Format = "xml"
	assert.Error(t, Validate(cfg))

	cfg = base()
	cfg.Server.BindAddress = "not an address"
	assert.Error(t, Validate(cfg))

	cfg = base()
	cfg.Server.ShutdownTimeout = -time.Second
	assert.Error(t, Validate(cfg))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nfsd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: DEBUG
  format: json
server:
  bind_address: 127.0.0.1:12049
export:
  root: /srv/data
metrics:
  enabled: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1:12049", cfg.Server.BindAddress)
	assert.Equal(t, "/srv/data", cfg.Export.Root)
	assert.True(t, cfg.Metrics.Enabled)
	// Unspecified fields still receive defaults.
	assert.Equal(t, uint32(DefaultMaxRecordSize), cfg.Server.MaxRecordSize)
	assert.Equal(t, DefaultMetricsAddress, cfg.Metrics.BindAddress)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBindAddress, cfg.Server.BindAddress)
}
