package config

import (
	"strings"
	"time"
)

// Default values for unspecified configuration fields.
const (
	DefaultBindAddress     = "0.0.0.0:2049"
	DefaultMaxRecordSize   = 16 * 1024 * 1024 // 16 MiB
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMetricsAddress  = "127.0.0.1:9149"
)

// ApplyDefaults fills any zero-valued configuration fields with defaults.
// Explicitly configured values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyMetricsDefaults(&cfg.Metrics)

	// Export.Root has no default: the operator must name the directory to
	// serve, and validation fails if they do not.
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.BindAddress == "" {
		cfg.BindAddress = DefaultBindAddress
	}
	if cfg.MaxRecordSize == 0 {
		cfg.MaxRecordSize = DefaultMaxRecordSize
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.BindAddress == "" {
		cfg.BindAddress = DefaultMetricsAddress
	}
}
