// Package config loads the server configuration.
//
// Configuration sources, in order of precedence:
//  1. CLI flags (bound by the command layer)
//  2. Environment variables (NFSD_*)
//  3. Configuration file (YAML)
//  4. Default values
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server holds the TCP service settings.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Export configures the directory tree served over NFS.
	Export ExportConfig `mapstructure:"export" yaml:"export"`

	// Metrics contains the Prometheus endpoint configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is DEBUG, INFO, WARN, or ERROR.
	Level string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR" yaml:"level"`

	// Format is text or json.
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json" yaml:"format"`

	// Output is stdout, stderr, or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// ServerConfig holds the TCP service settings.
type ServerConfig struct {
	// BindAddress is the host:port the multiplexed listener binds. All three
	// programs (portmap, MOUNT, NFS) answer on this one port.
	BindAddress string `mapstructure:"bind_address" validate:"required,hostname_port" yaml:"bind_address"`

	// MaxRecordSize caps a reassembled RPC record's total size in bytes.
	// Connections sending larger records are closed.
	MaxRecordSize uint32 `mapstructure:"max_record_size" validate:"required,gt=0" yaml:"max_record_size"`

	// ShutdownTimeout is defaulted and validated here, but the serve command
	// does not pass it to the server: shutdown waits for in-flight requests
	// without a time limit.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// ExportConfig configures the served directory tree.
type ExportConfig struct {
	// Root is the absolute directory exported by the POSIX backend. The
	// server refuses to start if it is missing or not a directory.
	Root string `mapstructure:"root" validate:"required" yaml:"root"`

	// ExportsFile is an optional YAML exports table gating MOUNT requests.
	// When empty, "/" is exported to every client.
	ExportsFile string `mapstructure:"exports_file" yaml:"exports_file"`
}

// MetricsConfig contains the Prometheus endpoint configuration.
type MetricsConfig struct {
	// Enabled turns the /metrics HTTP endpoint on.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// BindAddress is the host:port the metrics endpoint binds.
	BindAddress string `mapstructure:"bind_address" validate:"omitempty,hostname_port" yaml:"bind_address"`
}

// Load reads configuration from the given file path (optional; empty means
// "defaults and environment only"), applies NFSD_* environment overrides,
// and fills defaults. Validation is separate (Validate) so callers can layer
// CLI flags on top of the loaded values first.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("NFSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Validate checks cfg against its struct validation tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}
	return nil
}
