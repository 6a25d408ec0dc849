// Package config provides configuration management for the sluice daemon.
//
// Values come from four layers, highest precedence first: explicit command
// line flags, SLUICE_* environment variables, an optional YAML config file
// (--config), and flag defaults. Flag names double as config file keys, so
// `--max-wait 2s` and `max-wait: 2s` mean the same thing.
//
// The proxy daemon and the `backend` subcommand each have their own
// configuration struct; both are loaded through Load.
package config

import (
	"fmt"
	"strings"
	"time"

	configDefaults "github.com/concave-dev/sluice/internal/config"
	"github.com/concave-dev/sluice/internal/scheduler"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigField represents a configuration field that can be explicitly set
type ConfigField int

const (
	// Configuration field identifiers
	APIAddrField ConfigField = iota
	LogFileField
)

// Backend modes
const (
	BackendHTTP      = "http"
	BackendSimulated = "simulated"
)

const (
	DefaultAPI         = configDefaults.DefaultBindAddr + ":8000" // Default proxy address
	DefaultBackendBind = configDefaults.DefaultBindAddr + ":8001" // Default simulated server address
	DefaultLogLevel    = configDefaults.DefaultLogLevel           // Default log level
	DefaultShutdown    = 10 * time.Second                         // Default graceful shutdown bound
)

// Config holds the proxy daemon configuration
type Config struct {
	APIAddr string `mapstructure:"api"` // Proxy listen address, host:port
	APIPort int    `mapstructure:"-"`   // Derived from APIAddr during validation

	Backend        string        `mapstructure:"backend"`         // http or simulated
	BackendURL     string        `mapstructure:"backend-url"`     // Classification server for http mode
	BackendRetries int           `mapstructure:"backend-retries"` // Busy (429) retries in http mode
	CostUnit       time.Duration `mapstructure:"cost-unit"`       // Simulated mode cost unit
	Labeler        string        `mapstructure:"labeler"`         // Simulated mode labeler
	Seed           int64         `mapstructure:"seed"`            // Simulated mode RNG seed, 0 = random

	MaxWait         time.Duration `mapstructure:"max-wait"`
	MaxQueueDepth   int           `mapstructure:"max-queue-depth"`
	BackendTimeout  time.Duration `mapstructure:"backend-timeout"`
	SimilarityRatio float64       `mapstructure:"similarity-ratio"`
	MinSpread       int           `mapstructure:"min-spread"`
	Linger          time.Duration `mapstructure:"linger"`
	LargeLength     int           `mapstructure:"large-length"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	LogLevel        string        `mapstructure:"log-level"` // DEBUG, INFO, WARN, ERROR
	LogFile         string        `mapstructure:"log-file"`  // Write all logs here instead of stdout/stderr
	ConfigFile      string        `mapstructure:"config"`    // Optional YAML config file

	// Flags to track if values were explicitly set by user
	apiAddrExplicitlySet bool
	logFileExplicitlySet bool
}

// BackendConfig holds the `sluiced backend` configuration
type BackendConfig struct {
	Bind     string        `mapstructure:"bind"`
	BindAddr string        `mapstructure:"-"`
	BindPort int           `mapstructure:"-"`
	CostUnit time.Duration `mapstructure:"cost-unit"`
	Labeler  string        `mapstructure:"labeler"`
	Seed     int64         `mapstructure:"seed"`
	LogLevel string        `mapstructure:"log-level"`
}

// Global configuration instances
var (
	Global  Config
	Backend BackendConfig
)

// SetExplicitlySet marks a configuration field as explicitly set by the user.
func (c *Config) SetExplicitlySet(field ConfigField, value bool) {
	switch field {
	case APIAddrField:
		c.apiAddrExplicitlySet = value
	case LogFileField:
		c.logFileExplicitlySet = value
	}
}

// IsExplicitlySet returns whether a configuration field was explicitly set by the user.
func (c *Config) IsExplicitlySet(field ConfigField) bool {
	switch field {
	case APIAddrField:
		return c.apiAddrExplicitlySet
	case LogFileField:
		return c.logFileExplicitlySet
	}
	return false
}

// SchedulerConfig converts the daemon flags into a scheduler configuration.
func (c *Config) SchedulerConfig() *scheduler.Config {
	cfg := scheduler.DefaultConfig()
	cfg.MaxWait = c.MaxWait
	cfg.MaxQueueDepth = c.MaxQueueDepth
	cfg.BackendTimeout = c.BackendTimeout
	cfg.SimilarityRatio = c.SimilarityRatio
	cfg.MinSpread = c.MinSpread
	cfg.Linger = c.Linger
	cfg.LargeLength = c.LargeLength
	return cfg
}

// Load merges config file, environment and flag values into out, which must
// be a pointer to a struct with mapstructure tags named after the flags.
func Load(flags *pflag.FlagSet, configFile string, out any) error {
	v := viper.New()

	v.SetEnvPrefix(configDefaults.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	return nil
}
