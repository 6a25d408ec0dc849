// Package commands provides the CLI command structure for the sluice daemon.
//
// COMMAND ARCHITECTURE:
//   - Root command: runs the batching proxy (backend client, scheduler, HTTP API)
//   - backend: runs the simulated classification server the proxy can sit in front of
//
// Both commands share the same pipeline: parse flags, open the log file if
// requested, merge config file and environment through viper, validate, run.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/concave-dev/sluice/cmd/sluiced/config"
	"github.com/concave-dev/sluice/cmd/sluiced/daemon"
	"github.com/concave-dev/sluice/cmd/sluiced/utils"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/version"
	"github.com/spf13/cobra"
)

// Global variable to track log file handle for cleanup
var logFileHandle *os.File

// CleanupLogFile closes the log file handle if it exists
func CleanupLogFile() {
	if logFileHandle != nil {
		if err := logFileHandle.Close(); err != nil {
			// Use fmt.Fprintf instead of logging, the log file is going away
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
		logFileHandle = nil
	}
}

// Root command for the sluice daemon
var RootCmd = &cobra.Command{
	Use:   "sluiced",
	Short: "Size-aware batching proxy for a single-flight classification backend",
	Long: `sluice daemon (sluiced) accepts one string per request and batches strings
of similar length, at most five at a time, in front of a classification
backend that serves one request at a time and charges max_len² per batch.

Requests that cannot be queued fail fast with 429; no request waits longer
than --max-wait before it is sent in the next batch.`,
	Version:      version.SluicedVersion,
	SilenceUsage: true, // Don't show usage on errors
	Example: `  # Proxy in front of a classification server on the default port
  sluiced --backend-url=http://127.0.0.1:8001

  # Self-contained demo with an in-process simulated backend
  sluiced --backend=simulated --cost-unit=2ms

  # Tighter latency bound and a smaller queue
  sluiced --max-wait=500ms --max-queue-depth=200

  # Load settings from a file, override one from the environment
  SLUICE_MAX_WAIT=2s sluiced --config=/etc/sluice/sluiced.yaml`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.DisplayLogo(version.SluicedVersion)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		CheckExplicitFlags(cmd)

		if err := config.Load(cmd.Flags(), config.Global.ConfigFile, &config.Global); err != nil {
			return err
		}

		if config.Global.IsExplicitlySet(config.LogFileField) && config.Global.LogFile != "" {
			if err := openLogFile(config.Global.LogFile); err != nil {
				return err
			}
		}

		// Configure logging level as early as possible, then again after env
		// overrides so DEBUG=true is honoured
		logging.SetLevel(config.Global.LogLevel)
		config.InitializeConfig()
		logging.SetLevel(config.Global.LogLevel)

		if err := config.ValidateConfig(); err != nil {
			CleanupLogFile()
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer CleanupLogFile()
		return daemon.Run()
	},
}

// openLogFile redirects all logging to path, creating parent directories.
func openLogFile(path string) error {
	logDir := filepath.Dir(path)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	var err error
	logFileHandle, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	logging.SetOutput(logFileHandle)
	return nil
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	SetupFlags(RootCmd)

	SetupBackendFlags(backendCmd)
	RootCmd.AddCommand(backendCmd)
}
