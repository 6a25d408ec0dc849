package commands

import (
	"github.com/concave-dev/sluice/cmd/sluiced/config"
	configDefaults "github.com/concave-dev/sluice/internal/config"
	"github.com/concave-dev/sluice/internal/scheduler"
	"github.com/spf13/cobra"
)

// SetupFlags configures all command line flags for the daemon
func SetupFlags(cmd *cobra.Command) {
	defaults := scheduler.DefaultConfig()

	// API flags
	cmd.Flags().StringVar(&config.Global.APIAddr, "api", config.DefaultAPI,
		"Address and port for the proxy HTTP API (e.g., "+config.DefaultAPI+")")

	// Backend flags
	cmd.Flags().StringVar(&config.Global.Backend, "backend", config.BackendHTTP,
		"Classification backend: http (remote server) or simulated (in-process)")
	cmd.Flags().StringVar(&config.Global.BackendURL, "backend-url", configDefaults.DefaultBackendURL,
		"Base URL of the classification server (http backend)")
	cmd.Flags().IntVar(&config.Global.BackendRetries, "backend-retries", 3,
		"Retries when the classification server answers 429 busy (http backend)")
	cmd.Flags().DurationVar(&config.Global.CostUnit, "cost-unit", configDefaults.DefaultCostUnit,
		"Latency per cost unit; a batch costs max_len² units (simulated backend)")
	cmd.Flags().StringVar(&config.Global.Labeler, "labeler", "random",
		"Labeler for the simulated backend: random or heuristic")
	cmd.Flags().Int64Var(&config.Global.Seed, "seed", 0,
		"Random labeler seed for the simulated backend (0 picks one)")

	// Scheduler flags
	cmd.Flags().DurationVar(&config.Global.MaxWait, "max-wait", defaults.MaxWait,
		"Longest a request may wait before it is sent in the next batch")
	cmd.Flags().IntVar(&config.Global.MaxQueueDepth, "max-queue-depth", defaults.MaxQueueDepth,
		"Pending requests allowed before new ones are rejected with 429")
	cmd.Flags().DurationVar(&config.Global.BackendTimeout, "backend-timeout", defaults.BackendTimeout,
		"Bound on a single backend call")
	cmd.Flags().Float64Var(&config.Global.SimilarityRatio, "similarity-ratio", defaults.SimilarityRatio,
		"Longest string in a batch may be this many times the shortest")
	cmd.Flags().IntVar(&config.Global.MinSpread, "min-spread", defaults.MinSpread,
		"Length difference always tolerated within a batch, for very short strings")
	cmd.Flags().DurationVar(&config.Global.Linger, "linger", defaults.Linger,
		"Hold non-full batches of long strings this long for more company (0 disables)")
	cmd.Flags().IntVar(&config.Global.LargeLength, "large-length", defaults.LargeLength,
		"Strings at least this long are subject to --linger (0 disables)")

	// Operational flags
	cmd.Flags().DurationVar(&config.Global.ShutdownTimeout, "shutdown-timeout", config.DefaultShutdown,
		"How long to wait for in-flight requests on shutdown")
	cmd.Flags().StringVar(&config.Global.LogLevel, "log-level", config.DefaultLogLevel,
		"Log level: DEBUG, INFO, WARN, ERROR")
	cmd.Flags().StringVar(&config.Global.LogFile, "log-file", "",
		"Write all logs to this file instead of stdout/stderr")
	cmd.Flags().StringVar(&config.Global.ConfigFile, "config", "",
		"Optional YAML config file; keys are flag names (e.g., max-wait: 2s)")
}

// SetupBackendFlags configures the flags of the backend subcommand
func SetupBackendFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&config.Backend.Bind, "bind", config.DefaultBackendBind,
		"Address and port for the classification server (e.g., "+config.DefaultBackendBind+")")
	cmd.Flags().DurationVar(&config.Backend.CostUnit, "cost-unit", configDefaults.DefaultCostUnit,
		"Latency per cost unit; a request costs max_len² units")
	cmd.Flags().StringVar(&config.Backend.Labeler, "labeler", "random",
		"Labeler: random or heuristic")
	cmd.Flags().Int64Var(&config.Backend.Seed, "seed", 0,
		"Random labeler seed (0 picks one)")
	cmd.Flags().StringVar(&config.Backend.LogLevel, "log-level", config.DefaultLogLevel,
		"Log level: DEBUG, INFO, WARN, ERROR")
}

// CheckExplicitFlags checks if flags were explicitly set by the user
func CheckExplicitFlags(cmd *cobra.Command) {
	config.Global.SetExplicitlySet(config.APIAddrField, cmd.Flags().Changed("api"))
	config.Global.SetExplicitlySet(config.LogFileField, cmd.Flags().Changed("log-file"))
}
