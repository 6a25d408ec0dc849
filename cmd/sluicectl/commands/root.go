// Package commands provides the command tree for sluicectl.
//
// COMMAND STRUCTURE:
//   - classify: Send sequences through the proxy and print their labels
//   - simulate: Replay the two-client workload against a proxy or in-process
//   - stats: Show scheduler counters and configuration
//   - health: Show proxy liveness and readiness
//
// RunE handlers are assigned by the main package so that this package only
// describes commands and flags.
package commands

import (
	"github.com/spf13/cobra"
)

// Root command
var RootCmd = &cobra.Command{
	Use:   "sluicectl",
	Short: "CLI tool for the sluice batching classification proxy",
	Long: `Sluice CLI (sluicectl) talks to a running sluice proxy.

It classifies sequences, replays the reference two-client workload to
measure latency, and inspects the scheduler's queue and batch counters.`,
	SilenceUsage: true,
	Example: `  # Classify a single sequence
  sluicectl classify "func main() {}"

  # Classify every line of a file, 8 requests in flight
  sluicectl classify --file inputs.txt --concurrency 8

  # Replay the two-client workload against the proxy
  sluicectl simulate

  # Replay it in-process without a running proxy
  sluicectl simulate --local

  # Watch scheduler counters
  sluicectl stats --watch

  # Connect to a remote proxy and print JSON
  sluicectl --api=192.168.1.100:8000 -o json stats`,
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	RootCmd.AddCommand(classifyCmd)
	RootCmd.AddCommand(simulateCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(healthCmd)
}

// SetupGlobalFlags configures all global persistent flags
func SetupGlobalFlags(rootCmd *cobra.Command, apiAddrPtr *string, logLevelPtr *string,
	timeoutPtr *int, verbosePtr *bool, outputPtr *string, defaultAPIAddr string) {
	rootCmd.PersistentFlags().StringVar(apiAddrPtr, "api", defaultAPIAddr,
		"Sluice proxy address")
	rootCmd.PersistentFlags().StringVar(logLevelPtr, "log-level", "ERROR",
		"Log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().IntVar(timeoutPtr, "timeout", 30,
		"Request timeout in seconds")
	rootCmd.PersistentFlags().BoolVarP(verbosePtr, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVarP(outputPtr, "output", "o", "table",
		"Output format: table, json")
}
