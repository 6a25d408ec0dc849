package commands

import (
	"time"

	"github.com/spf13/cobra"
)

// Simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay the two-client workload and report latency",
	Long: `Replay the reference workload: client a sends three bursts of five
short sequences, client b sends twelve longer sequences one at a time.

Each client's success count, latency percentiles and label mix are
reported when the run finishes. With --local the workload runs against an
in-process scheduler over the simulated backend instead of --api.`,
	Example: `  # Replay against the proxy at --api
  sluicectl simulate

  # Replay in-process at ten times real speed
  sluicectl simulate --local --time-scale 0.1

  # Only run client b with a fixed seed
  sluicectl simulate --clients b --seed 42`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// SetupSimulateFlags configures flags for the simulate command
func SetupSimulateFlags(seedPtr *int64, timeScalePtr *float64, clientsPtr *[]string,
	localPtr *bool, costUnitPtr *time.Duration, maxWaitPtr *time.Duration,
	defaultCostUnit, defaultMaxWait time.Duration) {
	simulateCmd.Flags().Int64Var(seedPtr, "seed", 0,
		"Random seed for sequences and gaps (0 picks one)")
	simulateCmd.Flags().Float64Var(timeScalePtr, "time-scale", 1.0,
		"Multiplier for every pause between requests (0 sends without pauses)")
	simulateCmd.Flags().StringSliceVar(clientsPtr, "clients", []string{"a", "b"},
		"Client profiles to run: a, b")
	simulateCmd.Flags().BoolVar(localPtr, "local", false,
		"Run against an in-process scheduler and simulated backend")
	simulateCmd.Flags().DurationVar(costUnitPtr, "cost-unit", defaultCostUnit,
		"Simulated backend time per squared code point (--local only)")
	simulateCmd.Flags().DurationVar(maxWaitPtr, "max-wait", defaultMaxWait,
		"Scheduler max wait before a job is dispatched (--local only)")
}

// GetSimulateCommand returns the simulate command for handler assignment
func GetSimulateCommand() *cobra.Command {
	return simulateCmd
}
