package commands

import (
	"github.com/spf13/cobra"
)

// Stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show scheduler statistics",
	Long: `Show the proxy's queue depth, admission counters, batch counters and
the scheduler configuration it is running with.`,
	Example: `  # Show statistics
  sluicectl stats

  # Refresh every two seconds
  sluicectl stats --watch`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// SetupStatsFlags configures flags for the stats command
func SetupStatsFlags(watchPtr *bool) {
	statsCmd.Flags().BoolVarP(watchPtr, "watch", "w", false,
		"Watch for live updates")
}

// GetStatsCommand returns the stats command for handler assignment
func GetStatsCommand() *cobra.Command {
	return statsCmd
}
