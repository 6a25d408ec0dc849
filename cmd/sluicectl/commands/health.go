package commands

import (
	"github.com/spf13/cobra"
)

// Health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show proxy health and readiness",
	Long: `Show whether the proxy is alive and whether its queue can admit more
work. Exits with an error when the proxy is unreachable.`,
	Example: `  # Check the local proxy
  sluicectl health`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// GetHealthCommand returns the health command for handler assignment
func GetHealthCommand() *cobra.Command {
	return healthCmd
}
