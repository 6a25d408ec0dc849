package commands

import (
	"github.com/concave-dev/sluice/cmd/sluiced/config"
	"github.com/concave-dev/sluice/cmd/sluiced/daemon"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/spf13/cobra"
)

// backendCmd runs the simulated classification server
var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Run the simulated classification server",
	Long: `Run a classification server that behaves like the real single-flight model:
at most five sequences per request, one request at a time (concurrent
requests get 429), and max_len² × cost-unit of latency per request.`,
	Example: `  # Serve on the default port with 2ms cost units
  sluiced backend

  # Deterministic labels for demos
  sluiced backend --bind=127.0.0.1:9001 --labeler=heuristic`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(cmd.Flags(), "", &config.Backend); err != nil {
			return err
		}
		logging.SetLevel(config.Backend.LogLevel)
		config.InitializeConfig()
		logging.SetLevel(config.Backend.LogLevel)
		return config.ValidateBackendConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return daemon.RunBackend()
	},
}
