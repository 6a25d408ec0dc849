package handlers

import (
	"github.com/concave-dev/sluice/cmd/sluicectl/client"
	"github.com/concave-dev/sluice/cmd/sluicectl/config"
	"github.com/concave-dev/sluice/cmd/sluicectl/display"
	"github.com/concave-dev/sluice/cmd/sluicectl/utils"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/spf13/cobra"
)

// HandleStats shows scheduler statistics, refreshing them with --watch.
func HandleStats(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	apiClient := client.CreateAPIClient()

	fetchAndDisplay := func() error {
		logging.Info("Fetching scheduler statistics from %s", config.Global.APIAddr)

		stats, err := apiClient.GetStats()
		if err != nil {
			return err
		}

		display.DisplayStats(stats)
		return nil
	}

	return utils.RunWithWatch(fetchAndDisplay, config.Stats.Watch)
}
