package handlers

import (
	"github.com/concave-dev/sluice/cmd/sluicectl/client"
	"github.com/concave-dev/sluice/cmd/sluicectl/config"
	"github.com/concave-dev/sluice/cmd/sluicectl/display"
	"github.com/concave-dev/sluice/cmd/sluicectl/utils"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/spf13/cobra"
)

// HandleHealth shows proxy liveness and readiness.
func HandleHealth(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Checking proxy health at %s", config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	health, err := apiClient.GetHealth()
	if err != nil {
		return err
	}

	ready, err := apiClient.GetReady()
	if err != nil {
		return err
	}

	display.DisplayHealth(display.ProxyHealth{Health: health, Ready: ready})
	return nil
}
