// Package utils provides helpers shared by sluicectl command handlers.
package utils

import (
	"os"

	"github.com/concave-dev/sluice/cmd/sluicectl/config"
	"github.com/concave-dev/sluice/internal/logging"
)

// SetupLogging configures CLI logging. DEBUG=true shows everything;
// otherwise only errors reach the terminal so command output stays clean.
func SetupLogging() {
	if os.Getenv("DEBUG") == "true" {
		logging.RestoreOutput()
		logging.SetLevel("DEBUG")
		return
	}

	logging.SetLevel(config.Global.LogLevel)
	logging.SuppressOutput()
}
