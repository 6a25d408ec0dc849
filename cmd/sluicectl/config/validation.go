package config

import (
	"fmt"
	"slices"

	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/validate"
	"github.com/spf13/cobra"
)

// ValidateGlobalFlags validates all global flags before running any command
func ValidateGlobalFlags(cmd *cobra.Command, args []string) error {
	if err := ValidateAPIAddress(); err != nil {
		return err
	}

	if err := ValidateOutputFormat(); err != nil {
		return err
	}

	if err := logging.ValidateLogLevel(Global.LogLevel); err != nil {
		return err
	}

	if err := validate.ValidateIntRange(Global.Timeout, 1, 3600, "timeout"); err != nil {
		return err
	}

	return nil
}

// ValidateAPIAddress validates the --api flag
func ValidateAPIAddress() error {
	netAddr, err := validate.ParseBindAddress(Global.APIAddr)
	if err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address - expected format: host:port (e.g., %s)", DefaultAPIAddr)
	}

	// Reject unroutable 0.0.0.0 target for client connections
	if netAddr.Host == "0.0.0.0" {
		return fmt.Errorf("unroutable API address - use 127.0.0.1 or a specific IP address")
	}

	if err := validate.ValidateField(netAddr.Port, "required,min=1,max=65535"); err != nil {
		return fmt.Errorf("API port must be between 1-65535")
	}

	return nil
}

// ValidateOutputFormat validates the --output flag
func ValidateOutputFormat() error {
	if Global.Output != "table" && Global.Output != "json" {
		return fmt.Errorf("invalid output format %q - valid: table, json", Global.Output)
	}
	return nil
}

// ValidateSimulateFlags validates the simulate command flags
func ValidateSimulateFlags() error {
	if err := validate.ValidateFloatMin(Simulate.TimeScale, 0, "time scale"); err != nil {
		return err
	}
	if len(Simulate.Clients) == 0 {
		return fmt.Errorf("at least one client profile is required (a, b)")
	}
	for _, c := range Simulate.Clients {
		if !slices.Contains([]string{"a", "b"}, c) {
			return fmt.Errorf("unknown client profile %q (valid: a, b)", c)
		}
	}
	if Simulate.Local {
		if err := validate.ValidatePositiveTimeout(Simulate.CostUnit, "cost unit"); err != nil {
			return err
		}
		if err := validate.ValidatePositiveTimeout(Simulate.MaxWait, "max wait"); err != nil {
			return err
		}
	}
	return nil
}
