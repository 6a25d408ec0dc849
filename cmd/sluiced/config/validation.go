package config

import (
	"fmt"
	"os"

	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/validate"
)

// InitializeConfig applies environment overrides that are not flags.
func InitializeConfig() {
	if os.Getenv("DEBUG") == "true" {
		Global.LogLevel = "DEBUG"
		Backend.LogLevel = "DEBUG"
		logging.Info("DEBUG environment variable detected, setting log level to DEBUG")
	}
}

// ValidateConfig validates and normalizes the proxy daemon configuration.
//
// The API address is split into host and port; port 0 is rejected because
// sluicectl needs a predictable address. Backend settings are checked for
// the selected mode only, and the scheduler policy is validated as a whole.
func ValidateConfig() error {
	if err := logging.ValidateLogLevel(Global.LogLevel); err != nil {
		return err
	}

	apiNetAddr, err := validate.ParseBindAddress(Global.APIAddr)
	if err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address: %w", err)
	}
	if err := validate.ValidateField(apiNetAddr.Port, "required,min=1,max=65535"); err != nil {
		return fmt.Errorf("API address requires specific port (not 0): %w", err)
	}
	Global.APIAddr = apiNetAddr.Host
	Global.APIPort = apiNetAddr.Port

	switch Global.Backend {
	case BackendHTTP:
		if err := validate.ValidateBackendURL(Global.BackendURL); err != nil {
			logging.Error("Invalid backend URL '%s': %v", Global.BackendURL, err)
			return fmt.Errorf("invalid backend URL: %w", err)
		}
		if err := validate.ValidateIntRange(Global.BackendRetries, 0, 100, "backend retries"); err != nil {
			return err
		}
	case BackendSimulated:
		if err := validate.ValidatePositiveTimeout(Global.CostUnit, "cost unit"); err != nil {
			return err
		}
		if _, err := backend.LabelerByName(Global.Labeler, Global.Seed); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid backend mode %q (valid: %s, %s)", Global.Backend, BackendHTTP, BackendSimulated)
	}

	if err := Global.SchedulerConfig().Validate(); err != nil {
		return fmt.Errorf("invalid scheduler configuration: %w", err)
	}

	if err := validate.ValidatePositiveTimeout(Global.ShutdownTimeout, "shutdown timeout"); err != nil {
		return err
	}

	return nil
}

// ValidateBackendConfig validates the `sluiced backend` configuration.
func ValidateBackendConfig() error {
	if err := logging.ValidateLogLevel(Backend.LogLevel); err != nil {
		return err
	}

	netAddr, err := validate.ParseBindAddress(Backend.Bind)
	if err != nil {
		return fmt.Errorf("invalid bind address: %w", err)
	}
	if err := validate.ValidateField(netAddr.Port, "required,min=1,max=65535"); err != nil {
		return fmt.Errorf("backend requires specific port (not 0): %w", err)
	}
	Backend.BindAddr = netAddr.Host
	Backend.BindPort = netAddr.Port

	if err := validate.ValidatePositiveTimeout(Backend.CostUnit, "cost unit"); err != nil {
		return err
	}
	if _, err := backend.LabelerByName(Backend.Labeler, Backend.Seed); err != nil {
		return err
	}
	return nil
}
