// Package config provides default configuration values shared by the sluiced
// proxy, the simulated classification backend and sluicectl. Keeping them in
// one place means the client's default --api address always points at the
// daemon's default listener.
package config

import "time"

const (
	// DefaultBindAddr is the default bind address for all network services
	// Using 0.0.0.0 allows binding to all available network interfaces
	// TODO: Add support for IPv6 bind addresses (::)
	DefaultBindAddr = "0.0.0.0"

	// DefaultLogLevel is the default log level for all components
	DefaultLogLevel = "INFO"

	// DefaultAPIPort is the port the classification proxy listens on
	DefaultAPIPort = 8000

	// DefaultBackendPort is the port the simulated classification server listens on
	DefaultBackendPort = 8001

	// DefaultBackendURL is where the proxy expects the classification server
	DefaultBackendURL = "http://127.0.0.1:8001"

	// DefaultCostUnit is the simulated backend's per-unit latency; a batch
	// costs max_len² of these
	DefaultCostUnit = 2 * time.Millisecond

	// EnvPrefix is the prefix for environment overrides (SLUICE_MAX_WAIT, ...)
	EnvPrefix = "SLUICE"
)
