// Package api provides the HTTP front end of the sluice batching proxy.
//
// Callers post one string at a time; the server hands it to the scheduler,
// waits for the job to resolve and replies with the label. Scheduler errors
// become HTTP statuses (queue full is 429, backend failure is 502) so that
// clients can apply their own retry policy.
package api

import (
	"fmt"

	"github.com/concave-dev/sluice/internal/api/handlers"
	"github.com/concave-dev/sluice/internal/config"
	"github.com/concave-dev/sluice/internal/metrics"
	"github.com/concave-dev/sluice/internal/validate"
)

// Config holds the parameters required to run the proxy HTTP server.
//
// Scheduler is required. Metrics is optional; when set, request counts and
// latencies are recorded and /metrics is served.
//
// TODO: Add TLS configuration (cert/key files)
type Config struct {
	BindAddr  string             // HTTP server bind address (e.g., "0.0.0.0")
	BindPort  int                // HTTP server bind port, 0 picks a free port
	Scheduler handlers.Scheduler // Batching scheduler receiving submissions
	Metrics   *metrics.Collector // Optional Prometheus collector
}

// DefaultConfig returns a loopback configuration on the default proxy port.
// The scheduler must be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		BindAddr: config.DefaultBindAddr,
		BindPort: config.DefaultAPIPort,
	}
}

// Validate checks the bind address and that a scheduler is wired in.
func (c *Config) Validate() error {
	if err := validate.ValidateRequiredString(c.BindAddr, "bind address"); err != nil {
		return err
	}
	if c.BindPort != 0 {
		if err := validate.ValidatePortRange(c.BindPort); err != nil {
			return fmt.Errorf("bind port validation failed: %w", err)
		}
	}
	if c.Scheduler == nil {
		return fmt.Errorf("scheduler cannot be nil")
	}

	return nil
}
