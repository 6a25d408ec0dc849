package classifier

import (
	"fmt"
	"time"

	"github.com/concave-dev/sluice/internal/config"
	"github.com/concave-dev/sluice/internal/validate"
)

// Config holds the simulated classification server settings.
type Config struct {
	BindAddr string        // Network interface to listen on
	BindPort int           // TCP port for the /classify endpoint
	CostUnit time.Duration // Latency per squared code point of the longest string
	Labeler  string        // "random" or "heuristic"
	Seed     int64         // Seed for the random labeler
}

// DefaultConfig returns the settings of the reference classification server:
// port 8001, 2ms per squared code point, random labels.
func DefaultConfig() *Config {
	return &Config{
		BindAddr: config.DefaultBindAddr,
		BindPort: config.DefaultBackendPort,
		CostUnit: config.DefaultCostUnit,
		Labeler:  "random",
		Seed:     time.Now().UnixNano(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := validate.ValidateRequiredString(c.BindAddr, "bind address"); err != nil {
		return err
	}
	if err := validate.ValidateField(c.BindAddr, "ip"); err != nil {
		return fmt.Errorf("invalid bind address %q: %w", c.BindAddr, err)
	}
	if err := validate.ValidateIntRange(c.BindPort, 0, 65535, "bind port"); err != nil {
		return err
	}
	if err := validate.ValidateNonNegativeDuration(c.CostUnit, "cost unit"); err != nil {
		return err
	}
	switch c.Labeler {
	case "random", "heuristic":
	default:
		return fmt.Errorf("unknown labeler %q (valid: random, heuristic)", c.Labeler)
	}
	return nil
}
