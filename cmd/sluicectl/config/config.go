// Package config provides configuration management for the sluicectl CLI.
package config

import (
	"time"

	configDefaults "github.com/concave-dev/sluice/internal/config"
	"github.com/concave-dev/sluice/internal/version"
)

const (
	DefaultAPIAddr = "127.0.0.1:8000" // Default proxy address (routable)
)

// Version is the sluicectl CLI version
var Version = version.SluicectlVersion

// Global holds the global CLI configuration
var Global struct {
	APIAddr  string // Address of the sluice proxy to connect to
	LogLevel string // Log level for CLI operations
	Timeout  int    // Request timeout in seconds
	Verbose  bool   // Show verbose output
	Output   string // Output format: table, json
}

// Classify holds the classify command configuration
var Classify struct {
	File        string // Read one sequence per line from this file ("-" for stdin)
	Concurrency int    // Maximum requests in flight
}

// Simulate holds the simulate command configuration
var Simulate struct {
	Seed      int64         // RNG seed, 0 picks one
	TimeScale float64       // Multiplier for every pause
	Clients   []string      // Profiles to run: a, b
	Local     bool          // Run against an in-process scheduler instead of --api
	CostUnit  time.Duration // Simulated backend cost unit in --local mode
	MaxWait   time.Duration // Scheduler max wait in --local mode
}

// Stats holds the stats command configuration
var Stats struct {
	Watch bool // Enable watch mode for live updates
}

// DefaultSimulateCostUnit is the --local backend cost unit
const DefaultSimulateCostUnit = configDefaults.DefaultCostUnit
