// Package main provides the entry point for the sluice CLI (sluicectl).
//
// init wires the command tree: flags are bound to the config package,
// global flags are validated before any command runs, and each command's
// RunE is pointed at its handler.
package main

import (
	"os"

	"github.com/concave-dev/sluice/cmd/sluicectl/commands"
	"github.com/concave-dev/sluice/cmd/sluicectl/config"
	"github.com/concave-dev/sluice/cmd/sluicectl/handlers"
	"github.com/concave-dev/sluice/internal/scheduler"
)

func init() {
	rootCmd := commands.RootCmd

	rootCmd.Version = config.Version
	rootCmd.PersistentPreRunE = config.ValidateGlobalFlags

	commands.SetupCommands()

	commands.SetupGlobalFlags(rootCmd, &config.Global.APIAddr, &config.Global.LogLevel,
		&config.Global.Timeout, &config.Global.Verbose, &config.Global.Output, config.DefaultAPIAddr)

	commands.SetupClassifyFlags(&config.Classify.File, &config.Classify.Concurrency)
	commands.SetupSimulateFlags(&config.Simulate.Seed, &config.Simulate.TimeScale, &config.Simulate.Clients,
		&config.Simulate.Local, &config.Simulate.CostUnit, &config.Simulate.MaxWait,
		config.DefaultSimulateCostUnit, scheduler.DefaultConfig().MaxWait)
	commands.SetupStatsFlags(&config.Stats.Watch)

	setupCommandHandlers()
}

// setupCommandHandlers assigns RunE functions to commands
func setupCommandHandlers() {
	commands.GetClassifyCommand().RunE = handlers.HandleClassify
	commands.GetSimulateCommand().RunE = handlers.HandleSimulate
	commands.GetStatsCommand().RunE = handlers.HandleStats
	commands.GetHealthCommand().RunE = handlers.HandleHealth
}

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
