package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/concave-dev/sluice/cmd/sluicectl/client"
	"github.com/concave-dev/sluice/cmd/sluicectl/config"
	"github.com/concave-dev/sluice/cmd/sluicectl/display"
	"github.com/concave-dev/sluice/cmd/sluicectl/utils"
	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/scheduler"
	"github.com/concave-dev/sluice/internal/simulate"
	"github.com/spf13/cobra"
)

// HandleSimulate replays the selected client profiles and prints the
// latency report. Ctrl-C stops the run early.
func HandleSimulate(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	if err := config.ValidateSimulateFlags(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := simulate.DefaultOptions()
	if config.Simulate.Seed != 0 {
		opts.Seed = uint64(config.Simulate.Seed)
	}
	opts.TimeScale = config.Simulate.TimeScale
	opts.RequestTimeout = time.Duration(config.Global.Timeout) * time.Second

	var submitter simulate.Submitter
	if config.Simulate.Local {
		sched, err := newLocalScheduler(config.Simulate.CostUnit, config.Simulate.MaxWait)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Stop(context.Background()); err != nil {
				logging.Warn("Scheduler stop: %v", err)
			}
		}()
		submitter = simulate.LocalSubmitter{Scheduler: sched}
		logging.Info("Simulating against in-process scheduler (cost unit %v, max wait %v)",
			config.Simulate.CostUnit, config.Simulate.MaxWait)
	} else {
		submitter = client.CreateAPIClient()
		opts.ErrorClassifier = client.Kind
		logging.Info("Simulating against proxy at %s", config.Global.APIAddr)
	}

	profiles, err := selectProfiles(config.Simulate.Clients)
	if err != nil {
		return err
	}

	runner, err := simulate.NewRunner(submitter, opts, profiles...)
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation interrupted: %w", err)
	}

	display.DisplaySimulationReport(report)
	logging.Success("Simulation finished: %d/%d requests succeeded", report.Successes, report.Requests)
	return nil
}

// newLocalScheduler starts a scheduler over a simulated backend that labels
// sequences heuristically.
func newLocalScheduler(costUnit, maxWait time.Duration) (*scheduler.Scheduler, error) {
	cfg := scheduler.DefaultConfig()
	cfg.MaxWait = maxWait

	sim := backend.NewSimulated(costUnit, backend.WithLabeler(backend.HeuristicLabeler))
	sched, err := scheduler.New(sim, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	sched.Start()
	return sched, nil
}

// selectProfiles maps client names to their traffic profiles.
func selectProfiles(names []string) ([]simulate.Profile, error) {
	profiles := make([]simulate.Profile, 0, len(names))
	for _, name := range names {
		switch name {
		case "a":
			profiles = append(profiles, simulate.ClientA())
		case "b":
			profiles = append(profiles, simulate.ClientB())
		default:
			return nil, fmt.Errorf("unknown client profile %q", name)
		}
	}
	return profiles, nil
}
